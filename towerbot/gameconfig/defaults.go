package gameconfig

// defaults returns the built-in tuning values. Config files overlay these;
// they are the source of truth when no file overrides a key.
func defaults() map[string]any {
	return map[string]any{
		"prayer": map[string]any{
			"cooldown_minutes": int64(5),
		},
		"summoning": map[string]any{
			"ichor_cost": int64(1),
			"rates": map[string]any{
				"1": 0.70,
				"2": 0.20,
				"3": 0.08,
				"4": 0.015,
				"5": 0.004,
				"6": 0.001,
			},
		},
		"fusion": map[string]any{
			"max_tier":             int64(6),
			"base_cost":            int64(1000),
			"tier_cost_multiplier": int64(500),
		},
		"power": map[string]any{
			"tier_scaling_base":        1.0,
			"tier_scaling_multiplier":  0.15,
			"element_bonus_multiplier": 0.05,
		},
		"tower": map[string]any{
			"base_boss_health":          int64(100),
			"difficulty_multiplier":     int64(1000),
			"damage_variance":           0.2,
			"base_seios_per_hour":       int64(100),
			"floor_bonus_rate":          0.1,
			"base_progress_per_hour":    0.1,
			"progress_efficiency_cap":   2.0,
			"max_idle_hours":            24.0,
			"min_idle_hours":            0.1,
			"erythl_chance_per_hour":    0.05,
			"encounter_chance_per_hour": 0.1,
			"min_efficiency":            0.3,
			"efficiency_cap":            10.0,
		},
		"player": map[string]any{
			"base_energy":       int64(50),
			"energy_per_level":  int64(10),
			"base_stamina":      int64(25),
			"stamina_per_level": int64(5),
			"xp_base":           int64(1000),
			"xp_multiplier":     1.15,
			"starting_seios":    int64(1000),
			"starting_ichor":    int64(10),
		},
		"energy": map[string]any{
			"regen_minutes": int64(5),
			"regen_amount":  int64(1),
		},
		"stamina": map[string]any{
			"regen_minutes": int64(5),
			"regen_amount":  int64(1),
		},
		"currency": map[string]any{
			"exchange_rates": map[string]any{
				"seios_to_base":  int64(1),
				"ichor_to_base":  int64(100),
				"erythl_to_base": int64(1000),
			},
			"transfers": map[string]any{
				"seios":  map[string]any{"enabled": false},
				"ichor":  map[string]any{"enabled": false},
				"erythl": map[string]any{"enabled": false},
			},
		},
		"tier_system": map[string]any{
			"names": map[string]any{
				"1": "Common",
				"2": "Uncommon",
				"3": "Rare",
				"4": "Epic",
				"5": "Legendary",
				"6": "Mythic",
			},
		},
		"element_system": map[string]any{
			"valid_elements": []any{
				"Inferno", "Aqua", "Tempest", "Earth", "Umbral", "Radiant",
			},
		},
		"tower_themes": map[string]any{
			"lower": map[string]any{"max_floor": int64(100), "name": "Lower Floors"},
			"mid":   map[string]any{"max_floor": int64(500), "name": "Mid Floors"},
			"upper": map[string]any{"max_floor": int64(999999), "name": "Upper Floors"},
		},
	}
}
