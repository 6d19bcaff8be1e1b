package engine

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	"github.com/esprit-rpg/towerbot/towerbot/gameconfig"
)

// memStore is an in-memory Store used across the engine tests. Transactions
// stage copies and apply them only on success, mirroring the rollback
// semantics of the real store. The store-wide mutex stands in for row locks.
type memStore struct {
	mu           sync.Mutex
	players      map[int64]*models.Player
	bases        map[int64]*models.EspritBase
	esprits      map[int64]*models.Esprit
	nextPlayerID int64
	nextEspritID int64
}

func newMemStore() *memStore {
	return &memStore{
		players:      make(map[int64]*models.Player),
		bases:        make(map[int64]*models.EspritBase),
		esprits:      make(map[int64]*models.Esprit),
		nextPlayerID: 1,
		nextEspritID: 1,
	}
}

func (s *memStore) addPlayer(p *models.Player) *models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextPlayerID
	s.nextPlayerID++
	s.players[p.ID] = clonePlayer(p)
	return p
}

func (s *memStore) addBase(b *models.EspritBase) *models.EspritBase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = int64(len(s.bases) + 1)
	}
	s.bases[b.ID] = b
	return b
}

func (s *memStore) addEsprit(e *models.Esprit) *models.Esprit {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextEspritID
	s.nextEspritID++
	s.esprits[e.ID] = cloneEsprit(e)
	return e
}

// player reads the committed row for assertions.
func (s *memStore) player(id int64) *models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlayer(s.players[id])
}

func (s *memStore) stack(ownerID, baseID int64) *models.Esprit {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.esprits {
		if e.OwnerID == ownerID && e.BaseID == baseID {
			return cloneEsprit(e)
		}
	}
	return nil
}

func clonePlayer(p *models.Player) *models.Player {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneEsprit(e *models.Esprit) *models.Esprit {
	if e == nil {
		return nil
	}
	ce := *e
	return &ce
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:   s,
		players: make(map[int64]*models.Player),
		esprits: make(map[int64]*models.Esprit),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memStore) GetPlayer(ctx context.Context, playerID int64) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.players[playerID]
	if !found {
		return nil, sql.ErrNoRows
	}
	return clonePlayer(p), nil
}

func (s *memStore) GetPlayerByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.DiscordID == discordID {
			return clonePlayer(p), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, found := s.bases[baseID]
	if !found {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (s *memStore) ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listOwnedLocked(ownerID), nil
}

func (s *memStore) listOwnedLocked(ownerID int64) []*models.Esprit {
	var out []*models.Esprit
	for _, e := range s.esprits {
		if e.OwnerID == ownerID {
			ce := cloneEsprit(e)
			ce.Base = s.bases[e.BaseID]
			out = append(out, ce)
		}
	}
	return out
}

func (s *memStore) ListPrayerReady(ctx context.Context, cutoff time.Time) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Player
	for _, p := range s.players {
		if p.PrayNotifications && !p.LastPrayTime.IsZero() && !p.LastPrayTime.After(cutoff) {
			out = append(out, clonePlayer(p))
		}
	}
	return out, nil
}

// memTx stages copies of touched rows; commit writes them back.
type memTx struct {
	store          *memStore
	players        map[int64]*models.Player
	createdPlayers []*models.Player
	esprits        map[int64]*models.Esprit
	createdEsprits []*models.Esprit
}

func (t *memTx) commit() {
	for id, p := range t.players {
		t.store.players[id] = clonePlayer(p)
	}
	for _, p := range t.createdPlayers {
		t.store.players[p.ID] = clonePlayer(p)
	}
	for id, e := range t.esprits {
		t.store.esprits[id] = cloneEsprit(e)
	}
	for _, e := range t.createdEsprits {
		t.store.esprits[e.ID] = cloneEsprit(e)
	}
}

func (t *memTx) GetPlayerForUpdate(ctx context.Context, playerID int64) (*models.Player, error) {
	if staged, found := t.players[playerID]; found {
		return staged, nil
	}
	p, found := t.store.players[playerID]
	if !found {
		return nil, sql.ErrNoRows
	}
	staged := clonePlayer(p)
	t.players[playerID] = staged
	return staged, nil
}

func (t *memTx) GetPlayerByDiscordIDForUpdate(ctx context.Context, discordID string) (*models.Player, error) {
	for _, p := range t.store.players {
		if p.DiscordID == discordID {
			return t.GetPlayerForUpdate(ctx, p.ID)
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memTx) GetPlayerPairForUpdate(ctx context.Context, firstID, secondID int64) (*models.Player, *models.Player, error) {
	first, err := t.GetPlayerForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := t.GetPlayerForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (t *memTx) CreatePlayer(ctx context.Context, player *models.Player) error {
	player.ID = t.store.nextPlayerID
	t.store.nextPlayerID++
	t.createdPlayers = append(t.createdPlayers, player)
	return nil
}

func (t *memTx) UpdatePlayer(ctx context.Context, player *models.Player) error {
	t.players[player.ID] = player
	return nil
}

func (t *memTx) GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error) {
	b, found := t.store.bases[baseID]
	if !found {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (t *memTx) ListEspritBasesByTier(ctx context.Context, tier int) ([]*models.EspritBase, error) {
	var out []*models.EspritBase
	// Deterministic order: ascending ids.
	for id := int64(1); id <= int64(len(t.store.bases)); id++ {
		if b, found := t.store.bases[id]; found && b.BaseTier == tier {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) GetStackForUpdate(ctx context.Context, ownerID, baseID int64) (*models.Esprit, error) {
	for _, staged := range t.esprits {
		if staged.OwnerID == ownerID && staged.BaseID == baseID {
			return staged, nil
		}
	}
	for _, created := range t.createdEsprits {
		if created.OwnerID == ownerID && created.BaseID == baseID {
			return created, nil
		}
	}
	for _, e := range t.store.esprits {
		if e.OwnerID == ownerID && e.BaseID == baseID {
			staged := cloneEsprit(e)
			staged.Base = t.store.bases[e.BaseID]
			t.esprits[e.ID] = staged
			return staged, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memTx) ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error) {
	var out []*models.Esprit
	seen := make(map[int64]bool)
	for id, staged := range t.esprits {
		if staged.OwnerID == ownerID {
			out = append(out, staged)
			seen[id] = true
		}
	}
	for _, created := range t.createdEsprits {
		if created.OwnerID == ownerID {
			out = append(out, created)
		}
	}
	for id, e := range t.store.esprits {
		if e.OwnerID == ownerID && !seen[id] {
			ce := cloneEsprit(e)
			ce.Base = t.store.bases[e.BaseID]
			out = append(out, ce)
		}
	}
	return out, nil
}

func (t *memTx) CreateStack(ctx context.Context, esprit *models.Esprit) error {
	esprit.ID = t.store.nextEspritID
	t.store.nextEspritID++
	t.createdEsprits = append(t.createdEsprits, esprit)
	return nil
}

func (t *memTx) UpdateStack(ctx context.Context, esprit *models.Esprit) error {
	if esprit.ID != 0 {
		t.esprits[esprit.ID] = esprit
	}
	return nil
}

// --- shared test fixtures ---

// recordedEvent captures one audit emission for assertions.
type recordedEvent struct {
	PlayerID int64
	Kind     audit.EventKind
	Payload  map[string]any
}

type captureRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *captureRecorder) Record(playerID int64, kind audit.EventKind, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{PlayerID: playerID, Kind: kind, Payload: payload})
}

func (r *captureRecorder) byKind(kind audit.EventKind) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func testTuning(t *testing.T) *Tuning {
	t.Helper()
	cfg, err := gameconfig.New("")
	if err != nil {
		t.Fatalf("load default game config: %v", err)
	}
	return NewTuning(cfg)
}

func testTuningTOML(t *testing.T, content string) *Tuning {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "override.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config overlay: %v", err)
	}
	cfg, err := gameconfig.New(dir)
	if err != nil {
		t.Fatalf("load game config: %v", err)
	}
	return NewTuning(cfg)
}

// seedPlayer inserts a level-1 player with sane defaults, overridable by mut.
func seedPlayer(s *memStore, discordID string, mut func(*models.Player)) *models.Player {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Player{
		DiscordID:           discordID,
		Username:            "tester-" + discordID,
		Level:               1,
		Energy:              50,
		Stamina:             25,
		LastEnergyRegen:     now,
		LastStaminaRegen:    now,
		Seios:               1000,
		Ichor:               10,
		CurrentFloor:        1,
		HighestFloorReached: 1,
		LastActive:          now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if mut != nil {
		mut(p)
	}
	return s.addPlayer(p)
}

// fixedRolls replays a scripted sequence of Float64/IntN results.
type fixedRolls struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (f *fixedRolls) Float64() float64 {
	if f.fi >= len(f.floats) {
		return 0.5
	}
	v := f.floats[f.fi]
	f.fi++
	return v
}

func (f *fixedRolls) IntN(n int) int {
	if f.ii >= len(f.ints) {
		return 0
	}
	v := f.ints[f.ii] % n
	f.ii++
	return v
}
