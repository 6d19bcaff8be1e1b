package audit

import (
	"sync"
	"testing"
)

func TestDBRecorderDropsWhenFull(t *testing.T) {
	// Record never touches the database until Run drains the buffer, so a
	// nil handle is fine here.
	rec := NewDBRecorder(nil)

	for i := 0; i < defaultBuffer; i++ {
		rec.Record(1, SystemAction, map[string]any{"seq": i})
	}
	if got := len(rec.events); got != defaultBuffer {
		t.Fatalf("buffered events = %d, want %d", got, defaultBuffer)
	}

	// Overflowing from many goroutines must stay safe and never block.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec.Record(2, SystemAction, map[string]any{"seq": j})
			}
		}()
	}
	wg.Wait()

	if got := len(rec.events); got != defaultBuffer {
		t.Errorf("overflow grew the buffer to %d", got)
	}
}
