package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minicart/minicart/internal/types"
)

// lockedBuffer lets the debounce timer goroutine write while the test
// polls the contents.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestAnnouncerPrintsSettledState(t *testing.T) {
	var buf lockedBuffer
	a := newAnnouncer(10*time.Millisecond, &buf)
	defer a.Stop()

	a.Update(types.CartState{Items: []*types.CartItem{
		{ID: "a", Price: 19.99, Quantity: 2},
	}})
	a.Update(types.CartState{Items: []*types.CartItem{
		{ID: "a", Price: 19.99, Quantity: 2},
		{ID: "b", Price: 0.10, Quantity: 3},
	}})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !strings.Contains(buf.String(), "cart:") {
		time.Sleep(5 * time.Millisecond)
	}

	got := buf.String()
	if !strings.Contains(got, "cart: 5 item(s), total 40.28") {
		t.Errorf("announcement = %q", got)
	}
	if strings.Count(got, "cart:") != 1 {
		t.Errorf("want one coalesced announcement, got %q", got)
	}
}

// Subscriber callbacks arrive on the scan goroutine while the debounce
// timer reads the pending state on its own; under the race detector this
// is the path that must stay clean.
func TestAnnouncerConcurrentUpdates(t *testing.T) {
	var buf lockedBuffer
	a := newAnnouncer(time.Millisecond, &buf)
	defer a.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				a.Update(types.CartState{Items: []*types.CartItem{
					{ID: "a", Price: 1, Quantity: i + 1},
				}})
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !strings.Contains(buf.String(), "cart:") {
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), "cart:") {
		t.Errorf("no announcement after updates settled: %q", buf.String())
	}
}
