package core

import (
	"errors"
	"sync"
	"testing"
)

func snapshotWithBrightness(b int) Snapshot {
	return Snapshot{
		On:              true,
		Brightness:      b,
		Mode:            ModeNormal,
		MaxFaces:        2,
		RegisteredFaces: []string{},
	}
}

func TestNewStateCellStartsEmpty(t *testing.T) {
	cell := NewStateCell(true)
	s := cell.Load()
	if s.On || s.Brightness != 0 || s.FaceCount != 0 || s.Mode != "" {
		t.Fatal("Expected empty startup snapshot, but got", s)
	}
	if s.RegisteredFaces == nil || len(s.RegisteredFaces) != 0 {
		t.Fatal("Expected empty face list, but got", s.RegisteredFaces)
	}
}

func TestApplyReplacesWholesale(t *testing.T) {
	cell := NewStateCell(true)

	first := Snapshot{On: true, Brightness: 80, Mode: ModeParty, FaceCount: 1, MaxFaces: 2, RegisteredFaces: []string{"ana"}}
	if err := cell.Apply(cell.NextSeq(), first); err != nil {
		t.Fatal("Apply failed:", err)
	}

	second := Snapshot{On: false, Brightness: 10, Mode: ModeNormal, MaxFaces: 2}
	if err := cell.Apply(cell.NextSeq(), second); err != nil {
		t.Fatal("Apply failed:", err)
	}

	got := cell.Load()
	if got.On || got.Brightness != 10 || got.Mode != ModeNormal || got.FaceCount != 0 || len(got.RegisteredFaces) != 0 {
		t.Fatal("Expected second snapshot only, but got", got)
	}
}

func TestLoadDoesNotShareFaces(t *testing.T) {
	cell := NewStateCell(true)
	faces := []string{"ana", "bo"}
	_ = cell.Apply(cell.NextSeq(), Snapshot{FaceCount: 2, MaxFaces: 2, RegisteredFaces: faces})

	faces[0] = "mutated"
	got := cell.Load()
	got.RegisteredFaces[1] = "mutated"

	again := cell.Load()
	if again.RegisteredFaces[0] != "ana" || again.RegisteredFaces[1] != "bo" {
		t.Fatal("Expected cell to own its faces, but got", again.RegisteredFaces)
	}
}

func TestStrictApplyDiscardsOlderResponse(t *testing.T) {
	cell := NewStateCell(true)

	older := cell.NextSeq()
	newer := cell.NextSeq()

	if err := cell.Apply(newer, snapshotWithBrightness(70)); err != nil {
		t.Fatal("Apply failed:", err)
	}
	err := cell.Apply(older, snapshotWithBrightness(30))
	if !errors.Is(err, ErrStale) {
		t.Fatal("Expected ErrStale, but got", err)
	}
	if got := cell.Load().Brightness; got != 70 {
		t.Fatal("Expected brightness 70 to survive, but got", got)
	}
	if cell.LastApplied() != newer {
		t.Fatal("Expected last applied", newer, "but got", cell.LastApplied())
	}
}

func TestLooseApplyLastArrivalWins(t *testing.T) {
	cell := NewStateCell(false)

	older := cell.NextSeq()
	newer := cell.NextSeq()

	_ = cell.Apply(newer, snapshotWithBrightness(70))
	if err := cell.Apply(older, snapshotWithBrightness(30)); err != nil {
		t.Fatal("Expected late response to be applied, but got", err)
	}
	if got := cell.Load().Brightness; got != 30 {
		t.Fatal("Expected brightness 30, but got", got)
	}
}

func TestSubscribeDeliversLatest(t *testing.T) {
	cell := NewStateCell(true)
	ch := cell.Subscribe()

	for b := 1; b <= 5; b++ {
		_ = cell.Apply(cell.NextSeq(), snapshotWithBrightness(b*10))
	}

	got := <-ch
	if got.Brightness != 50 {
		t.Fatal("Expected newest snapshot (50), but got", got.Brightness)
	}
	select {
	case s := <-ch:
		t.Fatal("Expected no backlog, but got", s)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	cell := NewStateCell(true)
	ch := cell.Subscribe()
	cell.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("Expected closed channel")
	}
	// must not panic on a send to the removed subscriber
	_ = cell.Apply(cell.NextSeq(), snapshotWithBrightness(10))
}

func TestConcurrentApply(t *testing.T) {
	cell := NewStateCell(true)
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				seq := cell.NextSeq()
				_ = cell.Apply(seq, snapshotWithBrightness(int(seq)))
			}
		}()
	}
	wg.Wait()

	if cell.LastApplied() > 30 {
		t.Fatal("Expected at most 30 sequences, but got", cell.LastApplied())
	}
	if got := cell.Load().Brightness; got != int(cell.LastApplied()) {
		t.Fatal("Expected snapshot of last applied sequence, but got", got)
	}
}

func TestSubscriberEndsOnLoadedSnapshot(t *testing.T) {
	for round := range 200 {
		cell := NewStateCell(true)
		ch := cell.Subscribe()

		older, newer := cell.NextSeq(), cell.NextSeq()
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = cell.Apply(older, snapshotWithBrightness(10))
		}()
		go func() {
			defer wg.Done()
			_ = cell.Apply(newer, snapshotWithBrightness(20))
		}()
		wg.Wait()

		got := <-ch
		if want := cell.Load().Brightness; got.Brightness != want {
			t.Fatalf("round %d: cell holds brightness=%d, subscriber's latest is %d", round, want, got.Brightness)
		}
	}
}
