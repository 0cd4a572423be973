package queue

import "testing"

func tracks(n int) []Track {
	out := make([]Track, n)
	for i := range out {
		out[i] = Track{Title: string(rune('a' + i)), Path: string(rune('a'+i)) + ".mp3"}
	}
	return out
}

func TestAdvanceAndPreviousStopAtEnds(t *testing.T) {
	q := New(tracks(3))
	if q.Previous() {
		t.Fatal("expected Previous to fail at start")
	}
	if !q.Advance() || !q.Advance() {
		t.Fatal("expected two advances to succeed")
	}
	if q.Advance() {
		t.Fatal("expected Advance to fail at end")
	}
	if q.Next() != nil {
		t.Fatal("expected no next track at end")
	}
	if got := q.Current().Title; got != "c" {
		t.Fatalf("current = %q, want c", got)
	}
}

func TestWrapToStart(t *testing.T) {
	q := New(tracks(2))
	q.SetCurrentIndex(1)
	q.WrapToStart()
	if got := q.Next(); got == nil || got.Title != "a" {
		t.Fatalf("expected next to be first track, got %+v", got)
	}
	if !q.Advance() || q.CurrentIndex() != 0 {
		t.Fatalf("expected advance onto track 0, at %d", q.CurrentIndex())
	}
}

func TestSetCurrentIndexIgnoresOutOfRange(t *testing.T) {
	q := New(tracks(2))
	q.SetCurrentIndex(5)
	if q.CurrentIndex() != 0 {
		t.Fatalf("expected index unchanged, got %d", q.CurrentIndex())
	}
	q.SetTrackState(1, Failed)
	if q.Track(1).State != Failed {
		t.Fatal("expected state update")
	}
	q.SetTrackState(9, Done)
	if q.Track(-1) != nil {
		t.Fatal("expected nil for negative index")
	}
}
