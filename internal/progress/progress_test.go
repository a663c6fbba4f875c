package progress

import (
	"testing"
	"time"

	"github.com/jwulff/asltutor/internal/gestures"
)

func TestSummarize(t *testing.T) {
	c := gestures.MustDefault()
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	ov := Summarize(c, map[string]time.Time{
		"hello":   early,
		"love":    late,
		"happy":   early,
		"unknown": late.Add(time.Hour),
	})

	if ov.Total != 14 || ov.Completed != 3 {
		t.Fatalf("total/completed = %d/%d, want 14/3", ov.Total, ov.Completed)
	}
	if ov.Percent != 21 {
		t.Errorf("percent = %d, want 21", ov.Percent)
	}
	if !ov.LastActive.Equal(late) {
		t.Errorf("last active = %v, want %v", ov.LastActive, late)
	}

	var emotions CategoryCount
	for _, cc := range ov.Categories {
		if cc.Category == "Emotions" {
			emotions = cc
		}
	}
	if emotions.Completed != 2 || emotions.Total != 3 {
		t.Errorf("emotions = %+v, want 2/3", emotions)
	}
	if ov.Categories[0].Category != "Advanced Concepts" {
		t.Errorf("categories not sorted: %v", ov.Categories)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	ov := Summarize(gestures.MustDefault(), nil)
	if ov.Completed != 0 || ov.Percent != 0 || !ov.LastActive.IsZero() {
		t.Errorf("empty overview = %+v", ov)
	}
}

func TestSplit(t *testing.T) {
	c := gestures.MustDefault()
	done, remaining := Split(c, map[string]time.Time{"hello": time.Now(), "sad": time.Now()})
	if len(done) != 2 || len(remaining) != 12 {
		t.Fatalf("split = %d/%d, want 2/12", len(done), len(remaining))
	}
	if done[0].ID != "hello" || done[1].ID != "sad" {
		t.Errorf("done = %v", done)
	}
}
