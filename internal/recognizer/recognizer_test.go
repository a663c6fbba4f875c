package recognizer

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

// fixedSource always returns the same extreme of [0, n).
type fixedSource struct{ high bool }

func (s fixedSource) IntN(n int) int {
	if s.high {
		return n - 1
	}
	return 0
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		confidence int
		want       Tier
	}{
		{0, TierLow},
		{69, TierLow},
		{70, TierMedium},
		{89, TierMedium},
		{90, TierHigh},
		{100, TierHigh},
	}
	for _, tt := range tests {
		if got := TierFor(tt.confidence); got != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}

func TestNextDetectionExtremes(t *testing.T) {
	low, err := NewRandom(DefaultPolicy(), WithSource(fixedSource{high: false}))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d := low.NextDetection()
	if d.Confidence != 70 {
		t.Errorf("low confidence = %d, want 70", d.Confidence)
	}
	if d.Label != "Hello" {
		t.Errorf("low label = %q, want Hello", d.Label)
	}

	high, err := NewRandom(DefaultPolicy(), WithSource(fixedSource{high: true}))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d = high.NextDetection()
	if d.Confidence != 100 {
		t.Errorf("high confidence = %d, want 100", d.Confidence)
	}
	if d.Label != "Sad" {
		t.Errorf("high label = %q, want Sad", d.Label)
	}
}

func TestNextDetectionStaysInRange(t *testing.T) {
	r, err := NewRandom(DefaultPolicy(), WithSource(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	policy := r.Policy()
	for i := 0; i < 5000; i++ {
		d := r.NextDetection()
		if d.Confidence < 70 || d.Confidence > 100 {
			t.Fatalf("confidence %d out of range", d.Confidence)
		}
		if !policy.Contains(d.Label) {
			t.Fatalf("label %q not in vocabulary", d.Label)
		}
	}
}

func TestNextDetectionUsesClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewRandom(DefaultPolicy(), WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	if got := r.NextDetection().At; !got.Equal(at) {
		t.Errorf("At = %v, want %v", got, at)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		ok     bool
	}{
		{"default", DefaultPolicy(), true},
		{"narrow variant", Policy{Vocabulary: []string{"Hello"}, MinConfidence: 85, MaxConfidence: 100}, true},
		{"empty vocabulary", Policy{MinConfidence: 70, MaxConfidence: 100}, false},
		{"blank label", Policy{Vocabulary: []string{""}, MinConfidence: 70, MaxConfidence: 100}, false},
		{"inverted range", Policy{Vocabulary: []string{"Yes"}, MinConfidence: 90, MaxConfidence: 80}, false},
		{"above 100", Policy{Vocabulary: []string{"Yes"}, MinConfidence: 70, MaxConfidence: 101}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Validate() = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestDefaultPolicyIsACopy(t *testing.T) {
	p := DefaultPolicy()
	p.Vocabulary[0] = "changed"
	if DefaultVocabulary[0] != "Hello" {
		t.Error("DefaultPolicy should not alias DefaultVocabulary")
	}
}

func TestNextDetectionConcurrent(t *testing.T) {
	r, err := NewRandom(DefaultPolicy(), WithSource(rand.New(rand.NewPCG(3, 4))))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	policy := r.Policy()

	var wg sync.WaitGroup
	bad := make(chan Detection, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				d := r.NextDetection()
				if d.Confidence < 70 || d.Confidence > 100 || !policy.Contains(d.Label) {
					bad <- d
					return
				}
			}
		}()
	}
	wg.Wait()
	close(bad)
	for d := range bad {
		t.Errorf("out-of-policy detection %+v", d)
	}
}
