// Package recognizer produces simulated ASL gesture detections.
//
// The Recognizer interface is the only thing the session depends on, so a
// real hand-tracking classifier can replace Random without touching the
// session state machine.
package recognizer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultVocabulary is the canonical label set emitted by Random.
var DefaultVocabulary = []string{
	"Hello",
	"Thank you",
	"Yes",
	"No",
	"Please",
	"Sorry",
	"Help",
	"Friend",
	"Family",
	"Love",
	"Happy",
	"Sad",
}

// Default inclusive confidence bounds, in percent.
const (
	DefaultMinConfidence = 70
	DefaultMaxConfidence = 100
)

// Detection is one recognition result.
type Detection struct {
	Label      string
	Confidence int
	At         time.Time
}

// Recognizer yields the next detection on demand.
type Recognizer interface {
	NextDetection() Detection
}

// Source is the randomness a Random recognizer draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// ErrInvalidPolicy is returned when a vocabulary or confidence range is unusable.
var ErrInvalidPolicy = errors.New("invalid recognition policy")

// Policy describes what Random may emit.
type Policy struct {
	Vocabulary    []string
	MinConfidence int
	MaxConfidence int
}

// DefaultPolicy returns the canonical 12-label, 70..100 policy.
func DefaultPolicy() Policy {
	vocab := make([]string, len(DefaultVocabulary))
	copy(vocab, DefaultVocabulary)
	return Policy{
		Vocabulary:    vocab,
		MinConfidence: DefaultMinConfidence,
		MaxConfidence: DefaultMaxConfidence,
	}
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if len(p.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrInvalidPolicy)
	}
	for i, label := range p.Vocabulary {
		if label == "" {
			return fmt.Errorf("%w: vocabulary[%d] is empty", ErrInvalidPolicy, i)
		}
	}
	if p.MinConfidence < 0 || p.MaxConfidence > 100 || p.MinConfidence > p.MaxConfidence {
		return fmt.Errorf("%w: confidence range %d..%d", ErrInvalidPolicy, p.MinConfidence, p.MaxConfidence)
	}
	return nil
}

// Random picks labels and confidences uniformly at random.
type Random struct {
	policy Policy
	now    func() time.Time

	mu  sync.Mutex // guards src
	src Source
}

// Option configures a Random recognizer.
type Option func(*Random)

// WithSource overrides the random source.
func WithSource(src Source) Option {
	return func(r *Random) { r.src = src }
}

// WithClock overrides the timestamp function.
func WithClock(now func() time.Time) Option {
	return func(r *Random) { r.now = now }
}

// NewRandom creates a Random recognizer for the given policy.
func NewRandom(policy Policy, opts ...Option) (*Random, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	r := &Random{
		policy: policy,
		src:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Policy returns the recognizer's policy.
func (r *Random) Policy() Policy {
	return r.policy
}

// NextDetection draws one label and one confidence in the inclusive range.
// It is safe for concurrent use.
func (r *Random) NextDetection() Detection {
	span := r.policy.MaxConfidence - r.policy.MinConfidence + 1
	r.mu.Lock()
	label := r.policy.Vocabulary[r.src.IntN(len(r.policy.Vocabulary))]
	confidence := r.policy.MinConfidence + r.src.IntN(span)
	r.mu.Unlock()
	return Detection{
		Label:      label,
		Confidence: confidence,
		At:         r.now(),
	}
}

// Contains reports whether label is part of the vocabulary.
func (p Policy) Contains(label string) bool {
	for _, v := range p.Vocabulary {
		if v == label {
			return true
		}
	}
	return false
}
