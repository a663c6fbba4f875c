package session

// DefaultHistorySize bounds the rolling history of recent labels.
const DefaultHistorySize = 5

// History is a fixed-capacity, most-recent-first list of labels.
type History struct {
	size   int
	labels []string
}

// NewHistory returns an empty History holding at most size labels.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, labels: make([]string, 0, size+1)}
}

// Push inserts label at the head and evicts from the tail past capacity.
func (h *History) Push(label string) {
	h.labels = append(h.labels, "")
	copy(h.labels[1:], h.labels)
	h.labels[0] = label
	if len(h.labels) > h.size {
		h.labels = h.labels[:h.size]
	}
}

// Labels returns a copy of the history, newest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.labels))
	copy(out, h.labels)
	return out
}

// Len returns the number of labels held.
func (h *History) Len() int { return len(h.labels) }

// Reset empties the history.
func (h *History) Reset() { h.labels = h.labels[:0] }
