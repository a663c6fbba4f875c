// Package progress summarizes which library gestures a learner has completed.
package progress

import (
	"sort"
	"time"

	"github.com/jwulff/asltutor/internal/gestures"
)

// CategoryCount is progress within one category.
type CategoryCount struct {
	Category  string `json:"category"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Overview is a learner's progress across the library.
type Overview struct {
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Percent    int             `json:"percent"`
	Categories []CategoryCount `json:"categories"`
	LastActive time.Time       `json:"lastActive,omitempty"`
}

// Summarize computes an Overview. completed maps gesture IDs to the time
// they were marked; IDs not in the catalog are ignored.
func Summarize(c *gestures.Catalog, completed map[string]time.Time) Overview {
	var ov Overview
	byCat := make(map[string]*CategoryCount)
	for _, g := range c.All() {
		cc, ok := byCat[g.Category]
		if !ok {
			cc = &CategoryCount{Category: g.Category}
			byCat[g.Category] = cc
		}
		cc.Total++
		ov.Total++
		if at, done := completed[g.ID]; done {
			cc.Completed++
			ov.Completed++
			if at.After(ov.LastActive) {
				ov.LastActive = at
			}
		}
	}
	if ov.Total > 0 {
		ov.Percent = ov.Completed * 100 / ov.Total
	}
	for _, cc := range byCat {
		ov.Categories = append(ov.Categories, *cc)
	}
	sort.Slice(ov.Categories, func(i, j int) bool {
		return ov.Categories[i].Category < ov.Categories[j].Category
	})
	return ov
}

// Split partitions the catalog into completed and remaining gestures,
// each in catalog order.
func Split(c *gestures.Catalog, completed map[string]time.Time) (done, remaining []gestures.Gesture) {
	for _, g := range c.All() {
		if _, ok := completed[g.ID]; ok {
			done = append(done, g)
		} else {
			remaining = append(remaining, g)
		}
	}
	return done, remaining
}
