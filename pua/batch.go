package pua

import (
	"cmp"
	"slices"
)

// Batch collects the records of one install run. It owns the run's
// duplicate-codepoint set: the first record added for a codepoint wins and
// later ones are reported and dropped.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	records []Record
	seen    map[Codepoint]struct{}
	dups    []Codepoint
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{seen: make(map[Codepoint]struct{})}
}

// Add appends r unless a record with the same codepoint was already added.
// It reports whether r was kept.
func (b *Batch) Add(r Record) bool {
	if _, ok := b.seen[r.Code()]; ok {
		b.dups = append(b.dups, r.Code())
		return false
	}
	b.seen[r.Code()] = struct{}{}
	b.records = append(b.records, r)
	return true
}

// Contains reports whether a record for c has been added.
func (b *Batch) Contains(c Codepoint) bool {
	_, ok := b.seen[c]
	return ok
}

// Len returns the number of distinct records.
func (b *Batch) Len() int { return len(b.records) }

// Duplicates returns the codepoints of records dropped by Add, in the order
// they were seen.
func (b *Batch) Duplicates() []Codepoint {
	return slices.Clone(b.dups)
}

// Sorted returns the records ordered by ascending codepoint. Because
// duplicates never enter the batch, the result is strictly ascending.
func (b *Batch) Sorted() []Record {
	out := slices.Clone(b.records)
	slices.SortFunc(out, func(x, y Record) int {
		return cmp.Compare(x.code, y.code)
	})
	return out
}
