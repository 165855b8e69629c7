/*
Package report collects per-entry diagnostics from an extraction run.

Decoding a bank touches many independent entries; a malformed one is
recorded here and skipped rather than aborting its siblings. The collector
is safe for concurrent use by extraction workers.
*/
package report

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Record is the outcome of one container entry.
type Record struct {
	Entry    int
	Files    []string // paths written for this entry
	Warnings []string
	Err      error // non-nil if the entry was skipped
}

// Report aggregates records keyed by entry index.
type Report struct {
	mu      sync.Mutex
	records map[int]*Record
}

func New() *Report {
	return &Report{
		records: make(map[int]*Record),
	}
}

func (r *Report) record(entry int) *Record {
	rec, ok := r.records[entry]
	if !ok {
		rec = &Record{Entry: entry}
		r.records[entry] = rec
	}
	return rec
}

// Fail marks an entry as skipped.
func (r *Report) Fail(entry int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(entry).Err = err
}

// Warn attaches a non-fatal diagnostic to an entry.
func (r *Report) Warn(entry int, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(entry)
	rec.Warnings = append(rec.Warnings, fmt.Sprintf(format, args...))
}

// AddFile records an output file written for an entry.
func (r *Report) AddFile(entry int, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(entry)
	rec.Files = append(rec.Files, path)
}

// Records returns all records ordered by entry index.
func (r *Report) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entry < out[j].Entry })
	return out
}

// Failed returns the number of entries that were skipped.
func (r *Report) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Err != nil {
			n++
		}
	}
	return n
}

// Log writes every failure and warning through the provided logger.
func (r *Report) Log(logger *log.Logger) {
	for _, rec := range r.Records() {
		if rec.Err != nil {
			logger.Printf("entry %d: %v\n", rec.Entry, rec.Err)
		}
		for _, w := range rec.Warnings {
			logger.Printf("entry %d: warning: %s\n", rec.Entry, w)
		}
	}
}
