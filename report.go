package opk

import (
	"fmt"
	"strings"
	"sync"
)

// Report collects row-local failures during a pipeline run. A
// malformed record fails only its own row; the run completes and the
// report says what was skipped. Report is safe for concurrent use.
type Report struct {
	mu        sync.Mutex
	malformed []*MalformedRecordError
}

// Add records one malformed-record failure.
func (r *Report) Add(e *MalformedRecordError) {
	r.mu.Lock()
	r.malformed = append(r.malformed, e)
	r.mu.Unlock()
}

// Malformed returns the collected failures.
func (r *Report) Malformed() []*MalformedRecordError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*MalformedRecordError, len(r.malformed))
	copy(out, r.malformed)
	return out
}

// Len returns the number of collected failures.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.malformed)
}

// Summary renders a short human-readable account of the report.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.malformed) == 0 {
		return "no rows skipped"
	}
	lines := make([]string, 0, len(r.malformed)+1)
	lines = append(lines, fmt.Sprintf("%d rows skipped:", len(r.malformed)))
	for _, e := range r.malformed {
		lines = append(lines, "  "+e.Error())
	}
	return strings.Join(lines, "\n")
}
