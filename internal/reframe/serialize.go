package reframe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/clipcast/reframe/pkg/util"
)

// Report is the run-level output document. Clip names are sorted at encode
// time by encoding/json, which matches discovery order since clips are
// discovered sorted.
type Report struct {
	ContentType        string               `json:"content_type"`
	ClipCount          int                  `json:"clip_count"`
	ComputationTimeSec float64              `json:"computation_time_sec"`
	Clips              map[string]*ClipPlan `json:"clips"`
	Failures           map[string]string    `json:"failures,omitempty"`

	mu sync.Mutex
}

// NewReport creates an empty report for the given content type
func NewReport(contentType string) *Report {
	return &Report{
		ContentType: contentType,
		Clips:       make(map[string]*ClipPlan),
	}
}

// AddClip records a successfully planned clip
func (r *Report) AddClip(name string, plan *ClipPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clips[name] = plan
	r.ClipCount = len(r.Clips)
}

// AddFailure records a per-clip failure. Failed clips never block siblings.
func (r *Report) AddFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[name] = err.Error()
}

// Write serializes the report as indented JSON
func (r *Report) Write(path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// RunError is the machine-readable payload emitted when the whole run is
// invalid before any clip is processed.
type RunError struct {
	Error string `json:"error"`
}

// WriteRunError emits a structured error payload, never bare log text
func WriteRunError(w io.Writer, err error) {
	payload, marshalErr := json.Marshal(RunError{Error: err.Error()})
	if marshalErr != nil {
		return
	}
	fmt.Fprintln(w, string(payload))
}
