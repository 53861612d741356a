package explorer

import "errors"

var (
	// ErrNoNumericColumn means the table has no column a threshold can apply to.
	ErrNoNumericColumn = errors.New("no numeric columns")
	// ErrNotFilterable is returned by OnThresholdChange before a column is selected
	// or after the session ended in a terminal stage.
	ErrNotFilterable = errors.New("session has no active filter")
	// ErrInvalidThreshold rejects NaN thresholds.
	ErrInvalidThreshold = errors.New("threshold must be a number")
)

// Phase tells load failures apart from failures in later processing.
type Phase string

const (
	PhaseLoad    Phase = "load"
	PhaseProcess Phase = "process"
)

// PipelineError wraps any failure caught by the page's error boundary.
type PipelineError struct {
	Phase Phase
	Err   error
}

func (e *PipelineError) Error() string { return string(e.Phase) + ": " + e.Err.Error() }

func (e *PipelineError) Unwrap() error { return e.Err }
