package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/logger"
)

const (
	errorHeading     = "### ❌ Error loading or processing CSV"
	noNumericWarning = "⚠️ No numeric columns found for filtering or plotting. Please check the dataset."
)

// Session runs the explorer page. Run loads and renders the page once;
// OnThresholdChange recomputes the filtered view and plot without reloading.
// A Session is safe for concurrent use; the loaded table is never mutated.
type Session struct {
	opt Options
	log *slog.Logger

	mu     sync.Mutex
	stage  Stage
	table  *dataset.Table
	column string
	filter FilterState
	view   *dataset.Table
	err    error
}

// New creates an idle session.
func New(opt Options, log *slog.Logger) *Session {
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = 10
	}
	return &Session{opt: opt, log: logger.Component(log, "explorer")}
}

// Stage returns the current pipeline stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Filter returns the threshold state and whether a column has been selected.
func (s *Session) Filter() (FilterState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter, s.stage.Filterable()
}

// View returns the current filtered view, or nil before the first filter pass.
func (s *Session) View() *dataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Run emits the whole page: header, dataset description, column selection,
// slider, filtered view and plot. Any load or processing failure is shown as
// a single error message and ends the run in StageFailed.
func (s *Session) Run(ctx context.Context, sink display.Sink) Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage, s.table, s.column, s.view, s.err = StageIdle, nil, "", nil, nil
	s.filter = FilterState{}

	s.header(sink)
	if err := s.guard(sink, func() error { return s.start(ctx, sink) }); err != nil {
		s.transition(StageFailed)
	}
	return s.stage
}

func (s *Session) start(ctx context.Context, sink display.Sink) error {
	t, err := dataset.Load(ctx, s.opt.Path, s.opt.Load)
	if err != nil {
		return &PipelineError{Phase: PhaseLoad, Err: err}
	}
	s.table = t
	s.log.Info("dataset loaded", slog.String("path", s.opt.Path), slog.Int("rows", t.Rows()), slog.Int("columns", len(t.Columns())))
	s.transition(StageLoaded)

	Describe(sink, t, s.opt.PreviewRows)
	s.transition(StageDescribed)

	col, err := SelectColumn(t, s.opt.XColumn)
	if errors.Is(err, ErrNoNumericColumn) {
		sink.Text(noNumericWarning)
		s.transition(StageNoNumeric)
		return nil
	}
	if err != nil {
		return &PipelineError{Phase: PhaseProcess, Err: err}
	}
	sink.Text(fmt.Sprintf("### Filtering and plotting on: `%s`", col))
	st, err := NewFilterState(t, col)
	if err != nil {
		return &PipelineError{Phase: PhaseProcess, Err: err}
	}
	s.column, s.filter = col, st
	s.transition(StageSelected)
	return s.update(sink)
}

// OnThresholdChange applies a new threshold (clamped to the column range),
// then re-emits the slider, filtered view and plot. Processing errors are
// shown like in Run but leave the session filterable so a later change can
// retry.
func (s *Session) OnThresholdChange(value float64, sink display.Sink) (Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stage.Filterable() {
		return s.stage, ErrNotFilterable
	}
	if math.IsNaN(value) {
		return s.stage, ErrInvalidThreshold
	}
	clamped := s.filter.Clamp(value)
	if clamped != value {
		s.log.Debug("threshold clamped", slog.Float64("requested", value), slog.Float64("applied", clamped))
	}
	s.filter.Value = clamped
	s.err = nil
	if err := s.guard(sink, func() error { return s.update(sink) }); err != nil {
		s.transition(StageSelected)
		return s.stage, err
	}
	return s.stage, nil
}

// Replay re-emits the page for the current state without reloading the
// dataset or changing the stage.
func (s *Session) Replay(sink display.Sink) Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header(sink)
	if s.table != nil {
		Describe(sink, s.table, s.opt.PreviewRows)
		switch {
		case s.stage == StageNoNumeric:
			sink.Text(noNumericWarning)
		case s.column != "":
			sink.Text(fmt.Sprintf("### Filtering and plotting on: `%s`", s.column))
			sink.Slider(s.filter.Slider())
			if s.view != nil {
				if _, err := s.emitView(sink); err != nil {
					s.showError(sink, err)
				}
			}
		}
	}
	if s.err != nil {
		s.showError(sink, s.err)
	}
	return s.stage
}

func (s *Session) header(sink display.Sink) {
	if s.opt.Title != "" {
		sink.Text("# " + s.opt.Title)
	}
	if s.opt.Description != "" {
		sink.Text(s.opt.Description)
	}
}

// update is the filter → render step shared by Run and OnThresholdChange.
func (s *Session) update(sink display.Sink) error {
	sink.Slider(s.filter.Slider())
	view, err := Apply(s.table, s.column, s.filter.Value)
	if err != nil {
		// the previous view no longer matches the threshold
		s.view = nil
		return &PipelineError{Phase: PhaseProcess, Err: err}
	}
	s.view = view
	s.transition(StageFiltered)
	plotted, err := s.emitView(sink)
	if err != nil {
		return err
	}
	if plotted {
		s.transition(StageRendered)
	} else {
		s.transition(StagePlotWarned)
	}
	return nil
}

// emitView shows the current filtered view and its plot or warning.
func (s *Session) emitView(sink display.Sink) (bool, error) {
	sink.Text(fmt.Sprintf("### Filtered View: %s > %s", s.column, display.FormatFloat(s.filter.Value)))
	sink.Table(display.GridFromTable(s.view.Head(s.opt.PreviewRows)))
	plotted, err := Render(sink, s.view, s.column, s.opt.XColumn, s.opt.ColorColumn)
	if err != nil {
		return false, &PipelineError{Phase: PhaseProcess, Err: err}
	}
	return plotted, nil
}

// guard is the page's error boundary: errors and panics from fn become one
// user-visible error message.
func (s *Session) guard(sink display.Sink, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PipelineError{Phase: PhaseProcess, Err: fmt.Errorf("panic: %v", r)}
		}
		if err == nil {
			return
		}
		s.err = err
		var pe *PipelineError
		if errors.As(err, &pe) {
			s.log.Error("pipeline failed", slog.String("phase", string(pe.Phase)), logger.Err(pe.Err))
		} else {
			s.log.Error("pipeline failed", logger.Err(err))
		}
		s.showError(sink, err)
	}()
	return fn()
}

// showError emits the generic error heading followed by the underlying error text.
func (s *Session) showError(sink display.Sink, err error) {
	msg := err.Error()
	var pe *PipelineError
	if errors.As(err, &pe) {
		msg = pe.Err.Error()
	}
	sink.Text(errorHeading)
	sink.Text(msg)
}

func (s *Session) transition(to Stage) {
	if s.stage == to {
		return
	}
	s.log.Debug("stage", slog.String("from", s.stage.String()), slog.String("to", to.String()))
	s.stage = to
}
