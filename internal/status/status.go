// Package status provides Status
package status

// spellchecker:words rewritable

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/FAU-CDI/metaextract/internal/triplestore/igraph"
	"github.com/FAU-CDI/metaextract/pkg/progress"
	"github.com/google/uuid"
	"github.com/tkw1536/pkglib/lazy"
	"github.com/tkw1536/pkglib/perf"
)

// Status holds information about the current stage of a run.
// Updating the status writes out detailed information to an underlying io.Writer.
//
// Status is safe to access concurrently, however the caller is responsible for only logging to one stage at a time.
//
// A nil Status is valid, and discards any information written to it.
type Status struct {
	done atomic.Bool
	m    sync.RWMutex // m protects changes to current and all

	run        uuid.UUID
	logger     *slog.Logger
	rewritable *progress.Rewritable

	istats lazy.Lazy[igraph.Stats]

	current StageStats   // current holds information about the current stage
	all     []StageStats // all hold information about the old stages

	// OnUpdate is called every time this status updates.
	// OnUpdate may be nil.
	OnUpdate func(*Status)
}

// New creates a new status that writes log lines and progress to the given output.
// Every line logged carries a "run" attribute unique to this status.
//
// When debug is true, debug messages are logged as well.
// If w is nil, the returned status keeps track of stages without writing anything.
func New(w io.Writer, debug bool) *Status {
	st := &Status{run: uuid.New()}
	if w == nil {
		return st
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	st.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("run", st.run.String())
	st.rewritable = &progress.Rewritable{Writer: w, FlushInterval: progress.DefaultFlushInterval}
	return st
}

// Run returns the id of this run.
func (st *Status) Run() uuid.UUID {
	if st == nil {
		return uuid.Nil
	}
	return st.run
}

// Rewritable returns the rewritable associated with this status.
// It is automatically cleared at the end of each stage.
// Rewritable may return nil; use [Status.Reader] to wrap readers.
func (st *Status) Rewritable() *progress.Rewritable {
	if st == nil {
		return nil
	}
	return st.rewritable
}

// Reader wraps reader to report progress of the current stage.
// total is the expected number of bytes, or <= 0 if unknown.
func (st *Status) Reader(reader io.Reader, total int64) io.Reader {
	rw := st.Rewritable()
	if rw == nil {
		return reader
	}
	return &progress.Reader{
		Reader:     reader,
		Total:      total,
		Rewritable: progress.Rewritable{Writer: rw.Writer, FlushInterval: rw.FlushInterval},
	}
}

// Current returns a copy of the current StageStats
func (st *Status) Current() StageStats {
	if st == nil {
		var zero StageStats
		return zero
	}
	st.m.RLock()
	defer st.m.RUnlock()
	return st.current
}

// onUpdate calls the onUpdate handler.
func (st *Status) onUpdate() {
	if st == nil || st.OnUpdate == nil {
		return
	}
	st.OnUpdate(st)
}

// StoreIndexStats optionally stores index statistics.
// If st is nil or done, this call has no effect
func (st *Status) StoreIndexStats(stats igraph.Stats) {
	defer st.onUpdate()

	if st == nil || st.done.Load() {
		return
	}

	st.istats.Set(stats)
}

// IndexStats returns the most recently stored index statistics.
func (st *Status) IndexStats() igraph.Stats {
	if st == nil {
		var zero igraph.Stats
		return zero
	}
	return st.istats.Get(nil)
}

// All returns all stages, including the current one.
func (st *Status) All() []StageStats {
	if st == nil {
		return []StageStats{}
	}

	st.m.RLock()
	defer st.m.RUnlock()

	all := append([]StageStats{}, st.all...)
	if st.current.Stage != StageInitial {
		all = append(all, st.current)
	}
	return all
}

// Log logs an informational message with the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Status) Log(message string, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}
	st.logger.Info(message, fields...)
}

// LogDebug logs a debug message with the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Status) LogDebug(message string, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}
	st.logger.Debug(message, fields...)
}

// LogWarn logs a warning with the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Status) LogWarn(message string, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}
	st.logger.Warn(message, fields...)
}

// LogError logs an error message containing the provided error and the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Status) LogError(message string, err error, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}

	st.logger.Error("FAILED "+message, append([]any{"err", err}, fields...)...)
}

// LogFatal is like LogError followed by os.Exit(1).
// When the associated logger are nil, os.Exit(1) is called immediately.
func (st *Status) LogFatal(message string, err error, fields ...any) {
	st.LogError(message, err, fields...)
	os.Exit(1)
}

// Close marks this status as done.
// Future edits will have no effect.
func (st *Status) Close() {
	if st == nil {
		return
	}
	st.done.Store(true)
}

// Done checks if further edits made to this status have any effect.
func (st *Status) Done() bool {
	return st == nil || st.done.Load()
}

// Diff returns a performance diff starting at the first, and ending at the last stage.
// If status is nil, a nil diff is returned.
func (st *Status) Diff() perf.Diff {
	if st == nil {
		var zero perf.Diff
		return zero
	}

	st.m.RLock()
	defer st.m.RUnlock()

	min := st.current.Start
	max := st.current.End

	for _, ss := range st.all {
		if min.Time.IsZero() || ss.Start.Time.Before(min.Time) {
			min = ss.Start
		}
		if max.Time.IsZero() || ss.End.Time.After(max.Time) {
			max = ss.End
		}
	}

	return max.Sub(min)
}

// Start starts a new stage, updating the current property.
// Any changes are written to the underlying writer.
//
// If st is done or nil, this function has no effect.
func (st *Status) Start(stage Stage) {
	if st == nil || st.done.Load() {
		return
	}

	defer st.onUpdate()

	st.m.Lock()
	defer st.m.Unlock()

	st.end()

	st.current.Stage = stage
	st.current.Start = perf.Now()

	if st.logger != nil {
		st.logger.Info("start", "stage", stage)
	}
}

// End ends the current stage if any.
// Any changes are flushed to the underlying writer.
//
// If st is nil, this function has no effect.
func (st *Status) End() (prev StageStats) {
	if st == nil || st.done.Load() {
		return
	}

	defer st.onUpdate()

	st.m.Lock()
	defer st.m.Unlock()

	return st.end()
}

// end implements End.
// st must not be nil st.m must be held for writing.
func (st *Status) end() (prev StageStats) {
	if st.current.Stage != StageInitial {
		st.current.End = perf.Now()
		st.all = append(st.all, st.current)
		prev = st.current
	}

	st.current = StageStats{}

	if prev.Stage == StageInitial {
		return
	}

	if st.rewritable != nil {
		st.rewritable.Close()
	}

	if st.logger != nil {
		if prev.Total != 0 || prev.Current != 0 {
			st.logger.Info("end", "stage", prev.Stage, "took", prev.Diff(), "current", prev.Current, "total", prev.Total)
		} else {
			st.logger.Info("end", "stage", prev.Stage, "took", prev.Diff())
		}
	}
	return
}

// DoStage is a convenience wrapper to start a new stage, call f, and log the resulting error if any.
// The returned error is a *StageError wrapping the error returned by f.
//
// If st is nil, immediately invokes f.
func (st *Status) DoStage(stage Stage, f func() error) error {
	if st == nil || st.done.Load() {
		if err := f(); err != nil {
			return &StageError{Stage: stage, Err: err}
		}
		return nil
	}

	st.Start(stage)
	err := f()
	st.End()

	if err != nil {
		st.LogError("stage", err, "stage", stage)
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

// StageError is an error that occurred during a specific stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (se *StageError) Error() string {
	return fmt.Sprintf("stage %q: %s", string(se.Stage), se.Err)
}

func (se *StageError) Unwrap() error {
	return se.Err
}

// StageStats holds the stats for a specific stage
type StageStats struct {
	Stage Stage

	Start perf.Snapshot // At the start of the stage
	End   perf.Snapshot // At the end of the stage

	Current int
	Total   int
}

// SetCT sets the current and total for the given stage.
// It the status is nil, or the status is done, has no effect.
func (st *Status) SetCT(current, total int) {
	if st == nil || st.done.Load() {
		return
	}

	defer st.onUpdate()

	var stage Stage
	st.m.Lock()
	{
		st.current.Current = current
		st.current.Total = total
		stage = st.current.Stage
	}
	st.m.Unlock()

	if st.rewritable != nil {
		st.rewritable.Set(string(stage), current, total)
	}
}

// Diff returns a diff of the given stage
func (ss StageStats) Diff() perf.Diff {
	return ss.End.Sub(ss.Start)
}

// Stage represents a stage of a run
type Stage string

const (
	StageInitial  Stage = ""
	StageFetch    Stage = "fetch"
	StageIndex    Stage = "ontology/index"
	StageClasses  Stage = "classes"
	StageExtract  Stage = "extract"
	StageTemplate Stage = "template"
	StageResolve  Stage = "resolve"
	StageJSONLD   Stage = "jsonld"
	StageExport   Stage = "export"
	StageWrite    Stage = "write"
	StageRead     Stage = "read"
)
