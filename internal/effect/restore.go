package effect

import (
	"errors"
	"fmt"

	"github.com/nerrad567/lumen-core/internal/zone"
)

// Logger defines the logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Outcome is what happened to one zone during a restore.
type Outcome int

// Restore outcomes.
const (
	// Applied means the stored effect was re-applied.
	Applied Outcome = iota
	// Corrected means the stored effect had no setter and spectrum was
	// applied and persisted in its place.
	Corrected
	// Skipped means the zone was left alone: no setter at all, or a
	// managed effect.
	Skipped
	// Failed means argument resolution or the setter itself failed.
	Failed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Corrected:
		return "corrected"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Step is a resolved setter invocation for one zone.
type Step struct {
	Zone      zone.ID
	Effect    string
	Method    string
	Setter    Setter
	Args      []int
	Corrected bool
}

// Result records the outcome for one zone.
type Result struct {
	Zone    zone.ID
	Effect  string
	Method  string
	Outcome Outcome
	Err     error
}

// Report is the per-zone record of one restore pass.
type Report []Result

// Err joins the errors of failed zones. Skipped zones are not errors.
func (r Report) Err() error {
	var errs []error
	for _, res := range r {
		if res.Outcome == Failed && res.Err != nil {
			errs = append(errs, fmt.Errorf("zone %s: %w", res.Zone, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Count returns how many zones ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Source supplies the zones to restore and their stored state.
type Source interface {
	Present() []zone.ID
	State(id zone.ID) (zone.State, error)
}

// Executor carries out a restore. Correct persists the spectrum
// fallback for a zone; Apply invokes a resolved step.
type Executor interface {
	Correct(z zone.ID, effect string)
	Apply(step Step) error
}

// Dispatcher re-applies stored effects through a setter table.
type Dispatcher struct {
	table  *Table
	logger Logger
}

// NewDispatcher creates a dispatcher over table.
func NewDispatcher(table *Table) *Dispatcher {
	return &Dispatcher{table: table, logger: noopLogger{}}
}

// SetLogger sets the logger for restore diagnostics.
func (d *Dispatcher) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Resolve finds the setter for the zone's stored effect and builds its
// arguments. When the stored effect has no setter and is not spectrum,
// the step targets the zone's spectrum setter and is marked Corrected.
// A zone with neither setter keeps its stored effect. The returned step
// is filled in as far as resolution got, even on error.
func (d *Dispatcher) Resolve(z zone.ID, st zone.State) (Step, error) {
	step := Step{Zone: z, Effect: st.Effect, Method: MethodName(z, st.Effect)}

	setter, ok := d.table.Lookup(z, step.Effect)
	if !ok && step.Effect != Spectrum {
		fallback, found := d.table.Lookup(z, Spectrum)
		if !found {
			return step, fmt.Errorf("%w: %s, no %s fallback",
				ErrSetterNotFound, step.Method, MethodName(z, Spectrum))
		}
		step.Effect, step.Method, step.Corrected = Spectrum, MethodName(z, Spectrum), true
		setter, ok = fallback, true
	}
	if !ok {
		return step, fmt.Errorf("%w: %s", ErrSetterNotFound, step.Method)
	}
	step.Setter = setter

	args, err := Args(step.Effect, setter.Arity(), st)
	if err != nil {
		return step, err
	}
	step.Args = args
	return step, nil
}

// Restore re-applies the stored effect of every present zone, in
// canonical zone order. One zone's failure never stops the others.
func (d *Dispatcher) Restore(src Source, exec Executor) Report {
	var report Report

	for _, z := range src.Present() {
		st, err := src.State(z)
		if err != nil {
			report = append(report, Result{Zone: z, Outcome: Failed, Err: err})
			continue
		}

		step, err := d.Resolve(z, st)
		if step.Corrected {
			d.logger.Info("stored effect not supported, restoring spectrum",
				"zone", z, "effect", st.Effect)
			exec.Correct(z, Spectrum)
		}

		res := Result{Zone: z, Effect: step.Effect, Method: step.Method}
		switch {
		case errors.Is(err, ErrSetterNotFound):
			d.logger.Warn("no effect setter for zone, skipping", "zone", z, "method", step.Method)
			res.Outcome, res.Err = Skipped, err
		case errors.Is(err, ErrManaged):
			d.logger.Debug("managed effect not restored", "zone", z, "effect", step.Effect)
			res.Outcome, res.Err = Skipped, err
		case err != nil:
			d.logger.Error("cannot build effect arguments", "zone", z, "method", step.Method, "error", err)
			res.Outcome, res.Err = Failed, err
		default:
			if err := exec.Apply(step); err != nil {
				d.logger.Error("effect restore failed", "zone", z, "method", step.Method, "error", err)
				res.Outcome, res.Err = Failed, err
			} else if step.Corrected {
				res.Outcome = Corrected
			} else {
				res.Outcome = Applied
			}
		}
		report = append(report, res)
	}
	return report
}
