package verifier

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thechriswalker/go-verifier/election"
)

// Observer is told of every outcome as it is recorded. It is called from
// worker goroutines and must be safe for concurrent use.
type Observer func(e *Entry, o Outcome)

// Runner executes a catalog against an election context
type Runner struct {
	catalog  *Catalog
	workers  int
	exclude  map[ID]bool
	observer Observer
}

type RunnerOption func(*Runner)

// WithWorkers sets the pool size, n < 1 means runtime.NumCPU()
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithExclusions skips the given verifications
func WithExclusions(ids ...ID) RunnerOption {
	return func(r *Runner) {
		for _, id := range ids {
			r.exclude[id] = true
		}
	}
}

func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// ReasonExcluded is the skip reason of excluded verifications
const ReasonExcluded = "excluded by configuration"

func NewRunner(c *Catalog, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: c,
		workers: runtime.NumCPU(),
		exclude: map[ID]bool{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run evaluates every entry of the catalog. The report is all or nothing:
// if ctx is done before every entry has an outcome, Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, ec *election.Context) (*Report, error) {
	start := time.Now()
	agg := NewAggregator(r.catalog)
	record := func(e *Entry, o Outcome) error {
		if err := agg.Record(e.ID, o); err != nil {
			return err
		}
		if r.observer != nil {
			r.observer(e, o)
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, e := range r.catalog.Entries() {
		if skip, reason := r.skip(e, ec); skip {
			if err := record(e, Skipped(reason)); err != nil {
				return nil, err
			}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return record(e, r.evaluate(e, ec))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep, err := agg.Report(ec.Fingerprint())
	if err != nil {
		return nil, err
	}
	counts := rep.Counts()
	log.Info().
		Str("dataset", ec.Fingerprint()).
		Int("verifications", len(rep.Results)).
		Int("successful", counts[StatusSuccessful]).
		Int("failed", counts[StatusFailed]).
		Int("errored", counts[StatusErrored]).
		Int("skipped", counts[StatusSkipped]).
		Stringer("status", rep.Status).
		Dur("ms", time.Since(start)).
		Msg("verification run complete")
	return rep, nil
}

func (r *Runner) skip(e *Entry, ec *election.Context) (bool, string) {
	if r.exclude[e.ID] {
		return true, ReasonExcluded
	}
	if !e.Implemented() {
		return true, ReasonNotImplemented
	}
	if missing := e.Missing(ec); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		return true, "missing " + strings.Join(names, ", ")
	}
	return false, ""
}

// evaluate runs one algorithm, turning a panic into Errored
func (r *Runner) evaluate(e *Entry, ec *election.Context) (out Outcome) {
	start := time.Now()
	var f Findings
	defer func() {
		if p := recover(); p != nil {
			out = Errored(fmt.Errorf("internal fault: %v", p))
			out.Findings = f.List()
		}
		log.Debug().
			Str("verification", e.ID.String()).
			Str("name", e.Name).
			Stringer("status", out.Status).
			Dur("ms", time.Since(start)).
			Msg("verification evaluated")
	}()
	if err := e.Algorithm(ec, &f); err != nil {
		out = Errored(err)
		// findings recorded before the error are kept, never dropped
		out.Findings = f.List()
		return out
	}
	if f.Len() > 0 {
		return Failed(f.List()...)
	}
	return Successful()
}
