package verifier

import (
	"fmt"
	"sort"
	"sync"
)

// Aggregator collects outcomes keyed by id. Safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	catalog  *Catalog
	outcomes map[ID]Outcome
}

func NewAggregator(c *Catalog) *Aggregator {
	return &Aggregator{catalog: c, outcomes: make(map[ID]Outcome, c.Len())}
}

// Record stores the outcome of one verification, exactly once
func (a *Aggregator) Record(id ID, o Outcome) error {
	if _, ok := a.catalog.Lookup(id); !ok {
		return fmt.Errorf("outcome for unknown verification %s", id)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.outcomes[id]; dup {
		return fmt.Errorf("second outcome for verification %s", id)
	}
	a.outcomes[id] = o
	return nil
}

// Report builds the report, which needs an outcome for every entry
func (a *Aggregator) Report(fingerprint string) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rep := &Report{Fingerprint: fingerprint, Results: make([]Result, 0, a.catalog.Len())}
	for _, e := range a.catalog.Entries() {
		o, ok := a.outcomes[e.ID]
		if !ok {
			return nil, fmt.Errorf("no outcome for verification %s", e.ID)
		}
		rep.Results = append(rep.Results, Result{
			ID:       e.ID,
			Name:     e.Name,
			Category: e.Category,
			Outcome:  o,
		})
	}
	rep.Status = OverallStatus(rep.Results)
	return rep, nil
}

// Result is one line of a report
type Result struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Outcome
}

// Report of one run, results in ascending id order
type Report struct {
	Fingerprint string   `json:"fingerprint"`
	Status      Status   `json:"status"`
	Results     []Result `json:"results"`
}

// OverallStatus is the worst status of the non-skipped results. A report
// with nothing but skipped results is successful.
func OverallStatus(results []Result) Status {
	worst := StatusSuccessful
	for _, r := range results {
		if r.Status != StatusSkipped && r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}

// Outcome of one verification
func (r *Report) Outcome(id ID) (Outcome, bool) {
	i := sort.Search(len(r.Results), func(i int) bool { return !r.Results[i].ID.Less(id) })
	if i < len(r.Results) && r.Results[i].ID == id {
		return r.Results[i].Outcome, true
	}
	return Outcome{}, false
}

// Counts per status
func (r *Report) Counts() map[Status]int {
	out := map[Status]int{}
	for _, res := range r.Results {
		out[res.Status]++
	}
	return out
}
