package conformance

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Run is a stored conformance run.
type Run struct {
	ID        string `json:"id" boltholdKey:"ID"`
	StartedAt int64  `json:"startedAt" boltholdIndex:"StartedAt"`
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// Record is the stored outcome of one test in a run.
type Record struct {
	ID      uint64 `json:"id" boltholdKey:"ID"`
	RunID   string `json:"runId" boltholdIndex:"RunID"`
	Path    string `json:"path" boltholdIndex:"Path"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Regression is a test that passed in the baseline run but does not now.
type Regression struct {
	Path    string
	Status  Status
	Message string
}

// Baseline keeps the results of previous runs in a bolt database.
type Baseline struct {
	db *bolthold.Store
}

func OpenBaseline(path string) (*Baseline, error) {
	db, err := bolthold.Open(path, 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening baseline %s", path)
	}
	return &Baseline{db: db}, nil
}

func (b *Baseline) Close() error {
	return b.db.Close()
}

// Save stores results as a new run and returns it.
func (b *Baseline) Save(startedAt time.Time, results []Result) (*Run, error) {
	summary := Summarize(results)
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UnixNano(),
		Total:     summary.Total,
		Passed:    summary.Passed,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}
	err := b.db.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := b.db.TxInsert(tx, run.ID, run); err != nil {
			return err
		}
		for _, res := range results {
			rec := &Record{
				RunID:   run.ID,
				Path:    res.Path,
				Status:  res.Status.String(),
				Message: res.Message,
			}
			if err := b.db.TxInsert(tx, bolthold.NextSequence(), rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "saving run")
	}
	return run, nil
}

// Runs lists the stored runs, newest first.
func (b *Baseline) Runs() ([]Run, error) {
	var runs []Run
	if err := b.db.Find(&runs, (&bolthold.Query{}).SortBy("StartedAt").Reverse()); err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	return runs, nil
}

// Latest returns the newest run, or bolthold.ErrNotFound when there is none.
func (b *Baseline) Latest() (*Run, error) {
	runs, err := b.Runs()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, bolthold.ErrNotFound
	}
	return &runs[0], nil
}

func (b *Baseline) Records(runID string) ([]Record, error) {
	var records []Record
	if err := b.db.Find(&records, bolthold.Where("RunID").Eq(runID).SortBy("Path")); err != nil {
		return nil, errors.Wrapf(err, "loading run %s", runID)
	}
	return records, nil
}

// Compare reports the tests that passed in run runID but fail or are skipped
// in results. Tests absent from either side are ignored.
func (b *Baseline) Compare(runID string, results []Result) ([]Regression, error) {
	records, err := b.Records(runID)
	if err != nil {
		return nil, err
	}
	passed := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Status == StatusPass.String() {
			passed[rec.Path] = true
		}
	}
	var regressions []Regression
	for _, res := range results {
		if passed[res.Path] && res.Status != StatusPass {
			regressions = append(regressions, Regression{
				Path:    res.Path,
				Status:  res.Status,
				Message: res.Message,
			})
		}
	}
	sort.Slice(regressions, func(i, j int) bool {
		return regressions[i].Path < regressions[j].Path
	})
	return regressions, nil
}

// Results turns the records of a stored run back into results.
func (b *Baseline) Results(runID string) ([]Result, error) {
	records, err := b.Records(runID)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		status, err := ParseStatus(rec.Status)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", rec.ID)
		}
		results = append(results, Result{
			Path:    rec.Path,
			Status:  status,
			Message: rec.Message,
		})
	}
	return results, nil
}
