// Package upload sends the selected images to an object store, relays their
// progress and records a metadata document for each successful upload.
package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/objstore"
	"github.com/nikbrunner/imgpick/internal/source"
	"github.com/nikbrunner/imgpick/internal/storage"
)

// FetchFailedText is the error shown when an image's bytes cannot be read.
const FetchFailedText = "Failed to process image"

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "images"

// Job is one image to upload.
type Job struct {
	ID          string
	URL         string
	Name        string
	Filter      string
	Description string
}

// Jobs builds one job per selected record, in selection order. Every job
// carries the store's current filter.
func Jobs(store *model.Store) []Job {
	selected := store.SelectedRecords()
	jobs := make([]Job, 0, len(selected))
	for _, r := range selected {
		jobs = append(jobs, Job{
			ID:          r.ID,
			URL:         r.URL,
			Name:        r.Name,
			Filter:      store.CurrentFilter,
			Description: r.Description,
		})
	}
	return jobs
}

// Outcome is the terminal state of one job.
type Outcome struct {
	ID     string
	Name   string
	Key    string
	URL    string // download URL, set once the object is stored
	Status model.UploadStatus
	Err    string
}

// Summary tallies a finished batch.
type Summary struct {
	Succeeded int
	Failed    int
	Outcomes  []Outcome // in job order
}

// Reporter receives per-job events. Calls for different jobs may arrive
// concurrently.
type Reporter interface {
	Progress(id string, pct float64)
	Finished(o Outcome)
}

// OpenFunc reads the bytes behind a record locator.
type OpenFunc func(ctx context.Context, locator string) (io.ReadCloser, int64, error)

// Orchestrator runs upload batches.
type Orchestrator struct {
	objects    objstore.Store
	documents  storage.DocumentStore
	collection string
	prefix     string
	open       OpenFunc
	now        func() time.Time
}

// OrchestratorParams holds parameters for creating an Orchestrator.
type OrchestratorParams struct {
	Objects    objstore.Store
	Documents  storage.DocumentStore
	Collection string
	Prefix     string
	Open       OpenFunc         // defaults to source.Open
	Now        func() time.Time // defaults to time.Now
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	o := &Orchestrator{
		objects:    params.Objects,
		documents:  params.Documents,
		collection: params.Collection,
		prefix:     params.Prefix,
		open:       params.Open,
		now:        params.Now,
	}
	if o.collection == "" {
		o.collection = "images"
	}
	if o.prefix == "" {
		o.prefix = DefaultPrefix
	}
	if o.open == nil {
		o.open = source.Open
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Key returns the object key for name at t: <prefix>/<unix-millis>_<name>.
// Two uploads of the same name in the same millisecond collide.
func Key(prefix, name string, t time.Time) string {
	name = strings.ReplaceAll(name, "/", "_")
	return path.Join(prefix, fmt.Sprintf("%d_%s", t.UnixMilli(), name))
}

// Run starts every job at once and returns when all of them have finished.
// A failed job never stops the others.
func (o *Orchestrator) Run(ctx context.Context, rep Reporter, jobs []Job) Summary {
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = o.runOne(ctx, rep, job)
			rep.Finished(outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Status == model.StatusSuccess {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	logrus.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("upload batch finished")

	return summary
}

func (o *Orchestrator) runOne(ctx context.Context, rep Reporter, job Job) Outcome {
	out := Outcome{ID: job.ID, Name: job.Name}
	log := logrus.WithField("id", job.ID)

	rc, size, err := o.open(ctx, job.URL)
	if err != nil {
		log.WithError(err).WithField("url", job.URL).Error("failed to read image")
		out.Status, out.Err = model.StatusError, FetchFailedText
		return out
	}
	defer rc.Close()

	out.Key = Key(o.prefix, job.Name, o.now())
	log = log.WithField("key", out.Key)

	t := StartTransfer(ctx, o.objects, out.Key, rc, size)
	for pct := range t.Progress {
		rep.Progress(job.ID, pct)
	}
	res := t.Wait()
	if res.Err != nil {
		log.WithError(res.Err).Error("upload failed")
		out.Status, out.Err = model.StatusError, res.Err.Error()
		return out
	}
	out.URL = res.URL

	_, err = o.documents.AddDocument(ctx, o.collection, storage.Document{
		URL:         res.URL,
		Name:        job.Name,
		Description: job.Description,
		Filter:      job.Filter,
		CreatedAt:   o.now(),
	})
	if err != nil {
		log.WithError(err).Warn("metadata write failed, stored object left in place")
		out.Status, out.Err = model.StatusError, "metadata: "+err.Error()
		return out
	}

	log.Info("upload complete")
	out.Status = model.StatusSuccess
	return out
}

// StoreReporter applies events to a mutex-guarded store.
type StoreReporter struct {
	Store *model.SyncStore
}

// Progress implements Reporter.
func (s StoreReporter) Progress(id string, pct float64) {
	s.Store.UpdateUploadProgress(id, pct)
}

// Finished implements Reporter.
func (s StoreReporter) Finished(o Outcome) {
	s.Store.SetUploadStatus(o.ID, o.Status, o.Err)
}

// ReporterFuncs adapts plain functions to a Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	OnProgress func(id string, pct float64)
	OnFinished func(o Outcome)
}

// Progress implements Reporter.
func (f ReporterFuncs) Progress(id string, pct float64) {
	if f.OnProgress != nil {
		f.OnProgress(id, pct)
	}
}

// Finished implements Reporter.
func (f ReporterFuncs) Finished(o Outcome) {
	if f.OnFinished != nil {
		f.OnFinished(o)
	}
}

// Tee sends every event to each reporter in order.
func Tee(reporters ...Reporter) Reporter {
	return tee(reporters)
}

type tee []Reporter

func (t tee) Progress(id string, pct float64) {
	for _, r := range t {
		r.Progress(id, pct)
	}
}

func (t tee) Finished(o Outcome) {
	for _, r := range t {
		r.Finished(o)
	}
}
