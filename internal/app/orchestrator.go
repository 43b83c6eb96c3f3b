// Package app ties the crawl pipeline into long-running audit jobs the API
// server exposes: each job owns a cancel func and a buffered event channel
// the websocket layer drains.
package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sableview/uivet/internal/crawl"
	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/enrich"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/scan"
	"github.com/sableview/uivet/internal/sitemap"
	"github.com/sableview/uivet/internal/store"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	URL          string `json:"url,omitempty"`
	PagesScanned int    `json:"pages_scanned,omitempty"`
	TotalFound   int    `json:"total_found,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// AuditRequest is one job submission.
type AuditRequest struct {
	URL      string           `json:"url"`
	MaxPages int              `json:"max_pages,omitempty"`
	MaxDepth int              `json:"max_depth,omitempty"`
	Scan     model.ScanConfig `json:"scan,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at,omitempty"`
	Events    chan JobEvent `json:"-"`

	// CrawlID references the persisted result when a store is attached.
	CrawlID string `json:"crawl_id,omitempty"`

	Result *model.CrawlResult `json:"result,omitempty"`
}

// AuditRunner executes one crawl. The orchestrator depends on this seam so
// tests can run jobs without a browser.
type AuditRunner interface {
	Run(ctx context.Context, req AuditRequest, onProgress func(crawl.Progress)) (model.CrawlResult, error)
}

// Orchestrator owns the audit job table.
type Orchestrator struct {
	cfg    *Config
	runner AuditRunner
	store  *store.Store
	logger logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// SetStore attaches the audit history store; finished jobs are persisted to
// it.
func (o *Orchestrator) SetStore(s *store.Store) {
	o.store = s
}

// NewOrchestrator ties together config, runner and logger. A nil runner
// gets the default browser-backed pipeline.
func NewOrchestrator(cfg *Config, runner AuditRunner, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("app")
	}
	if runner == nil {
		runner = &pipelineRunner{cfg: cfg, logger: logger}
	}
	return &Orchestrator{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

func (o *Orchestrator) ensureJobMaps() {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.jobs == nil {
		o.jobs = make(map[string]*Job)
	}
	if o.jobCancels == nil {
		o.jobCancels = make(map[string]context.CancelFunc)
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
	o.jobsMu.Unlock()
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: errMsg})
}

// StartAuditJob registers a job and runs the crawl on its own goroutine.
func (o *Orchestrator) StartAuditJob(ctx context.Context, req AuditRequest) (*Job, error) {
	o.ensureJobMaps()

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		URL:       req.URL,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobsMu.Unlock()

	jobCtx, cancel := context.WithCancel(ctx)
	o.jobsMu.Lock()
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go func() {
		defer func() {
			o.jobsMu.Lock()
			j := o.jobs[jobID]
			if j != nil {
				j.EndedAt = time.Now().UTC()
			}
			delete(o.jobCancels, jobID)
			o.jobsMu.Unlock()

			// Close events channel so websocket loops terminate cleanly.
			if j != nil && j.Events != nil {
				close(j.Events)
			}
		}()

		o.setStatus(jobID, JobRunning, "")

		onProgress := func(p crawl.Progress) {
			o.emitJobEvent(jobID, JobEvent{
				JobID:        jobID,
				Type:         JobEventProgress,
				URL:          p.URL,
				PagesScanned: p.PagesScanned,
				TotalFound:   p.TotalFound,
			})
		}

		result, err := o.runner.Run(jobCtx, req, onProgress)
		if err != nil {
			select {
			case <-jobCtx.Done():
				o.setStatus(jobID, JobCanceled, jobCtx.Err().Error())
			default:
				o.setStatus(jobID, JobFailed, err.Error())
			}
			return
		}

		// A crawl cancelled at a batch boundary hands back its partial
		// result with a nil error. The job still reports canceled, with
		// the partial result attached.
		status := JobDone
		errMsg := ""
		if jobCtx.Err() != nil {
			status = JobCanceled
			errMsg = jobCtx.Err().Error()
		}

		var crawlID string
		if o.store != nil {
			crawlID, err = o.store.SaveCrawl(context.WithoutCancel(jobCtx), result)
			if err != nil {
				o.logger.Warn("persisting crawl failed",
					logging.Field{Key: "job_id", Value: jobID},
					logging.Field{Key: "error", Value: err.Error()})
			}
		}

		o.jobsMu.Lock()
		if j, ok := o.jobs[jobID]; ok {
			j.Status = status
			j.Error = errMsg
			j.Result = &result
			j.CrawlID = crawlID
		}
		o.jobsMu.Unlock()
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: status, Error: errMsg})
	}()

	return job, nil
}

// CancelJob triggers the job's context cancellation. The running crawl
// honors it at its next batch boundary.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobs[jobID]
}

// ListJobs returns all known jobs, newest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// pipelineRunner is the production runner: a fresh browser, scanner and
// crawler per job. Enrichment applies to each page's findings after the
// crawl finishes.
type pipelineRunner struct {
	cfg    *Config
	logger logging.Logger
}

func (r *pipelineRunner) Run(ctx context.Context, req AuditRequest, onProgress func(crawl.Progress)) (model.CrawlResult, error) {
	drv, err := driver.New(r.cfg.DriverCfg, r.logger)
	if err != nil {
		return model.CrawlResult{}, err
	}
	defer drv.Close()

	scanCfg := req.Scan
	if len(scanCfg.Viewports) == 0 && !scanCfg.CheckLayout && !scanCfg.CheckAccessibility &&
		!scanCfg.CheckInteraction && !scanCfg.CheckTypo && !scanCfg.CheckVisual &&
		!scanCfg.CheckNavigation && !scanCfg.CheckForms {
		scanCfg = r.cfg.ScanCfg
	}

	scanner := scan.NewScanner(drv, scanCfg, r.logger)
	resolver := sitemap.NewResolver(nil, r.logger)
	crawler := crawl.NewCrawler(scanner, resolver, r.logger)

	opts := r.cfg.CrawlOpts
	opts.OnProgress = onProgress

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = r.cfg.MaxPages
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = r.cfg.MaxDepth
	}

	result, err := crawler.Crawl(ctx, req.URL, maxPages, maxDepth, opts)
	if err != nil {
		return model.CrawlResult{}, err
	}

	if r.cfg.EnrichCfg.Endpoint != "" {
		enricher := enrich.New(r.cfg.EnrichCfg, r.logger)
		for i := range result.Pages {
			result.Pages[i].Findings = enricher.Enrich(ctx, result.Pages[i].Findings)
		}
	}
	return result, nil
}
