// package tasks implements the collection upload pipeline.
//
// The core abstraction is UploadEngine, which resolves the target folder, enumerates it, plans and applies additions.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yday/internal/metrics"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/services"
	"github.com/desertthunder/yday/internal/shared"
)

const (
	// PageSize is the number of releases requested per collection page.
	PageSize = 100
	// AddDelay is the minimum spacing between add calls.
	AddDelay = time.Second
)

// Result contains all data from a full upload.
type Result struct {
	RunID          string
	Folder         models.Folder
	FolderCreated  bool
	Plan           []models.PlanEntry
	Outcomes       []models.ItemOutcome // One per requested id, in request order
	AlreadyPresent int
	Added          int
	Failed         int
}

// Preview is the outcome of a dry run. Folder is nil when the folder does not exist yet.
type Preview struct {
	FolderName string
	Folder     *models.Folder
	Existing   int
	Plan       []models.PlanEntry
}

// Reconciler defines the upload operations.
type Reconciler interface {
	// Run resolves (or creates) the folder, enumerates it, and adds every requested release not already filed there.
	Run(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*Result, error)

	// Preview computes the plan for req without creating folders or adding releases.
	Preview(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*Preview, error)
}

// UploadEngine implements [Reconciler] on top of a [services.Catalog].
//
// The engine holds no per-request state and may serve concurrent requests.
type UploadEngine struct {
	catalog  services.Catalog
	clock    Clock
	delay    time.Duration
	pageSize int
	logger   *log.Logger
}

var _ Reconciler = (*UploadEngine)(nil)

// EngineOption configures an UploadEngine.
type EngineOption func(*UploadEngine)

// WithClock sets the clock used to pace add calls.
func WithClock(c Clock) EngineOption {
	return func(e *UploadEngine) { e.clock = c }
}

// WithDelay overrides [AddDelay].
func WithDelay(d time.Duration) EngineOption {
	return func(e *UploadEngine) { e.delay = d }
}

// WithPageSize overrides [PageSize].
func WithPageSize(n int) EngineOption {
	return func(e *UploadEngine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithLogger sets the engine's base logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *UploadEngine) { e.logger = l }
}

// NewUploadEngine creates a new UploadEngine backed by catalog.
func NewUploadEngine(catalog services.Catalog, opts ...EngineOption) *UploadEngine {
	e := &UploadEngine{
		catalog:  catalog,
		clock:    RealClock(),
		delay:    AddDelay,
		pageSize: PageSize,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *UploadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// FindFolder returns the first folder named exactly name, or nil when there is none.
func (e *UploadEngine) FindFolder(ctx context.Context, account models.Account, name string) (*models.Folder, error) {
	folders, err := e.catalog.ListFolders(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: list folders: %w", shared.ErrRemoteUnavailable, err)
	}
	for _, f := range folders {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, nil
}

// Resolve finds the folder by name, creating it when missing. created reports whether a folder was created.
func (e *UploadEngine) Resolve(ctx context.Context, account models.Account, name string, progress chan<- ProgressUpdate) (folder *models.Folder, created bool, err error) {
	e.sendProgress(progress, resolvingFolderUpdate(name))

	folder, err = e.FindFolder(ctx, account, name)
	if err != nil {
		return nil, false, err
	}
	if folder != nil {
		e.sendProgress(progress, resolvedFolderUpdate(folder))
		return folder, false, nil
	}

	e.sendProgress(progress, creatingFolderUpdate(name))
	folder, err = e.catalog.CreateFolder(ctx, account, name)
	if err != nil {
		return nil, false, fmt.Errorf("%w %q: %w", shared.ErrFolderCreateFailed, name, err)
	}

	metrics.RecordFolderCreated()
	e.sendProgress(progress, createdFolderUpdate(folder))
	return folder, true, nil
}

// Enumerate fetches every page of the folder and returns the set of release ids filed there.
//
// The page count reported by the first page bounds the loop.
func (e *UploadEngine) Enumerate(ctx context.Context, account models.Account, folder models.Folder, progress chan<- ProgressUpdate) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	first, err := e.catalog.ListItems(ctx, account, folder.ID, 1, e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: page 1: %w", shared.ErrRemoteUnavailable, err)
	}
	totalPages := first.TotalPages
	collect(existing, first.Items)
	e.sendProgress(progress, enumeratePageUpdate(1, totalPages, len(existing)))

	for page := 2; page <= totalPages; page++ {
		p, err := e.catalog.ListItems(ctx, account, folder.ID, page, e.pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", shared.ErrRemoteUnavailable, page, err)
		}
		collect(existing, p.Items)
		e.sendProgress(progress, enumeratePageUpdate(page, totalPages, len(existing)))
	}

	return existing, nil
}

func collect(set map[string]struct{}, items []models.Item) {
	for _, it := range items {
		set[it.ID] = struct{}{}
	}
}

// Plan tags each requested id [models.Skip] when it is in existing and [models.Add] otherwise.
//
// Order is preserved and repeated ids are planned independently against the same snapshot.
func Plan(requested []string, existing map[string]struct{}) []models.PlanEntry {
	plan := make([]models.PlanEntry, len(requested))
	for i, id := range requested {
		action := models.Add
		if _, ok := existing[id]; ok {
			action = models.Skip
		}
		plan[i] = models.PlanEntry{ItemID: id, Action: action}
	}
	return plan
}

// Apply executes plan in order, pacing add calls at least the configured delay apart.
//
// A failed add is recorded and the next entry proceeds. When ctx is done the outcomes so far are returned with ctx's error.
func (e *UploadEngine) Apply(ctx context.Context, account models.Account, folder models.Folder, plan []models.PlanEntry, progress chan<- ProgressUpdate) ([]models.ItemOutcome, error) {
	pacer := NewPacer(e.clock, e.delay)
	outcomes := make([]models.ItemOutcome, 0, len(plan))
	total := len(plan)

	for i, entry := range plan {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		var outcome models.ItemOutcome
		switch entry.Action {
		case models.Skip:
			outcome = models.ItemOutcome{ItemID: entry.ItemID, Status: models.AlreadyPresent}
		default:
			if err := pacer.Wait(ctx); err != nil {
				return outcomes, err
			}

			item, err := e.catalog.AddItem(ctx, account, folder.ID, entry.ItemID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return outcomes, ctxErr
				}
				addErr := fmt.Errorf("%w: %w", shared.ErrItemAddFailed, err)
				e.logger.Warn("add failed", "release", entry.ItemID, "error", addErr)
				outcome = models.ItemOutcome{ItemID: entry.ItemID, Status: models.Failed, Detail: err.Error(), Err: addErr}
			} else {
				outcome = models.ItemOutcome{ItemID: entry.ItemID, Status: models.Added, Detail: item.Title}
			}
		}

		metrics.RecordOutcome(outcome.Status.String())
		outcomes = append(outcomes, outcome)
		e.sendProgress(progress, applyItemUpdate(i+1, total, outcome))
	}

	return outcomes, nil
}

// Run performs a full upload: resolve, enumerate, plan, apply.
//
// A non-nil Result accompanies a context error so callers can report partial outcomes.
func (e *UploadEngine) Run(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &Result{RunID: shared.GenerateID()}
	logger := shared.WithLogger(e.logger, "run", result.RunID, "user", req.Account.Username, "folder", req.FolderName)
	start := time.Now()

	folder, created, err := e.Resolve(ctx, req.Account, req.FolderName, progress)
	if err != nil {
		logger.Error("resolve folder failed", "error", err)
		return nil, err
	}
	result.Folder = *folder
	result.FolderCreated = created
	if created {
		logger.Info("created folder", "id", folder.ID)
	}

	existing, err := e.Enumerate(ctx, req.Account, *folder, progress)
	if err != nil {
		logger.Error("enumerate folder failed", "error", err)
		return nil, err
	}
	logger.Debug("enumerated folder", "id", folder.ID, "releases", len(existing))

	result.Plan = Plan(req.ItemIDs, existing)
	e.sendProgress(progress, planUpdate(result.Plan))

	outcomes, err := e.Apply(ctx, req.Account, *folder, result.Plan, progress)
	result.Outcomes = outcomes
	result.tally()
	if err != nil {
		logger.Warn("upload interrupted", "completed", len(outcomes), "requested", len(req.ItemIDs), "error", err)
		return result, err
	}

	logger.Info("upload complete",
		"added", result.Added, "already_present", result.AlreadyPresent, "failed", result.Failed,
		"duration", time.Since(start).Round(time.Millisecond))
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// Preview resolves the folder without creating it and plans req against its contents.
//
// A missing folder yields a plan where every id is [models.Add].
func (e *UploadEngine) Preview(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*Preview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, resolvingFolderUpdate(req.FolderName))
	folder, err := e.FindFolder(ctx, req.Account, req.FolderName)
	if err != nil {
		return nil, err
	}

	preview := &Preview{FolderName: req.FolderName, Folder: folder}
	existing := map[string]struct{}{}
	if folder != nil {
		e.sendProgress(progress, resolvedFolderUpdate(folder))
		if existing, err = e.Enumerate(ctx, req.Account, *folder, progress); err != nil {
			return nil, err
		}
	}

	preview.Existing = len(existing)
	preview.Plan = Plan(req.ItemIDs, existing)
	e.sendProgress(progress, planUpdate(preview.Plan))
	return preview, nil
}

func (r *Result) tally() {
	r.AlreadyPresent, r.Added, r.Failed = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case models.AlreadyPresent:
			r.AlreadyPresent++
		case models.Added:
			r.Added++
		case models.Failed:
			r.Failed++
		}
	}
}
