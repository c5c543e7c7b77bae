// Package pipeline sequences the generation stages of one studio session:
// primary generation, background removal with print resize, colour
// analysis, per-product mockups and product details.
//
// Every operation is split in two. The begin call validates its inputs and
// moves the stage to Pending under the session lock; it returns a Task whose
// Run performs the slow work and commits results. A commit is dropped with
// domain.ErrSuperseded when a newer run (or a newer processing pass of the
// same run) has started since the task began.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/pixel"
)

// Stage names a step of a run.
type Stage string

const (
	StagePrimary   Stage = "primary"
	StageSecondary Stage = "secondary"
	StageColor     Stage = "color_analysis"
	StageMockups   Stage = "mockups"
	StageDetails   Stage = "details"
)

// Outcome summarises a settled mockups stage.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial_failure"
	OutcomeFailed   Outcome = "failed"
)

// Progress labels shown while stages run.
const (
	LabelRemovingBackground = "Removing background..."
	LabelResizing           = "Resizing for print..."
	LabelAnalyzingColor     = "Analyzing color..."
	LabelDetails            = "Generating product details..."
)

// MockupLabel is the progress text while item i (1-based) of n runs.
func MockupLabel(i, n int) string {
	return fmt.Sprintf("Creating mockup %d of %d...", i, n)
}

// Recorder receives one record per settled stage. It is optional.
type Recorder interface {
	RecordStage(ctx context.Context, rec StageRecord) error
}

// StageRecord describes a settled stage for run history.
type StageRecord struct {
	RunID     string
	Mode      imagegen.Mode
	Stage     Stage
	Status    domain.Status
	Outcome   Outcome
	Succeeded int
	Failed    int
	ColorHex  string
	Error     string
	SettledAt time.Time
}

// Options configures an Orchestrator.
type Options struct {
	Logger   *infra.Logger
	Recorder Recorder
	// PrintTarget is the letterbox size of the print-ready design;
	// canvas.PrintTarget by default.
	PrintTarget canvas.Cap
	// NewID generates run and item identifiers; uuid.NewString by default.
	NewID func() string
	Now   func() time.Time
}

// Orchestrator owns the single current run of a studio session.
type Orchestrator struct {
	mu          sync.Mutex
	gen         uint64
	run         *run
	logger      *infra.Logger
	recorder    Recorder
	printTarget canvas.Cap
	newID       func() string
	now         func() time.Time
}

type stageState struct {
	status domain.Status
	err    error
}

type item struct {
	id      string
	product domain.Product
	status  domain.Status
	result  *pixel.Image
	err     error
}

type run struct {
	id           string
	gen          uint64
	ctx          context.Context
	cancel       context.CancelFunc
	client       imagegen.Client
	mode         imagegen.Mode
	instructions string
	source       *pixel.Image
	label        string
	createdAt    time.Time

	primary      stageState
	primaryImage *pixel.Image

	// pass increments on every processing pass; tasks of older passes may
	// no longer commit.
	pass       uint64
	secondary  stageState
	printReady *pixel.Image
	color      stageState
	colorHex   string
	fallback   bool
	mockups    stageState
	outcome    Outcome
	items      []*item
	details    stageState
	product    *domain.ProductDetails
}

// New builds an Orchestrator with no current run.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	target := opts.PrintTarget
	if target.W < 1 || target.H < 1 {
		target = canvas.PrintTarget
	}
	return &Orchestrator{logger: logger, recorder: opts.Recorder, printTarget: target, newID: newID, now: now}
}

// Task is the slow half of an operation.
type Task struct {
	RunID string
	Stage Stage

	o    *Orchestrator
	r    *run
	pass uint64
	work func(ctx context.Context, t *Task) error
}

// Run performs the task. The context is also cancelled when the run is
// superseded. Results of a superseded task are discarded and Run returns
// an error wrapping domain.ErrSuperseded.
func (t *Task) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.r.ctx, cancel)
	defer stop()
	return t.work(ctx, t)
}

// Start supersedes the current run and begins a primary generation of
// source with the given client.
func (o *Orchestrator) Start(client imagegen.Client, source *pixel.Image, mode imagegen.Mode, instructions string) (*Task, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: no generation client configured", domain.ErrValidation)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: no design uploaded", domain.ErrValidation)
	}
	switch mode {
	case imagegen.ModeClone, imagegen.ModeRedesign:
	case imagegen.ModeTransform:
		if strings.TrimSpace(instructions) == "" {
			return nil, fmt.Errorf("%w: transform requires instructions", domain.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, mode)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.supersedeLocked()

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:           o.newID(),
		gen:          o.gen,
		ctx:          ctx,
		cancel:       cancel,
		client:       client,
		mode:         mode,
		instructions: strings.TrimSpace(instructions),
		source:       source,
		label:        mode.Label(),
		createdAt:    o.now(),
		secondary:    stageState{status: domain.StatusIdle},
		color:        stageState{status: domain.StatusIdle},
		mockups:      stageState{status: domain.StatusIdle},
		details:      stageState{status: domain.StatusIdle},
	}
	r.primary.status, _ = domain.Advance(domain.StatusIdle, domain.StatusPending, false)
	o.run = r

	o.logger.Info().Str("run_id", r.id).Str("mode", string(mode)).Msg("pipeline: run started")
	return &Task{RunID: r.id, Stage: StagePrimary, o: o, r: r, work: runPrimary}, nil
}

// Process begins background removal and print resize of the primary
// result, followed by colour analysis and one mockup per product. Passing
// no products only prepares the print-ready design.
func (o *Orchestrator) Process(runID string, productIDs []string) (*Task, error) {
	products, err := domain.ResolveProducts(productIDs)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	r, err := o.lookupLocked(runID)
	if err != nil {
		return nil, err
	}
	if r.primary.status != domain.StatusSuccess {
		return nil, fmt.Errorf("%w: primary generation has not succeeded", domain.ErrValidation)
	}
	if r.busyProcessing() {
		return nil, fmt.Errorf("%w: processing already in progress", domain.ErrValidation)
	}

	status, err := domain.Advance(r.secondary.status, domain.StatusPending, true)
	if err != nil {
		return nil, err
	}
	r.pass++
	r.secondary = stageState{status: status}
	r.printReady = nil
	r.color = stageState{status: domain.StatusIdle}
	r.colorHex, r.fallback = "", false
	r.mockups = stageState{status: domain.StatusIdle}
	r.outcome = OutcomeNone
	r.details = stageState{status: domain.StatusIdle}
	r.product = nil
	r.items = make([]*item, len(products))
	for i, p := range products {
		r.items[i] = &item{id: o.newID(), product: p, status: domain.StatusIdle}
	}
	r.label = LabelRemovingBackground

	return &Task{RunID: r.id, Stage: StageSecondary, o: o, r: r, pass: r.pass, work: runProcess}, nil
}

// GenerateDetails begins product detail generation from the print-ready
// design.
func (o *Orchestrator) GenerateDetails(runID string) (*Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, err := o.lookupLocked(runID)
	if err != nil {
		return nil, err
	}
	if r.secondary.status != domain.StatusSuccess || r.printReady == nil {
		return nil, fmt.Errorf("%w: print-ready design is not available", domain.ErrValidation)
	}
	status, err := domain.Advance(r.details.status, domain.StatusPending, true)
	if err != nil {
		return nil, fmt.Errorf("%w: details already in progress", domain.ErrValidation)
	}
	r.details = stageState{status: status}
	r.product = nil
	if r.label == "" {
		r.label = LabelDetails
	}
	return &Task{RunID: r.id, Stage: StageDetails, o: o, r: r, pass: r.pass, work: runDetails}, nil
}

// RetryItem re-issues the mockup call of one failed item. Colour analysis
// and the print-ready design are reused.
func (o *Orchestrator) RetryItem(runID, itemID string) (*Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, err := o.lookupLocked(runID)
	if err != nil {
		return nil, err
	}
	it := r.item(itemID)
	if it == nil {
		return nil, fmt.Errorf("%w: mockup %s", domain.ErrNotFound, itemID)
	}
	if r.mockups.status == domain.StatusPending {
		return nil, fmt.Errorf("%w: mockups are still being generated", domain.ErrValidation)
	}
	if it.status != domain.StatusFailed {
		return nil, fmt.Errorf("%w: only failed mockups can be retried", domain.ErrValidation)
	}
	if r.color.status != domain.StatusSuccess || r.printReady == nil {
		return nil, fmt.Errorf("%w: colour analysis is not available; process the design again", domain.ErrValidation)
	}

	itemStatus, err := domain.Advance(it.status, domain.StatusPending, true)
	if err != nil {
		return nil, err
	}
	stageStatus, err := domain.Advance(r.mockups.status, domain.StatusPending, true)
	if err != nil {
		return nil, err
	}
	it.status, it.err, it.result = itemStatus, nil, nil
	r.mockups = stageState{status: stageStatus}
	r.outcome = OutcomeNone

	retry := func(ctx context.Context, t *Task) error {
		return runRetry(ctx, t, it)
	}
	return &Task{RunID: r.id, Stage: StageMockups, o: o, r: r, pass: r.pass, work: retry}, nil
}

// Reset supersedes the current run and leaves the session idle.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.supersedeLocked()
	o.run = nil
}

func (o *Orchestrator) supersedeLocked() {
	if o.run != nil {
		o.run.cancel()
		o.logger.Debug().Str("run_id", o.run.id).Msg("pipeline: run superseded")
	}
	o.gen++
}

func (o *Orchestrator) lookupLocked(runID string) (*run, error) {
	if o.run == nil {
		return nil, fmt.Errorf("%w: no active run", domain.ErrNotFound)
	}
	if o.run.id != runID {
		return nil, fmt.Errorf("%w: run %s is no longer current", domain.ErrSuperseded, runID)
	}
	return o.run, nil
}

// commit applies fn to the task's run when the task is still current.
func (o *Orchestrator) commit(t *Task, fn func(r *run)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run != t.r || t.r.gen != o.gen || (t.Stage != StagePrimary && t.r.pass != t.pass) {
		o.logger.Debug().Str("run_id", t.RunID).Str("stage", string(t.Stage)).Msg("pipeline: stale result discarded")
		return fmt.Errorf("%w: run %s", domain.ErrSuperseded, t.RunID)
	}
	fn(t.r)
	return nil
}

func (o *Orchestrator) record(rec StageRecord) {
	if o.recorder == nil {
		return
	}
	rec.SettledAt = o.now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.recorder.RecordStage(ctx, rec); err != nil {
		o.logger.Warn().Err(err).Str("run_id", rec.RunID).Str("stage", string(rec.Stage)).Msg("pipeline: record stage failed")
	}
}

func (r *run) busyProcessing() bool {
	return r.secondary.status == domain.StatusPending ||
		r.color.status == domain.StatusPending ||
		r.mockups.status == domain.StatusPending
}

func (r *run) item(id string) *item {
	for _, it := range r.items {
		if it.id == id {
			return it
		}
	}
	return nil
}

// settle moves a pending stage to its terminal status.
func settle(s *stageState, err error) {
	to := domain.StatusSuccess
	if err != nil {
		to = domain.StatusFailed
	}
	if next, advErr := domain.Advance(s.status, to, false); advErr == nil {
		s.status = next
	}
	s.err = err
}
