package pipeline

import (
	"context"
	"fmt"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/segment"
)

func runPrimary(ctx context.Context, t *Task) error {
	r := t.r
	img, err := imagegen.Generate(ctx, r.client, r.mode, r.source, r.instructions)
	if cerr := t.o.commit(t, func(r *run) {
		settle(&r.primary, err)
		r.primaryImage = img
		r.label = ""
	}); cerr != nil {
		return cerr
	}
	t.o.logStage(t, StagePrimary, err)
	t.o.record(StageRecord{RunID: r.id, Mode: r.mode, Stage: StagePrimary, Status: statusOf(err), Error: errText(err)})
	return err
}

func runProcess(ctx context.Context, t *Task) error {
	var primary *pixel.Image
	var items []*item
	if err := t.o.commit(t, func(r *run) {
		primary = r.primaryImage
		items = r.items
	}); err != nil {
		return err
	}

	ready, err := printReady(t, primary)
	var failed int
	if cerr := t.o.commit(t, func(r *run) {
		settle(&r.secondary, err)
		r.printReady = ready
		r.label = ""
		if err != nil {
			failed = failQueued(r, "print-ready design failed", err)
		}
	}); cerr != nil {
		return cerr
	}
	t.o.logStage(t, StageSecondary, err)
	t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageSecondary, Status: statusOf(err), Error: errText(err)})
	if err != nil {
		if failed > 0 {
			t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageMockups, Status: domain.StatusFailed, Outcome: OutcomeFailed, Failed: failed, Error: errText(err)})
		}
		return err
	}
	if len(items) == 0 {
		return nil
	}

	hex, err := analyzeColor(ctx, t)
	if err != nil {
		return err
	}
	return runMockups(ctx, t, items, ready, hex)
}

// printReady removes the backdrop and letterboxes to the print target.
func printReady(t *Task, primary *pixel.Image) (*pixel.Image, error) {
	if primary == nil {
		return nil, fmt.Errorf("%w: no primary image", domain.ErrDecode)
	}
	cut, err := segment.Segment(primary)
	if err != nil {
		return nil, err
	}
	if err := t.o.commit(t, func(r *run) { r.label = LabelResizing }); err != nil {
		return nil, err
	}
	return canvas.LetterboxResize(cut, t.o.printTarget.W, t.o.printTarget.H)
}

// analyzeColor runs the single colour call shared by all mockups. On
// failure every queued item fails without a remote call of its own.
func analyzeColor(ctx context.Context, t *Task) (string, error) {
	if err := t.o.commit(t, func(r *run) {
		r.color.status, _ = domain.Advance(r.color.status, domain.StatusPending, false)
		r.label = LabelAnalyzingColor
	}); err != nil {
		return "", err
	}

	raw, err := t.r.client.AnalyzeColor(ctx, t.r.source)
	hex, valid := imagegen.ResolveHex(raw)
	if err != nil {
		hex = ""
	}
	var failed int
	if cerr := t.o.commit(t, func(r *run) {
		settle(&r.color, err)
		if err != nil {
			failed = failQueued(r, "colour analysis failed", err)
			return
		}
		r.colorHex, r.fallback = hex, !valid
		r.mockups.status, _ = domain.Advance(r.mockups.status, domain.StatusPending, false)
	}); cerr != nil {
		return "", cerr
	}

	if err != nil {
		t.o.logStage(t, StageColor, err)
		t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageColor, Status: domain.StatusFailed, Error: errText(err)})
		t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageMockups, Status: domain.StatusFailed, Outcome: OutcomeFailed, Failed: failed, Error: errText(err)})
		return "", err
	}
	if !valid {
		t.o.logger.Warn().Str("run_id", t.RunID).Str("answer", raw).Str("fallback", hex).Msg("pipeline: colour answer is not a hex code")
	}
	t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageColor, Status: domain.StatusSuccess, ColorHex: hex})
	return hex, nil
}

// failQueued fails every queued item and the Mockups stage without any
// remote call. It returns the number of items failed.
func failQueued(r *run, reason string, cause error) int {
	if len(r.items) == 0 {
		return 0
	}
	for _, it := range r.items {
		it.status, _ = domain.Advance(it.status, domain.StatusPending, false)
		it.status, _ = domain.Advance(it.status, domain.StatusFailed, false)
		it.err = fmt.Errorf("%s: %w", reason, cause)
	}
	r.mockups.status, _ = domain.Advance(r.mockups.status, domain.StatusPending, false)
	settle(&r.mockups, cause)
	r.outcome = OutcomeFailed
	r.label = ""
	return len(r.items)
}

// runMockups issues one mockup call per item, strictly in order. A failed
// item does not stop the ones after it.
func runMockups(ctx context.Context, t *Task, items []*item, design *pixel.Image, hex string) error {
	for i, it := range items {
		if err := t.o.commit(t, func(r *run) {
			it.status, _ = domain.Advance(it.status, domain.StatusPending, false)
			r.label = MockupLabel(i+1, len(items))
		}); err != nil {
			return err
		}
		if err := mockupItem(ctx, t, it, design, hex); err != nil {
			return err
		}
	}
	return finishMockups(t)
}

func runRetry(ctx context.Context, t *Task, it *item) error {
	var design *pixel.Image
	var hex string
	if err := t.o.commit(t, func(r *run) {
		design, hex = r.printReady, r.colorHex
		r.label = "Retrying " + it.product.Name + " mockup..."
	}); err != nil {
		return err
	}
	if err := mockupItem(ctx, t, it, design, hex); err != nil {
		return err
	}
	return finishMockups(t)
}

func mockupItem(ctx context.Context, t *Task, it *item, design *pixel.Image, hex string) error {
	img, err := t.r.client.CreateMockup(ctx, design, it.product.Prompt, hex)
	if cerr := t.o.commit(t, func(r *run) {
		to := domain.StatusSuccess
		if err != nil {
			to = domain.StatusFailed
			img = nil
		}
		it.status, _ = domain.Advance(it.status, to, false)
		it.result, it.err = img, err
	}); cerr != nil {
		return cerr
	}
	ev := t.o.logger.Debug()
	if err != nil {
		ev = t.o.logger.Warn().Err(err)
	}
	ev.Str("run_id", t.RunID).Str("item_id", it.id).Str("product", it.product.ID).Msg("pipeline: mockup settled")
	return nil
}

// finishMockups settles the stage once every item is terminal.
func finishMockups(t *Task) error {
	var rec StageRecord
	if err := t.o.commit(t, func(r *run) {
		for _, it := range r.items {
			switch it.status {
			case domain.StatusSuccess:
				rec.Succeeded++
			case domain.StatusFailed:
				rec.Failed++
			}
		}
		var err error
		switch {
		case rec.Failed == 0:
			r.outcome = OutcomeComplete
		case rec.Succeeded == 0:
			r.outcome = OutcomeFailed
			err = fmt.Errorf("%w: every mockup failed", domain.ErrRemote)
		default:
			r.outcome = OutcomePartial
		}
		settle(&r.mockups, err)
		r.label = ""
		rec.Status, rec.Outcome, rec.ColorHex = r.mockups.status, r.outcome, r.colorHex
	}); err != nil {
		return err
	}
	rec.RunID, rec.Mode, rec.Stage = t.RunID, t.r.mode, StageMockups
	t.o.record(rec)
	t.o.logger.Info().
		Str("run_id", t.RunID).
		Str("stage", string(StageMockups)).
		Str("outcome", string(rec.Outcome)).
		Int("succeeded", rec.Succeeded).
		Int("failed", rec.Failed).
		Msg("pipeline: stage settled")

	switch rec.Outcome {
	case OutcomePartial:
		return fmt.Errorf("%w: %d of %d mockups failed", domain.ErrPartialFailure, rec.Failed, rec.Failed+rec.Succeeded)
	case OutcomeFailed:
		return fmt.Errorf("%w: every mockup failed", domain.ErrRemote)
	}
	return nil
}

func runDetails(ctx context.Context, t *Task) error {
	var design *pixel.Image
	if err := t.o.commit(t, func(r *run) { design = r.printReady }); err != nil {
		return err
	}
	raw, err := t.r.client.GenerateDetails(ctx, design)
	var details domain.ProductDetails
	if err == nil {
		details, err = imagegen.ValidateDetails(raw)
	}
	if cerr := t.o.commit(t, func(r *run) {
		settle(&r.details, err)
		if err == nil {
			r.product = &details
		}
		if r.label == LabelDetails {
			r.label = ""
		}
	}); cerr != nil {
		return cerr
	}
	t.o.logStage(t, StageDetails, err)
	t.o.record(StageRecord{RunID: t.RunID, Mode: t.r.mode, Stage: StageDetails, Status: statusOf(err), Error: errText(err)})
	return err
}

func (o *Orchestrator) logStage(t *Task, stage Stage, err error) {
	if err != nil {
		o.logger.Warn().Err(err).Str("run_id", t.RunID).Str("stage", string(stage)).Msg("pipeline: stage failed")
		return
	}
	o.logger.Info().Str("run_id", t.RunID).Str("stage", string(stage)).Msg("pipeline: stage settled")
}

func statusOf(err error) domain.Status {
	if err != nil {
		return domain.StatusFailed
	}
	return domain.StatusSuccess
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
