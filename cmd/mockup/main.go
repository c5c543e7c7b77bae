package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/studio"
)

func main() {
	var (
		inFlag       string
		outFlag      string
		modeFlag     string
		instructions string
		productsFlag string
		detailsFlag  bool
	)
	flag.StringVar(&inFlag, "in", "", "design image to process (PNG, JPEG, GIF, BMP, TIFF or WebP)")
	flag.StringVar(&outFlag, "out", "out", "directory receiving the produced PNGs")
	flag.StringVar(&modeFlag, "mode", "clone", "primary generation mode: clone or redesign")
	flag.StringVar(&instructions, "instructions", "", "custom instructions; with -mode clone the design is transformed")
	flag.StringVar(&productsFlag, "products", "tshirt,mug", "comma separated product ids (at most 6)")
	flag.BoolVar(&detailsFlag, "details", false, "also generate title, description and tags")
	flag.Parse()

	if inFlag == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "mockup").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger, options{
		in:           inFlag,
		out:          outFlag,
		mode:         modeFlag,
		instructions: instructions,
		products:     splitList(productsFlag),
		details:      detailsFlag,
	}); err != nil {
		logger.Error().Err(err).Str("kind", domain.Kind(err)).Msg("mockup: failed")
		os.Exit(1)
	}
}

type options struct {
	in, out, mode, instructions string
	products                    []string
	details                     bool
}

func run(ctx context.Context, cfg *infra.Config, logger *infra.Logger, opts options) error {
	f, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	img, err := pixel.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	wiring, err := studio.Wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer wiring.Close()
	svc := wiring.Service

	snap, err := svc.StartRun(ctx, studio.StartInput{Image: img, Mode: opts.mode, Instructions: opts.instructions})
	if err != nil {
		return err
	}
	if err := settled(ctx, svc, snap.RunID, func(s pipeline.Snapshot) error { return stageErr(s.Primary) }); err != nil {
		return err
	}

	if _, err := svc.Process(snap.RunID, opts.products); err != nil {
		return err
	}
	if err := settled(ctx, svc, snap.RunID, func(s pipeline.Snapshot) error { return stageErr(s.Secondary) }); err != nil {
		return err
	}

	if opts.details {
		if _, err := svc.GenerateDetails(snap.RunID); err != nil {
			return err
		}
		if err := settled(ctx, svc, snap.RunID, func(s pipeline.Snapshot) error { return stageErr(s.Details) }); err != nil {
			return err
		}
	}

	return export(svc, snap.RunID, opts.out)
}

// settled waits for the background tasks of the run and checks the result.
func settled(ctx context.Context, svc *studio.Service, runID string, check func(pipeline.Snapshot) error) error {
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		svc.Reset()
		return ctx.Err()
	case <-done:
	}
	snap, ok := svc.Current()
	if !ok || snap.RunID != runID {
		return fmt.Errorf("%w: run %s", domain.ErrSuperseded, runID)
	}
	return check(snap)
}

func stageErr(v pipeline.StageView) error {
	if v.Status == domain.StatusFailed {
		return fmt.Errorf("%s: %s", v.ErrorKind, v.Error)
	}
	return nil
}

func export(svc *studio.Service, runID, dir string) error {
	snap, _ := svc.Current()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	names := []string{studio.AssetPrimary, studio.AssetPrintReady}
	for _, it := range snap.Items {
		if it.Status == domain.StatusSuccess {
			names = append(names, "mockup-"+it.ID)
		} else {
			fmt.Fprintf(os.Stderr, "%s mockup failed: %s\n", it.Name, it.Error)
		}
	}
	for _, name := range names {
		dl, err := svc.Download(runID, name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, dl.Filename)
		if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
			return err
		}
		fmt.Println(path)
	}
	if snap.ProductInfo != nil {
		fmt.Printf("\n%s\n\n%s\n\n%s\n", snap.ProductInfo.Title, snap.ProductInfo.Description, snap.ProductInfo.Tags)
	}
	if snap.ColorFallback {
		fmt.Fprintf(os.Stderr, "colour analysis gave no usable hex code; used %s\n", snap.ColorHex)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
