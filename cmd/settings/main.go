package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mockupstudio/internal/infra"
	"mockupstudio/internal/infra/credentials"
	"mockupstudio/internal/studio"
)

func main() {
	var (
		geminiFlag string
		falFlag    string
		showFlag   bool
	)
	flag.StringVar(&geminiFlag, "gemini-key", "", "Gemini API key to save (keeps the saved one when empty)")
	flag.StringVar(&falFlag, "fal-key", "", "fal.ai API key to save (keeps the saved one when empty)")
	flag.BoolVar(&showFlag, "show", false, "print the saved keys, masked, and exit")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "settings").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	wiring, err := studio.Wire(ctx, cfg, &logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open settings store: %v\n", err)
		os.Exit(1)
	}
	defer wiring.Close()
	svc := wiring.Service

	current, err := svc.Settings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	if showFlag {
		masked := current.Masked()
		fmt.Printf("gemini: %s\nfal:    %s\n", orNone(masked.GeminiAPIKey), orNone(masked.FalAPIKey))
		return
	}

	next := credentials.Settings{GeminiAPIKey: geminiFlag, FalAPIKey: falFlag}.WithFallback(current)
	if next == current.Normalized() {
		fmt.Fprintln(os.Stderr, "nothing to save: pass -gemini-key and/or -fal-key")
		os.Exit(1)
	}
	if err := svc.SaveSettings(ctx, next); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("settings saved")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
