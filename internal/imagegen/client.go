// Package imagegen defines the generation capability the studio depends on
// and the prompts and response checks shared by every provider.
package imagegen

import (
	"context"
	"fmt"
	"strings"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
)

// Cloner recreates the design found in an image on a plain backdrop.
type Cloner interface {
	Clone(ctx context.Context, img *pixel.Image) (*pixel.Image, error)
}

// Client is the full set of remote generation operations. Every call may
// block for a long time and may fail; failures wrap domain.ErrRemote.
type Client interface {
	Cloner
	Transform(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error)
	Redesign(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error)
	// AnalyzeColor returns the raw model answer; callers validate it with
	// ResolveHex.
	AnalyzeColor(ctx context.Context, img *pixel.Image) (string, error)
	CreateMockup(ctx context.Context, design *pixel.Image, productPrompt, hex string) (*pixel.Image, error)
	// GenerateDetails returns the decoded answer; callers validate it with
	// ValidateDetails.
	GenerateDetails(ctx context.Context, design *pixel.Image) (domain.ProductDetails, error)
	Inpaint(ctx context.Context, img, mask *pixel.Image, instructions string) (*pixel.Image, error)
	Remix(ctx context.Context, base, ref, mask *pixel.Image, instructions string) (*pixel.Image, error)
}

// Mode selects the primary generation operation.
type Mode string

const (
	ModeClone     Mode = "clone"
	ModeTransform Mode = "transform"
	ModeRedesign  Mode = "redesign"
)

// ParseMode resolves the requested mode. The clone mode turns into a
// transform when instructions are present; an explicit transform needs them.
func ParseMode(flag, instructions string) (Mode, error) {
	hasInstructions := strings.TrimSpace(instructions) != ""
	switch Mode(strings.ToLower(strings.TrimSpace(flag))) {
	case "", ModeClone:
		if hasInstructions {
			return ModeTransform, nil
		}
		return ModeClone, nil
	case ModeTransform:
		if !hasInstructions {
			return "", fmt.Errorf("%w: transform requires instructions", domain.ErrValidation)
		}
		return ModeTransform, nil
	case ModeRedesign:
		return ModeRedesign, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, flag)
	}
}

// Label is the progress text shown while the mode runs.
func (m Mode) Label() string {
	switch m {
	case ModeTransform:
		return "Transforming design with AI..."
	case ModeRedesign:
		return "Redesigning with AI..."
	default:
		return "Cloning design..."
	}
}

// Title names the result of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeTransform:
		return "AI Transformed Design"
	case ModeRedesign:
		return "AI Redesigned"
	default:
		return "Cloned Design"
	}
}

// Generate runs the primary operation selected by mode.
func Generate(ctx context.Context, c Client, mode Mode, img *pixel.Image, instructions string) (*pixel.Image, error) {
	switch mode {
	case ModeClone:
		return c.Clone(ctx, img)
	case ModeTransform:
		return c.Transform(ctx, img, instructions)
	case ModeRedesign:
		return c.Redesign(ctx, img, instructions)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, mode)
	}
}
