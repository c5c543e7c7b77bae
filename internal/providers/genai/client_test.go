package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/pixel"
)

func testImage(t *testing.T, w, h int, c color.NRGBA) *pixel.Image {
	t.Helper()
	px := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(px.Pix); i += 4 {
		px.Pix[i], px.Pix[i+1], px.Pix[i+2], px.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	img, err := pixel.Wrap(px)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	return img
}

func inlineResponse(t *testing.T, img *pixel.Image) geminiGenerateContentResponse {
	t.Helper()
	data, err := img.PNG()
	if err != nil {
		t.Fatalf("PNG error: %v", err)
	}
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{
		Content: geminiContent{Parts: []geminiPart{
			{Text: "here you go"},
			{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(data)}},
		}},
	}}}
}

func textResponse(text string) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}}}
}

func TestCloneSendsImageAndPrompt(t *testing.T) {
	out := testImage(t, 3, 2, color.NRGBA{R: 9, A: 255})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash-image-preview:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("unexpected key: %s", got)
		}
		var payload geminiGenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		parts := payload.Contents[0].Parts
		if len(parts) != 2 || parts[0].InlineData == nil || !strings.Contains(parts[1].Text, "ONLY the central design") {
			t.Errorf("unexpected parts: %+v", parts)
		}
		if payload.GenerationConfig == nil || strings.Join(payload.GenerationConfig.ResponseModalities, ",") != "IMAGE,TEXT" {
			t.Errorf("unexpected generation config: %+v", payload.GenerationConfig)
		}
		_ = json.NewEncoder(w).Encode(inlineResponse(t, out))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Clone(context.Background(), testImage(t, 4, 4, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatalf("Clone error: %v", err)
	}
	if !pixel.Equal(got, out) {
		t.Fatalf("returned image does not match response")
	}
}

func TestRemixSendsPromptThenThreeImages(t *testing.T) {
	out := testImage(t, 2, 2, color.NRGBA{G: 200, A: 255})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload geminiGenerateContentRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		parts := payload.Contents[0].Parts
		if len(parts) != 4 || !strings.Contains(parts[0].Text, `"swap the hat"`) {
			t.Errorf("unexpected parts: %+v", parts)
		}
		for _, p := range parts[1:] {
			if p.InlineData == nil || p.InlineData.MimeType != "image/png" {
				t.Errorf("expected inline png part, got %+v", p)
			}
		}
		_ = json.NewEncoder(w).Encode(inlineResponse(t, out))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	in := testImage(t, 2, 2, color.NRGBA{A: 255})
	if _, err := client.Remix(context.Background(), in, in, in, "swap the hat"); err != nil {
		t.Fatalf("Remix error: %v", err)
	}
}

func TestAnalyzeColorReturnsRawText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("  #1F2937\n"))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	got, err := client.AnalyzeColor(context.Background(), testImage(t, 2, 2, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatalf("AnalyzeColor error: %v", err)
	}
	if got != "#1F2937" {
		t.Fatalf("unexpected color: %q", got)
	}
}

func TestGenerateDetailsUsesSchema(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("details must use the text model, got %s", r.URL.Path)
		}
		var payload geminiGenerateContentRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		cfg := payload.GenerationConfig
		if cfg == nil || cfg.ResponseMimeType != "application/json" || cfg.ResponseSchema == nil || len(cfg.ResponseSchema.Required) != 3 {
			t.Errorf("unexpected generation config: %+v", cfg)
		}
		_ = json.NewEncoder(w).Encode(textResponse(`{"title":"Sunset","description":"Warm.","tags":"#sun"}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	got, err := client.GenerateDetails(context.Background(), testImage(t, 2, 2, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatalf("GenerateDetails error: %v", err)
	}
	if got != (domain.ProductDetails{Title: "Sunset", Description: "Warm.", Tags: "#sun"}) {
		t.Fatalf("unexpected details: %+v", got)
	}
}

func TestRemoteFailuresWrapErrRemote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("key") {
		case "quota":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
		default:
			_ = json.NewEncoder(w).Encode(textResponse("I cannot draw that"))
		}
	}))
	defer ts.Close()

	in := testImage(t, 2, 2, color.NRGBA{A: 255})
	_, err := NewClient(Options{APIKey: "quota", BaseURL: ts.URL}).Clone(context.Background(), in)
	if !errors.Is(err, domain.ErrRemote) || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v, want remote quota error", err)
	}
	_, err = NewClient(Options{APIKey: "text", BaseURL: ts.URL}).CreateMockup(context.Background(), in, "A mug.", "#FFFFFF")
	if !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("err = %v, want remote error for text-only answer", err)
	}
}

func TestMissingKeyIsValidationError(t *testing.T) {
	client := NewClient(Options{})
	in := testImage(t, 2, 2, color.NRGBA{A: 255})
	if _, err := client.Inpaint(context.Background(), in, in, "x"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
