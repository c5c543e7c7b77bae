package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/pixel"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultImageModel = "gemini-2.5-flash-image-preview"
	DefaultTextModel  = "gemini-2.5-flash"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client implements imagegen.Client on top of the Gemini generateContent
// REST endpoint. Images travel as inline base64 PNG parts.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

var _ imagegen.Client = (*Client)(nil)

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiSchema struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Properties  map[string]geminiSchema `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseSchema     *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

var detailsSchema = &geminiSchema{
	Type: "OBJECT",
	Properties: map[string]geminiSchema{
		"title":       {Type: "STRING", Description: imagegen.TitleHint},
		"description": {Type: "STRING", Description: imagegen.DescriptionHint},
		"tags":        {Type: "STRING", Description: imagegen.TagsHint},
	},
	Required: []string{"title", "description", "tags"},
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: firstNonEmpty(opts.ImageModel, DefaultImageModel),
		textModel:  firstNonEmpty(opts.TextModel, DefaultTextModel),
		httpClient: client,
		logger:     logger,
	}
}

// Clone recreates the design on a plain backdrop.
func (c *Client) Clone(ctx context.Context, img *pixel.Image) (*pixel.Image, error) {
	return c.generateImage(ctx, "clone", img, imagegen.ClonePrompt)
}

// Transform recreates the design and reworks it per instructions.
func (c *Client) Transform(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error) {
	return c.generateImage(ctx, "transform", img, imagegen.TransformPrompt(instructions))
}

// Redesign restores a low quality design.
func (c *Client) Redesign(ctx context.Context, img *pixel.Image, instructions string) (*pixel.Image, error) {
	return c.generateImage(ctx, "redesign", img, imagegen.RedesignPrompt(instructions))
}

// CreateMockup renders the design on a product photo.
func (c *Client) CreateMockup(ctx context.Context, design *pixel.Image, productPrompt, hex string) (*pixel.Image, error) {
	return c.generateImage(ctx, "mockup", design, imagegen.MockupPrompt(productPrompt, hex))
}

// AnalyzeColor asks the image model for the product color and returns the
// text answer untouched.
func (c *Client) AnalyzeColor(ctx context.Context, img *pixel.Image) (string, error) {
	if err := c.ready(img); err != nil {
		return "", err
	}
	parts, err := encodeImages(img)
	if err != nil {
		return "", err
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{userContent(append([]geminiPart{{Text: imagegen.ColorPrompt}}, parts...)...)},
	}
	resp, err := c.call(ctx, c.imageModel, payload)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// GenerateDetails asks the text model for structured marketing copy.
func (c *Client) GenerateDetails(ctx context.Context, design *pixel.Image) (domain.ProductDetails, error) {
	if err := c.ready(design); err != nil {
		return domain.ProductDetails{}, err
	}
	parts, err := encodeImages(design)
	if err != nil {
		return domain.ProductDetails{}, err
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{userContent(append([]geminiPart{{Text: imagegen.DetailsPrompt}}, parts...)...)},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   detailsSchema,
		},
	}
	resp, err := c.call(ctx, c.textModel, payload)
	if err != nil {
		return domain.ProductDetails{}, err
	}
	var details domain.ProductDetails
	if err := json.Unmarshal([]byte(responseText(resp)), &details); err != nil {
		return domain.ProductDetails{}, fmt.Errorf("%w: gemini details: %v", domain.ErrRemote, err)
	}
	return details, nil
}

// Inpaint edits the white area of mask.
func (c *Client) Inpaint(ctx context.Context, img, mask *pixel.Image, instructions string) (*pixel.Image, error) {
	if err := c.ready(img, mask); err != nil {
		return nil, err
	}
	parts, err := encodeImages(img, mask)
	if err != nil {
		return nil, err
	}
	payload := imageRequest(append([]geminiPart{{Text: imagegen.InpaintPrompt(instructions)}}, parts...)...)
	return c.expectImage(ctx, "inpaint", payload)
}

// Remix blends part of ref into the white area of mask on base.
func (c *Client) Remix(ctx context.Context, base, ref, mask *pixel.Image, instructions string) (*pixel.Image, error) {
	if err := c.ready(base, ref, mask); err != nil {
		return nil, err
	}
	parts, err := encodeImages(base, ref, mask)
	if err != nil {
		return nil, err
	}
	payload := imageRequest(append([]geminiPart{{Text: imagegen.RemixPrompt(instructions)}}, parts...)...)
	return c.expectImage(ctx, "remix", payload)
}

func (c *Client) generateImage(ctx context.Context, op string, img *pixel.Image, prompt string) (*pixel.Image, error) {
	if err := c.ready(img); err != nil {
		return nil, err
	}
	parts, err := encodeImages(img)
	if err != nil {
		return nil, err
	}
	return c.expectImage(ctx, op, imageRequest(append(parts, geminiPart{Text: prompt})...))
}

func (c *Client) expectImage(ctx context.Context, op string, payload geminiGenerateContentRequest) (*pixel.Image, error) {
	resp, err := c.call(ctx, c.imageModel, payload)
	if err != nil {
		return nil, err
	}
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			data, err := c.decodeInlineAsset(ctx, part)
			if err != nil {
				return nil, fmt.Errorf("%w: gemini %s: %v", domain.ErrRemote, op, err)
			}
			if len(data) == 0 {
				continue
			}
			img, err := pixel.DecodeBytes(data)
			if err != nil {
				return nil, fmt.Errorf("%w: gemini %s returned an unreadable image: %v", domain.ErrRemote, op, err)
			}
			c.logger.Debug().
				Str("model", c.imageModel).
				Str("op", op).
				Int("width", img.Width()).
				Int("height", img.Height()).
				Msg("genai: image generated")
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: gemini %s did not return an image", domain.ErrRemote, op)
}

func (c *Client) ready(images ...*pixel.Image) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: gemini API key is not set", domain.ErrValidation)
	}
	for _, img := range images {
		if img == nil {
			return fmt.Errorf("%w: missing input image", domain.ErrValidation)
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, model string, payload geminiGenerateContentRequest) (*geminiGenerateContentResponse, error) {
	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	if err := c.invokeGemini(ctx, path, payload, &response); err != nil {
		c.logger.Warn().Err(err).Str("model", model).Msg("genai: request failed")
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRemote, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	return &response, nil
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeInlineAsset(ctx context.Context, part geminiPart) ([]byte, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("decode inline data: %w", err)
		}
		return data, nil
	}
	if part.FileData != nil && part.FileData.FileURI != "" {
		return c.downloadFile(ctx, part.FileData.FileURI)
	}
	return nil, nil
}

func (c *Client) downloadFile(ctx context.Context, uri string) ([]byte, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download file status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return blob, nil
}

func imageRequest(parts ...geminiPart) geminiGenerateContentRequest {
	return geminiGenerateContentRequest{
		Contents: []geminiContent{userContent(parts...)},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
}

func userContent(parts ...geminiPart) geminiContent {
	return geminiContent{Role: "user", Parts: parts}
}

func encodeImages(images ...*pixel.Image) ([]geminiPart, error) {
	parts := make([]geminiPart, 0, len(images))
	for _, img := range images {
		data, err := img.PNG()
		if err != nil {
			return nil, err
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}
	return parts, nil
}

func responseText(resp *geminiGenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
