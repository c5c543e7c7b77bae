// Package fal clones designs through the fal.ai Seedream v4 edit endpoint.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mockupstudio/internal/canvas"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/pixel"
)

const (
	DefaultBaseURL = "https://fal.run"
	editPath       = "/fal-ai/bytedance/seedream/v4/edit"
)

// Options configures the fal.ai client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs Seedream edit calls and downloads the produced image.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

var _ imagegen.Cloner = (*Client)(nil)

type imageSize struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

type editRequest struct {
	Prompt              string    `json:"prompt"`
	ImageSize           imageSize `json:"image_size"`
	NumImages           int       `json:"num_images"`
	EnableSafetyChecker bool      `json:"enable_safety_checker"`
	ImageURLs           []string  `json:"image_urls"`
}

type editResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
	} `json:"images"`
	Seed int64 `json:"seed"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
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
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Clone asks Seedream for a print-size recreation of the design in img.
func (c *Client) Clone(ctx context.Context, img *pixel.Image) (*pixel.Image, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: fal API key is not set", domain.ErrValidation)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: missing input image", domain.ErrValidation)
	}
	dataURL, err := img.DataURL()
	if err != nil {
		return nil, err
	}
	payload := editRequest{
		Prompt:              strings.TrimPrefix(imagegen.ClonePrompt, "You are an expert image editing assistant. "),
		ImageSize:           imageSize{Height: canvas.PrintTarget.H, Width: canvas.PrintTarget.W},
		NumImages:           1,
		EnableSafetyChecker: true,
		ImageURLs:           []string{dataURL},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+editPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: fal: http request: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: fal: read response: %v", domain.ErrRemote, err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != nil {
			return nil, fmt.Errorf("%w: seedream status %d: %v", domain.ErrRemote, resp.StatusCode, detail.Detail)
		}
		return nil, fmt.Errorf("%w: seedream status %d: %s", domain.ErrRemote, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded editResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: fal: decode response: %v", domain.ErrRemote, err)
	}
	if len(decoded.Images) == 0 || strings.TrimSpace(decoded.Images[0].URL) == "" {
		return nil, fmt.Errorf("%w: seedream did not return an image url", domain.ErrRemote)
	}
	imageURL := strings.TrimSpace(decoded.Images[0].URL)
	out, err := c.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Int64("seed", decoded.Seed).
		Int("width", out.Width()).
		Int("height", out.Height()).
		Msg("fal: seedream clone finished")
	return out, nil
}

func (c *Client) download(ctx context.Context, imageURL string) (*pixel.Image, error) {
	if strings.HasPrefix(imageURL, "data:") {
		img, err := pixel.DecodeDataURL(imageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: fal: %v", domain.ErrRemote, err)
		}
		return img, nil
	}
	parsed, err := url.Parse(imageURL)
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("%w: fal: invalid image url: %s", domain.ErrRemote, imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fal: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fal: download image: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: fal: download status %d", domain.ErrRemote, resp.StatusCode)
	}
	img, err := pixel.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: fal: %v", domain.ErrRemote, err)
	}
	return img, nil
}
