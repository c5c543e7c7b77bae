package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mockupstudio/internal/adapter/repo"
	"mockupstudio/internal/domain"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/studio"
)

// DefaultMaxBodyBytes bounds JSON bodies, which carry images as data URLs.
const DefaultMaxBodyBytes = 64 << 20

// RunLister lists run history. It is nil when no database is configured.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]repo.RunSummary, error)
}

type App struct {
	Studio       *studio.Service
	Runs         RunLister
	Logger       *infra.Logger
	MaxBodyBytes int64
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	var body errorBody
	body.Error.Kind = kind
	body.Error.Message = message
	a.json(w, code, body)
}

// fail maps err onto the error taxonomy.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError && a.Logger != nil {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("http: request failed")
	}
	a.error(w, code, domain.Kind(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body. Malformed bodies are validation errors.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	limit := a.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrValidation, tooLarge.Limit)
		}
		return fmt.Errorf("%w: invalid payload: %v", domain.ErrValidation, err)
	}
	return nil
}
