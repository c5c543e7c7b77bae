package handlers

import (
	"net/http"

	"mockupstudio/internal/infra/credentials"
)

type settingsResponse struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	FalAPIKey    string `json:"fal_api_key"`
	HasGemini    bool   `json:"has_gemini_key"`
	HasFal       bool   `json:"has_fal_key"`
}

func settingsView(s credentials.Settings) settingsResponse {
	m := s.Masked()
	return settingsResponse{
		GeminiAPIKey: m.GeminiAPIKey,
		FalAPIKey:    m.FalAPIKey,
		HasGemini:    s.GeminiAPIKey != "",
		HasFal:       s.FalAPIKey != "",
	}
}

func (a *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.Studio.Settings(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, settingsView(s))
}

func (a *App) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req credentials.Settings
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Studio.SaveSettings(r.Context(), req); err != nil {
		a.fail(w, r, err)
		return
	}
	s, err := a.Studio.Settings(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, settingsView(s))
}
