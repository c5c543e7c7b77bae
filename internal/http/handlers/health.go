package handlers

import (
	"net/http"

	"mockupstudio/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Products(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"items":        domain.Products(),
		"max_selected": domain.MaxMockupProducts,
	})
}
