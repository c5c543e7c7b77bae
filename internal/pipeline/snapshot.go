package pipeline

import (
	"time"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/pixel"
)

// StageView is a read-only copy of a stage.
type StageView struct {
	Status    domain.Status `json:"status"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
}

// ItemView is a read-only copy of a mockup item.
type ItemView struct {
	ID        string        `json:"id"`
	ProductID string        `json:"product_id"`
	Name      string        `json:"name"`
	Status    domain.Status `json:"status"`
	Error     string        `json:"error,omitempty"`
	Result    *pixel.Image  `json:"-"`
}

// Snapshot is a consistent copy of the current run. Images are shared, not
// copied; they are immutable.
type Snapshot struct {
	RunID        string        `json:"run_id"`
	Mode         imagegen.Mode `json:"mode"`
	Title        string        `json:"title"`
	Instructions string        `json:"instructions,omitempty"`
	Label        string        `json:"label,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`

	Primary   StageView `json:"primary"`
	Secondary StageView `json:"secondary"`
	Color     StageView `json:"color_analysis"`
	Mockups   StageView `json:"mockups"`
	Details   StageView `json:"details"`

	ColorHex      string                 `json:"color_hex,omitempty"`
	ColorFallback bool                   `json:"color_fallback,omitempty"`
	Outcome       Outcome                `json:"outcome,omitempty"`
	Items         []ItemView             `json:"items"`
	ProductInfo   *domain.ProductDetails `json:"product_details,omitempty"`

	Source       *pixel.Image `json:"-"`
	PrimaryImage *pixel.Image `json:"-"`
	PrintReady   *pixel.Image `json:"-"`
}

// Busy reports whether any stage is still pending.
func (s Snapshot) Busy() bool {
	for _, st := range []StageView{s.Primary, s.Secondary, s.Color, s.Mockups, s.Details} {
		if st.Status == domain.StatusPending {
			return true
		}
	}
	return false
}

// Item returns the item with the given id.
func (s Snapshot) Item(id string) (ItemView, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemView{}, false
}

// Snapshot returns the current run, or false when the session is idle.
func (o *Orchestrator) Snapshot() (Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r := o.run
	if r == nil {
		return Snapshot{}, false
	}
	s := Snapshot{
		RunID:         r.id,
		Mode:          r.mode,
		Title:         r.mode.Title(),
		Instructions:  r.instructions,
		Label:         r.label,
		CreatedAt:     r.createdAt,
		Primary:       view(r.primary),
		Secondary:     view(r.secondary),
		Color:         view(r.color),
		Mockups:       view(r.mockups),
		Details:       view(r.details),
		ColorHex:      r.colorHex,
		ColorFallback: r.fallback,
		Outcome:       r.outcome,
		Items:         make([]ItemView, len(r.items)),
		Source:        r.source,
		PrimaryImage:  r.primaryImage,
		PrintReady:    r.printReady,
	}
	if r.product != nil {
		details := *r.product
		s.ProductInfo = &details
	}
	for i, it := range r.items {
		s.Items[i] = ItemView{
			ID:        it.id,
			ProductID: it.product.ID,
			Name:      it.product.Name,
			Status:    it.status,
			Error:     errText(it.err),
			Result:    it.result,
		}
	}
	return s, true
}

func view(s stageState) StageView {
	v := StageView{Status: s.status}
	if s.err != nil {
		v.Error = s.err.Error()
		v.ErrorKind = domain.Kind(s.err)
	}
	return v
}
