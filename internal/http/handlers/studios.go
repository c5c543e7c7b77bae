package handlers

import (
	"net/http"

	"mockupstudio/internal/mask"
	"mockupstudio/internal/pixel"
	"mockupstudio/internal/studio"
)

// maskRequest carries strokes either as finished paths or as the pointer
// events recorded on the canvas.
type maskRequest struct {
	Paths      []mask.Path  `json:"paths"`
	Events     []mask.Event `json:"events"`
	BrushWidth float64      `json:"brush_width"`
}

func (m maskRequest) spec() (mask.Spec, error) {
	spec := mask.Spec{Paths: m.Paths, BrushWidth: m.BrushWidth}
	if len(m.Events) > 0 {
		log, err := mask.Replay(m.Events)
		if err != nil {
			return mask.Spec{}, err
		}
		spec.Paths = append(spec.Paths, log.Paths()...)
	}
	return spec, nil
}

type redesignRequest struct {
	// Image may be empty to edit the design handed off from Seedream.
	Image        string      `json:"image"`
	Mask         maskRequest `json:"mask"`
	Canvas       mask.Size   `json:"canvas"`
	Instructions string      `json:"instructions"`
}

type remixRequest struct {
	Base         string      `json:"base"`
	Reference    string      `json:"reference"`
	Mask         maskRequest `json:"mask"`
	Canvas       mask.Size   `json:"canvas"`
	Instructions string      `json:"instructions"`
}

type seedreamRequest struct {
	Image            string `json:"image"`
	RemoveBackground bool   `json:"remove_background"`
}

type imageRequest struct {
	Image string `json:"image"`
}

// images renders each non-nil image as a PNG data URL.
func images(named map[string]*pixel.Image) (map[string]any, error) {
	out := make(map[string]any, len(named))
	for name, img := range named {
		if img == nil {
			continue
		}
		url, err := img.DataURL()
		if err != nil {
			return nil, err
		}
		out[name] = url
	}
	return out, nil
}

func (a *App) respondImages(w http.ResponseWriter, r *http.Request, id string, named map[string]*pixel.Image) {
	body, err := images(named)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if id != "" {
		body["id"] = id
	}
	a.json(w, http.StatusOK, body)
}

func (a *App) PrepareRedesign(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := decodeImage(req.Image, "image")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	display, err := studio.PrepareRedesign(img)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, "", map[string]*pixel.Image{"display": display})
}

func (a *App) Redesign(w http.ResponseWriter, r *http.Request) {
	var req redesignRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	var img *pixel.Image
	if req.Image != "" {
		var err error
		if img, err = pixel.DecodeDataURL(req.Image); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	spec, err := req.Mask.spec()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Studio.Redesign(r.Context(), studio.RedesignInput{
		Image:        img,
		Mask:         spec,
		Canvas:       req.Canvas,
		Instructions: req.Instructions,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, res.ID, map[string]*pixel.Image{
		"mask":        res.Mask,
		"result":      res.Result,
		"print_ready": res.PrintReady,
	})
}

func (a *App) Remix(w http.ResponseWriter, r *http.Request) {
	var req remixRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	base, err := decodeImage(req.Base, "base")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ref, err := decodeImage(req.Reference, "reference")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	spec, err := req.Mask.spec()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Studio.Remix(r.Context(), studio.RemixInput{
		Base:         base,
		Reference:    ref,
		Mask:         spec,
		Canvas:       req.Canvas,
		Instructions: req.Instructions,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, res.ID, map[string]*pixel.Image{"mask": res.Mask, "result": res.Result})
}

func (a *App) ProcessRemix(w http.ResponseWriter, r *http.Request) {
	res, err := a.Studio.ProcessRemix(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, res.ID, map[string]*pixel.Image{"result": res.Result, "print_ready": res.PrintReady})
}

func (a *App) Seedream(w http.ResponseWriter, r *http.Request) {
	var req seedreamRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := decodeImage(req.Image, "image")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Studio.Seedream(r.Context(), studio.SeedreamInput{Image: img, RemoveBackground: req.RemoveBackground})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, res.ID, map[string]*pixel.Image{"result": res.Result, "cleaned": res.Cleaned})
}

func (a *App) SeedreamHandoff(w http.ResponseWriter, r *http.Request) {
	img, err := a.Studio.Handoff()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondImages(w, r, "", map[string]*pixel.Image{"image": img})
}
