package domain

import (
	"fmt"
	"sort"
)

// MaxMockupProducts caps how many products one run may render mockups for.
const MaxMockupProducts = 6

// Product is a mockup target with the prompt fragment describing it.
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// ProductDetails is the marketing copy generated for a finished design.
type ProductDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

var catalog = map[string]Product{
	"tshirt": {
		ID:     "tshirt",
		Name:   "T-Shirt",
		Prompt: "The design is printed on the chest of a crew-neck cotton t-shirt laid flat on a clean studio surface",
	},
	"hoodie": {
		ID:     "hoodie",
		Name:   "Hoodie",
		Prompt: "The design is printed on the front of a pullover hoodie worn by a model in soft natural light",
	},
	"mug": {
		ID:     "mug",
		Name:   "Mug",
		Prompt: "The design is printed on the side of an 11oz ceramic coffee mug standing on a wooden table",
	},
	"tote": {
		ID:     "tote",
		Name:   "Tote Bag",
		Prompt: "The design is printed on a canvas tote bag hanging against a neutral wall",
	},
	"poster": {
		ID:     "poster",
		Name:   "Poster",
		Prompt: "The design is printed as a framed poster hanging in a bright, modern living room",
	},
	"phonecase": {
		ID:     "phonecase",
		Name:   "Phone Case",
		Prompt: "The design is printed on the back of a slim smartphone case resting on a desk",
	},
	"sticker": {
		ID:     "sticker",
		Name:   "Sticker",
		Prompt: "The design is a die-cut vinyl sticker applied to a laptop lid",
	},
	"pillow": {
		ID:     "pillow",
		Name:   "Throw Pillow",
		Prompt: "The design is printed on a square throw pillow placed on a sofa",
	},
}

// Products returns the catalogue ordered by id.
func Products() []Product {
	out := make([]Product, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupProduct returns the catalogue entry for id.
func LookupProduct(id string) (Product, bool) {
	p, ok := catalog[id]
	return p, ok
}

// ResolveProducts validates a product selection, preserving order and
// rejecting duplicates, unknown ids and selections above MaxMockupProducts.
func ResolveProducts(ids []string) ([]Product, error) {
	if len(ids) > MaxMockupProducts {
		return nil, fmt.Errorf("%w: you can select a maximum of %d mockups", ErrValidation, MaxMockupProducts)
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %q", ErrValidation, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: product %q selected twice", ErrValidation, id)
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
