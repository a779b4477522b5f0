package block

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/wI2L/jsondiff"
)

// Type identifies the kind of a block
type Type string

const (
	TypeHero         Type = "hero"
	TypeText         Type = "text"
	TypeImage        Type = "image"
	TypeGallery      Type = "gallery"
	TypeFAQ          Type = "faq"
	TypeProductGrid  Type = "product_grid"
	TypeBanner       Type = "banner"
	TypeTestimonials Type = "testimonials"
	TypeVideo        Type = "video"
)

// Block is a single content unit of a page as it is persisted.
// Content stays untyped here; Decode turns it into the kind payload.
type Block struct {
	ID      string         `json:"id" validate:"required"`
	Type    Type           `json:"type" validate:"required"`
	Content map[string]any `json:"content,omitempty"`
}

// List is an ordered block list, index is display order.
type List []Block

var validate = validator.New()

// Parse decodes a persisted block list. Empty or null input is an empty list.
func Parse(data []byte) (List, error) {
	if len(data) == 0 || string(data) == "null" {
		return List{}, nil
	}

	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse block list: %w", err)
	}
	if list == nil {
		list = List{}
	}
	return list, nil
}

// JSON encodes the list, never as null.
func (l List) JSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Clone returns a deep copy so the caller can't mutate a stored snapshot.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, b := range l {
		out[i] = Block{ID: b.ID, Type: b.Type, Content: cloneMap(b.Content)}
	}
	return out
}

// Validate checks only the shape every block shares: a non-empty id and type,
// with ids unique within the list. Content is owned by each kind.
func Validate(l List) error {
	seen := make(map[string]struct{}, len(l))
	for i, b := range l {
		if err := validate.Struct(b); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("block %d: duplicate id %q", i, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// Diff returns the JSON patch that turns a into b.
func Diff(a, b List) (jsondiff.Patch, error) {
	src, err := a.JSON()
	if err != nil {
		return nil, err
	}
	dst, err := b.JSON()
	if err != nil {
		return nil, err
	}
	return jsondiff.CompareJSON(src, dst)
}

// Equal reports whether two lists have the same value.
func Equal(a, b List) bool {
	patch, err := Diff(a, b)
	if err != nil {
		return false
	}
	return len(patch) == 0
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
