package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"sync"

	"storefront-builder/internal/block"
	"storefront-builder/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Renderer draws one kind of block.
type Renderer interface {
	// Type returns the block type this renderer handles.
	Type() block.Type
	// Render writes the block's markup. c is the decoded payload of Type().
	Render(w io.Writer, c block.Content) error
}

// Registry maps block types to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[block.Type]Renderer
	log       logrus.FieldLogger
}

func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{renderers: make(map[block.Type]Renderer), log: log}
}

// Register adds a renderer. Panics on duplicate registration.
func (r *Registry) Register(rd Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := rd.Type()
	if _, exists := r.renderers[t]; exists {
		panic(fmt.Sprintf("render registry: duplicate registration for block type %q", t))
	}
	r.renderers[t] = rd
}

func (r *Registry) Lookup(t block.Type) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.renderers[t]
	return rd, ok
}

// Types lists the registered block types.
func (r *Registry) Types() []block.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]block.Type, 0, len(r.renderers))
	for t := range r.renderers {
		out = append(out, t)
	}
	return out
}

// Render draws a single block. ok is false when no renderer is registered
// for the block's type; that is not an error.
func (r *Registry) Render(_ context.Context, b block.Block) (template.HTML, bool, error) {
	rd, ok := r.Lookup(b.Type)
	if !ok {
		return "", false, nil
	}

	var buf bytes.Buffer
	if err := rd.Render(&buf, block.Decode(b)); err != nil {
		return "", true, fmt.Errorf("render block %s (%s): %w", b.ID, b.Type, err)
	}
	return template.HTML(buf.String()), true, nil
}

// RenderList draws blocks in order. Unknown types and blocks whose renderer
// fails produce no output; the remaining blocks are still drawn.
func (r *Registry) RenderList(ctx context.Context, blocks block.List) template.HTML {
	var buf bytes.Buffer
	for _, b := range blocks {
		html, ok, err := r.Render(ctx, b)
		switch {
		case !ok:
			r.log.WithField("block_id", b.ID).WithField("type", b.Type).Debug("no renderer for block type, skipping")
			metrics.RecordSkippedBlock()
		case err != nil:
			r.log.WithError(err).WithField("block_id", b.ID).Warn("block render failed, skipping")
			metrics.RecordBlock(string(b.Type), "failed")
		default:
			buf.WriteString(string(html))
			metrics.RecordBlock(string(b.Type), "rendered")
		}
	}
	return template.HTML(buf.String())
}
