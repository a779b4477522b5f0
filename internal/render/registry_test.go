package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"storefront-builder/internal/block"
	"storefront-builder/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type failingRenderer struct{}

func (failingRenderer) Type() block.Type { return "broken" }
func (failingRenderer) Render(io.Writer, block.Content) error {
	return errors.New("boom")
}

func TestRenderList_SkipsUnknownTypes(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	html := string(r.RenderList(context.Background(), block.List{
		{ID: "a", Type: block.TypeHero, Content: map[string]any{"title": "Summer sale"}},
		{ID: "b", Type: "countdown", Content: map[string]any{"ends": "soon"}},
		{ID: "c", Type: block.TypeText, Content: map[string]any{"body": "Free shipping"}},
	}))

	assert.Contains(t, html, "Summer sale")
	assert.Contains(t, html, "Free shipping")
	assert.NotContains(t, html, "countdown")
	assert.NotContains(t, html, "soon")
	assert.Less(t, strings.Index(html, "Summer sale"), strings.Index(html, "Free shipping"))
}

func TestRenderList_UnknownTypeUsesFixedMetricLabel(t *testing.T) {
	r := NewDefaultRegistry(testLogger())
	r.RenderList(context.Background(), block.List{
		{ID: "a", Type: "merchant-made-up-type"},
	})

	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	var sawUnknown bool
	for _, mf := range families {
		if mf.GetName() != "storefront_render_blocks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				assert.NotEqual(t, "merchant-made-up-type", lp.GetValue())
				if lp.GetName() == "type" && lp.GetValue() == metrics.UnknownBlockType {
					sawUnknown = true
				}
			}
		}
	}
	assert.True(t, sawUnknown)
}

func TestRender_UnknownTypeIsNotAnError(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	html, ok, err := r.Render(context.Background(), block.Block{ID: "x", Type: "marquee"})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, html)
}

func TestRenderList_FailingRendererSkipsOnlyThatBlock(t *testing.T) {
	r := NewDefaultRegistry(testLogger())
	r.Register(failingRenderer{})

	html := string(r.RenderList(context.Background(), block.List{
		{ID: "a", Type: "broken"},
		{ID: "b", Type: block.TypeBanner, Content: map[string]any{"text": "New arrivals"}},
	}))

	assert.Contains(t, html, "New arrivals")
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := NewDefaultRegistry(testLogger())
	assert.Panics(t, func() {
		r.Register(newTemplateRenderer(block.TypeHero, "{{.Title}}"))
	})
}

func TestDefaultRegistry_CoversBuiltInKinds(t *testing.T) {
	r := NewDefaultRegistry(testLogger())
	for _, kind := range []block.Type{
		block.TypeHero, block.TypeText, block.TypeImage, block.TypeGallery, block.TypeFAQ,
		block.TypeProductGrid, block.TypeBanner, block.TypeTestimonials, block.TypeVideo,
	} {
		_, ok := r.Lookup(kind)
		assert.True(t, ok, kind)
	}
	assert.Len(t, r.Types(), 9)
}

func TestRender_GalleryPlaceholders(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	html, ok, err := r.Render(context.Background(), block.Block{ID: "g", Type: block.TypeGallery})
	require.NoError(t, err)
	require.True(t, ok)
	for _, img := range block.PlaceholderImages {
		assert.Contains(t, string(html), img.URL)
	}
}

func TestRender_EscapesContent(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	html, _, err := r.Render(context.Background(), block.Block{ID: "t", Type: block.TypeText, Content: map[string]any{
		"body": "<script>alert(1)</script>",
	}})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestRender_FAQItems(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	html, _, err := r.Render(context.Background(), block.Block{ID: "f", Type: block.TypeFAQ, Content: map[string]any{
		"items": []any{
			map[string]any{"question": "Do you ship abroad?", "answer": "Yes"},
		},
	}})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Frequently asked questions")
	assert.Contains(t, string(html), "Do you ship abroad?")
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, PageView{Title: "Home", MetaDescription: "Best shop", Body: "<p>hi</p>"}))

	out := buf.String()
	assert.Contains(t, out, "<title>Home</title>")
	assert.Contains(t, out, `content="Best shop"`)
	assert.Contains(t, out, "<p>hi</p>")
}

func TestWriteNotFound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotFound(&buf))
	assert.Contains(t, buf.String(), "404")
}
