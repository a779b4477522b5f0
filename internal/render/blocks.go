package render

import (
	"fmt"
	"html/template"
	"io"

	"storefront-builder/internal/block"

	"github.com/sirupsen/logrus"
)

// templateRenderer renders a kind with a single html/template.
type templateRenderer struct {
	kind block.Type
	tmpl *template.Template
}

func (t *templateRenderer) Type() block.Type { return t.kind }

func (t *templateRenderer) Render(w io.Writer, c block.Content) error {
	if c.Kind() != t.kind {
		return fmt.Errorf("content of kind %q given to %q renderer", c.Kind(), t.kind)
	}
	return t.tmpl.Execute(w, c)
}

func newTemplateRenderer(kind block.Type, src string) *templateRenderer {
	return &templateRenderer{
		kind: kind,
		tmpl: template.Must(template.New(string(kind)).Funcs(funcs).Parse(src)),
	}
}

var funcs = template.FuncMap{
	"stars": func(n int) []struct{} { return make([]struct{}, n) },
}

const (
	heroTemplate = `<section class="block block-hero align-{{.Align}}"{{with .BackgroundImage}} style="background-image:url('{{.}}')"{{end}}>
<h1>{{.Title}}</h1>{{with .Subtitle}}<p class="subtitle">{{.}}</p>{{end}}{{with .CTA}}<a class="cta" href="{{.URL}}">{{.Label}}</a>{{end}}
</section>`

	textTemplate = `<section class="block block-text">{{with .Heading}}<h2>{{.}}</h2>{{end}}<div class="body">{{.Body}}</div></section>`

	imageTemplate = `<figure class="block block-image">{{if .Link}}<a href="{{.Link}}">{{end}}<img src="{{.URL}}" alt="{{.Alt}}">{{if .Link}}</a>{{end}}{{with .Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>`

	galleryTemplate = `<section class="block block-gallery cols-{{.Columns}}">{{with .Title}}<h2>{{.}}</h2>{{end}}
{{range .Images}}<img src="{{.URL}}" alt="{{.Alt}}">{{end}}
</section>`

	faqTemplate = `<section class="block block-faq"><h2>{{.Title}}</h2>
{{range .Items}}<details><summary>{{.Question}}</summary><p>{{.Answer}}</p></details>{{end}}
</section>`

	productGridTemplate = `<section class="block block-product-grid" data-collection="{{.Collection}}" data-limit="{{.Limit}}">{{with .Title}}<h2>{{.}}</h2>{{end}}
{{range .ProductIDs}}<div class="product-card" data-product-id="{{.}}"></div>{{end}}
</section>`

	bannerTemplate = `<div class="block block-banner" style="background:{{.Background}}">{{if .Link}}<a href="{{.Link}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</div>`

	testimonialsTemplate = `<section class="block block-testimonials">{{with .Title}}<h2>{{.}}</h2>{{end}}
{{range .Items}}<blockquote><p>{{.Quote}}</p><footer>{{.Author}}{{if .Rating}} <span class="rating">{{range stars .Rating}}★{{end}}</span>{{end}}</footer></blockquote>{{end}}
</section>`

	videoTemplate = `<section class="block block-video">{{with .Title}}<h2>{{.}}</h2>{{end}}{{if .URL}}<video src="{{.URL}}" controls{{if .Autoplay}} autoplay muted{{end}}></video>{{end}}</section>`
)

// NewDefaultRegistry registers a renderer for every built-in block kind.
func NewDefaultRegistry(log logrus.FieldLogger) *Registry {
	r := NewRegistry(log)
	r.Register(newTemplateRenderer(block.TypeHero, heroTemplate))
	r.Register(newTemplateRenderer(block.TypeText, textTemplate))
	r.Register(newTemplateRenderer(block.TypeImage, imageTemplate))
	r.Register(newTemplateRenderer(block.TypeGallery, galleryTemplate))
	r.Register(newTemplateRenderer(block.TypeFAQ, faqTemplate))
	r.Register(newTemplateRenderer(block.TypeProductGrid, productGridTemplate))
	r.Register(newTemplateRenderer(block.TypeBanner, bannerTemplate))
	r.Register(newTemplateRenderer(block.TypeTestimonials, testimonialsTemplate))
	r.Register(newTemplateRenderer(block.TypeVideo, videoTemplate))
	return r
}
