package block

import "encoding/json"

// Content is the kind-typed payload of a block.
type Content interface {
	Kind() Type
}

type CTA struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type HeroContent struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	BackgroundImage string `json:"background_image"`
	Align           string `json:"align"`
	CTA             *CTA   `json:"cta"`
}

type TextContent struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type ImageContent struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Link    string `json:"link"`
}

type GalleryImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type GalleryContent struct {
	Title   string         `json:"title"`
	Columns int            `json:"columns"`
	Images  []GalleryImage `json:"images"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQContent struct {
	Title string    `json:"title"`
	Items []FAQItem `json:"items"`
}

type ProductGridContent struct {
	Title      string   `json:"title"`
	Collection string   `json:"collection"`
	ProductIDs []string `json:"product_ids"`
	Limit      int      `json:"limit"`
}

type BannerContent struct {
	Text       string `json:"text"`
	Link       string `json:"link"`
	Background string `json:"background"`
}

type Testimonial struct {
	Author string `json:"author"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

type TestimonialsContent struct {
	Title string        `json:"title"`
	Items []Testimonial `json:"items"`
}

type VideoContent struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Autoplay bool   `json:"autoplay"`
}

// UnknownContent carries the raw payload of a kind nobody registered.
type UnknownContent struct {
	Type Type
	Raw  map[string]any
}

func (HeroContent) Kind() Type         { return TypeHero }
func (TextContent) Kind() Type         { return TypeText }
func (ImageContent) Kind() Type        { return TypeImage }
func (GalleryContent) Kind() Type      { return TypeGallery }
func (FAQContent) Kind() Type          { return TypeFAQ }
func (ProductGridContent) Kind() Type  { return TypeProductGrid }
func (BannerContent) Kind() Type       { return TypeBanner }
func (TestimonialsContent) Kind() Type { return TypeTestimonials }
func (VideoContent) Kind() Type        { return TypeVideo }
func (u UnknownContent) Kind() Type    { return u.Type }

// PlaceholderImages is what a gallery shows when it has no images.
var PlaceholderImages = []GalleryImage{
	{URL: "/static/placeholder/gallery-1.jpg", Alt: "Placeholder image 1"},
	{URL: "/static/placeholder/gallery-2.jpg", Alt: "Placeholder image 2"},
	{URL: "/static/placeholder/gallery-3.jpg", Alt: "Placeholder image 3"},
	{URL: "/static/placeholder/gallery-4.jpg", Alt: "Placeholder image 4"},
}

// Decode converts the untyped payload into the payload of the block's kind,
// applying that kind's defaults. Fields of the wrong shape are dropped
// rather than failing the block.
func Decode(b Block) Content {
	switch b.Type {
	case TypeHero:
		c := HeroContent{}
		decodeInto(b.Content, &c)
		if c.Align == "" {
			c.Align = "center"
		}
		return c
	case TypeText:
		c := TextContent{}
		decodeInto(b.Content, &c)
		return c
	case TypeImage:
		c := ImageContent{}
		decodeInto(b.Content, &c)
		return c
	case TypeGallery:
		c := GalleryContent{}
		decodeInto(b.Content, &c)
		if len(c.Images) == 0 {
			c.Images = append([]GalleryImage(nil), PlaceholderImages...)
		}
		if c.Columns <= 0 {
			c.Columns = 3
		}
		return c
	case TypeFAQ:
		c := FAQContent{}
		decodeInto(b.Content, &c)
		if c.Title == "" {
			c.Title = "Frequently asked questions"
		}
		return c
	case TypeProductGrid:
		c := ProductGridContent{}
		decodeInto(b.Content, &c)
		if c.Limit <= 0 {
			c.Limit = 8
		}
		return c
	case TypeBanner:
		c := BannerContent{}
		decodeInto(b.Content, &c)
		if c.Background == "" {
			c.Background = "#000000"
		}
		return c
	case TypeTestimonials:
		c := TestimonialsContent{}
		decodeInto(b.Content, &c)
		for i := range c.Items {
			if c.Items[i].Rating < 0 || c.Items[i].Rating > 5 {
				c.Items[i].Rating = 5
			}
		}
		return c
	case TypeVideo:
		c := VideoContent{}
		decodeInto(b.Content, &c)
		return c
	default:
		return UnknownContent{Type: b.Type, Raw: cloneMap(b.Content)}
	}
}

// decodeInto goes through JSON so number and nesting rules match the wire.
// encoding/json skips mismatched fields and keeps decoding the rest, so the
// type error is ignored on purpose.
func decodeInto(raw map[string]any, dst any) {
	if len(raw) == 0 {
		return
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, dst)
}
