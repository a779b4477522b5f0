package page

import (
	defError "errors"
	"net/http"

	"storefront-builder/internal/block"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/render"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service  Service
	renderer *render.Registry
	log      logrus.FieldLogger
}

func NewHandler(service Service, renderer *render.Registry, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, renderer: renderer, log: log}
}

type CreateRequest struct {
	Slug            string     `json:"slug" binding:"required,min=1,max=255"`
	Title           string     `json:"title" binding:"max=255"`
	IsHome          bool       `json:"is_home"`
	Blocks          block.List `json:"blocks"`
	MetaTitle       string     `json:"meta_title" binding:"max=255"`
	MetaDescription string     `json:"meta_description" binding:"max=500"`
}

type PublishRequest struct {
	Blocks          block.List `json:"blocks" binding:"required"`
	MetaTitle       string     `json:"meta_title" binding:"max=255"`
	MetaDescription string     `json:"meta_description" binding:"max=500"`
}

// RenderHome serves the storefront home page.
func (h *Handler) RenderHome(c *gin.Context) {
	resolved, err := h.service.ResolveHome(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderPage(c, resolved)
}

// RenderPage serves /p/:slug. Missing and template pages get the 404 view;
// any other failure goes through the error middleware.
func (h *Handler) RenderPage(c *gin.Context) {
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderPage(c, resolved)
}

func (h *Handler) renderPage(c *gin.Context, p *Resolved) {
	title := p.MetaTitle
	if title == "" {
		title = p.Title
	}
	view := render.PageView{
		Title:           title,
		MetaDescription: p.MetaDescription,
		Body:            h.renderer.RenderList(c.Request.Context(), p.Blocks),
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := render.WritePage(c.Writer, view); err != nil {
		h.log.WithError(err).WithField("slug", p.Slug).Error("write page")
	}
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if !defError.Is(err, errors.ErrPageNotFound) && !defError.Is(err, errors.ErrTemplateNotAccessible) {
		c.Error(err)
		return
	}

	c.Status(http.StatusNotFound)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if werr := render.WriteNotFound(c.Writer); werr != nil {
		h.log.WithError(werr).Error("write not found page")
	}
}

// ShowPage returns the resolved block list as JSON.
func (h *Handler) ShowPage(c *gin.Context) {
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func (h *Handler) List(c *gin.Context) {
	pages, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pages})
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	p := &Page{
		Slug:            form.Slug,
		Title:           form.Title,
		IsHome:          form.IsHome,
		MetaTitle:       form.MetaTitle,
		MetaDescription: form.MetaDescription,
	}
	if form.Blocks != nil {
		content, err := form.Blocks.JSON()
		if err != nil {
			c.Error(errors.BadRequest("Invalid blocks", err))
			return
		}
		p.Content = content
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Show(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// PublishContent overwrites the live content of a page.
func (h *Handler) PublishContent(c *gin.Context) {
	var form PublishRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	p, err := h.service.Publish(c.Request.Context(), c.Param("id"), form.Blocks, Meta{
		MetaTitle:       form.MetaTitle,
		MetaDescription: form.MetaDescription,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}
