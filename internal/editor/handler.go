package editor

import (
	"context"
	defError "errors"
	"io"
	"net/http"

	"storefront-builder/internal/block"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/page"
	"storefront-builder/internal/version"

	"github.com/gin-gonic/gin"
)

// Sessions is the session API the handler serves.
type Sessions interface {
	Open(ctx context.Context, slug string) (*View, error)
	Get(id string) (*View, error)
	SetBlocks(id string, blocks block.List) (*View, error)
	Undo(id string) (*View, error)
	Redo(id string) (*View, error)
	Reload(ctx context.Context, id string) (*View, error)
	Publish(ctx context.Context, id string, meta *page.Meta) (*View, error)
	SaveVersion(ctx context.Context, id, label, createdBy string) (*version.PageVersion, error)
	RestoreVersion(ctx context.Context, id, versionID string) (*page.Page, *View, error)
	Close(id string) error
}

type Handler struct {
	sessions Sessions
}

func NewHandler(sessions Sessions) *Handler {
	return &Handler{sessions: sessions}
}

type OpenRequest struct {
	Slug string `json:"slug" binding:"required,min=1,max=255"`
}

type BlocksRequest struct {
	Blocks block.List `json:"blocks" binding:"required"`
}

type PublishRequest struct {
	MetaTitle       *string `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription *string `json:"meta_description" binding:"omitempty,max=500"`
}

type SaveVersionRequest struct {
	Label string `json:"label" binding:"max=255"`
}

func (h *Handler) Open(c *gin.Context) {
	var form OpenRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	view, err := h.sessions.Open(c.Request.Context(), form.Slug)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *Handler) Show(c *gin.Context) {
	h.respond(c)(h.sessions.Get(c.Param("id")))
}

func (h *Handler) SetBlocks(c *gin.Context) {
	var form BlocksRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	h.respond(c)(h.sessions.SetBlocks(c.Param("id"), form.Blocks))
}

func (h *Handler) Undo(c *gin.Context) {
	h.respond(c)(h.sessions.Undo(c.Param("id")))
}

func (h *Handler) Redo(c *gin.Context) {
	h.respond(c)(h.sessions.Redo(c.Param("id")))
}

func (h *Handler) Reload(c *gin.Context) {
	h.respond(c)(h.sessions.Reload(c.Request.Context(), c.Param("id")))
}

// Publish commits the session's blocks. Meta fields left out of the body
// keep their current values.
func (h *Handler) Publish(c *gin.Context) {
	var form PublishRequest
	if err := bindOptionalJSON(c, &form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	var meta *page.Meta
	if form.MetaTitle != nil || form.MetaDescription != nil {
		current, err := h.sessions.Get(c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		meta = &page.Meta{MetaTitle: current.MetaTitle, MetaDescription: current.MetaDescription}
		if form.MetaTitle != nil {
			meta.MetaTitle = *form.MetaTitle
		}
		if form.MetaDescription != nil {
			meta.MetaDescription = *form.MetaDescription
		}
	}

	h.respond(c)(h.sessions.Publish(c.Request.Context(), c.Param("id"), meta))
}

func (h *Handler) SaveVersion(c *gin.Context) {
	var form SaveVersionRequest
	if err := bindOptionalJSON(c, &form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	createdBy, _ := userID.(string)

	v, err := h.sessions.SaveVersion(c.Request.Context(), c.Param("id"), form.Label, createdBy)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

func (h *Handler) RestoreVersion(c *gin.Context) {
	p, view, err := h.sessions.RestoreVersion(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": p, "session": view})
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindOptionalJSON binds the body into form when there is one. A missing or
// empty body, chunked or not, leaves form at its zero value.
func bindOptionalJSON(c *gin.Context, form any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(form); err != nil && !defError.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) respond(c *gin.Context) func(*View, error) {
	return func(view *View, err error) {
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
