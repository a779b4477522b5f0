package version

import (
	"net/http"

	"storefront-builder/internal/block"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/page"
	"storefront-builder/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/wI2L/jsondiff"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateRequest struct {
	Blocks          block.List `json:"blocks" binding:"required"`
	Label           string     `json:"label" binding:"max=255"`
	MetaTitle       string     `json:"meta_title" binding:"max=255"`
	MetaDescription string     `json:"meta_description" binding:"max=500"`
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListVersions(c.Request.Context(), c.Param("id"), utils.GetLimitParam(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	createdBy, _ := userID.(string)

	v, err := h.service.CreateVersion(c.Request.Context(), c.Param("id"), NewVersion{
		Blocks:    form.Blocks,
		Meta:      page.Meta{MetaTitle: form.MetaTitle, MetaDescription: form.MetaDescription},
		Label:     form.Label,
		CreatedBy: createdBy,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

func (h *Handler) Restore(c *gin.Context) {
	p, err := h.service.RestoreVersion(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Compare shows what changed on the live page since the version was saved.
func (h *Handler) Compare(c *gin.Context) {
	patch, err := h.service.CompareVersion(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		c.Error(err)
		return
	}
	if patch == nil {
		patch = jsondiff.Patch{}
	}

	c.JSON(http.StatusOK, gin.H{"patch": patch})
}
