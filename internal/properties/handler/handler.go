package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homesafe_backend/internal/properties/service"
	"homesafe_backend/internal/properties/transport"
	"homesafe_backend/platform/httpkit"
	"homesafe_backend/platform/validator"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid property ID"
)

// Handler handles HTTP requests for properties and their safety scores.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetSafety returns the property's safety score, computing it on first read.
// POST /api/v1/properties/:id/safety
func (h *Handler) GetSafety(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetSafety(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Sync upserts a property pushed by the system of record.
// POST /api/v1/internal/sync/property
func (h *Handler) Sync(c *gin.Context) {
	var req transport.SyncPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	if err := h.svc.SyncFromPush(c.Request.Context(), req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"synced": req.ID})
}

// Search supports the admin property dropdown.
// GET /api/v1/admin/properties-search
func (h *Handler) Search(c *gin.Context) {
	var q transport.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	items, err := h.svc.Search(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}
