package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homesafe_backend/internal/reviews/service"
	"homesafe_backend/internal/reviews/transport"
	"homesafe_backend/platform/httpkit"
	"homesafe_backend/platform/validator"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid property ID"
)

// Handler handles HTTP requests for property reviews.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit creates or replaces the caller's review.
// POST /api/v1/reviews
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	if err := h.svc.Submit(c.Request.Context(), identity.UserID(), req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, gin.H{"property_id": req.PropertyID})
}

// List returns a page of a property's reviews. Anonymous callers see all
// reviewer names masked; authenticated callers see their own row unmasked.
// GET /api/v1/reviews?property_id=&page=&limit=
func (h *Handler) List(c *gin.Context) {
	var q transport.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	var viewerID int64
	if identity := httpkit.GetIdentity(c); identity.IsAuthenticated() {
		viewerID = identity.UserID()
	}

	result, err := h.svc.List(c.Request.Context(), viewerID, q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes the caller's own review of the property.
// DELETE /api/v1/reviews/:propertyId
func (h *Handler) Delete(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), propertyID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": propertyID})
}
