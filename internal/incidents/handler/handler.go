package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homesafe_backend/internal/incidents/service"
	"homesafe_backend/internal/incidents/transport"
	"homesafe_backend/platform/httpkit"
	"homesafe_backend/platform/validator"
)

// Handler handles the admin incident intake endpoint.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create records a security incident.
// POST /api/v1/admin/incidents
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}
