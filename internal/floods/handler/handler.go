package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homesafe_backend/internal/floods/service"
	"homesafe_backend/internal/floods/transport"
	"homesafe_backend/platform/httpkit"
	"homesafe_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for flood reports.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Report records a flood observation.
// POST /api/v1/flood-reports
func (h *Handler) Report(c *gin.Context) {
	var req transport.CreateFloodReportRequest
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

	id, err := h.svc.Report(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, gin.H{"id": id})
}

// History lists recent reports around a point.
// GET /api/v1/flood-reports?lat=&lng=
func (h *Handler) History(c *gin.Context) {
	var q transport.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	items, err := h.svc.History(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}
