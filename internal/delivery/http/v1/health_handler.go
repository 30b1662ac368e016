package v1

import (
	"net/http"

	"job-portal-backend/internal/delivery/http/response"
	"job-portal-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

func NewHealthHandler(api *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}

	api.GET("/health", handler.Health)
	api.GET("/ready", handler.Ready)
	api.GET("/startup", handler.Startup)
}

func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "OK", h.healthUC.Check(c.Request.Context()))
}

func (h *HealthHandler) Ready(c *gin.Context) {
	status, ready := h.healthUC.Ready(c.Request.Context())
	if !ready {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success: false,
			Message: "Not ready",
			Data:    status,
		})
		return
	}
	response.Success(c, http.StatusOK, "Ready", status)
}

func (h *HealthHandler) Startup(c *gin.Context) {
	if !h.healthUC.Started() {
		response.Error(c, http.StatusServiceUnavailable, "Starting")
		return
	}
	response.Success(c, http.StatusOK, "Started", nil)
}
