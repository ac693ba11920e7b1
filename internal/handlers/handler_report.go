package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

type reportHandler struct {
	reportingService ports.ReportingSvcFacade
}

func newReportHandler(rs ports.ReportingSvcFacade) *reportHandler {
	return &reportHandler{reportingService: rs}
}

func registerReportRoutes(rg *gin.RouterGroup, reportingService ports.ReportingSvcFacade) {
	h := newReportHandler(reportingService)

	reports := rg.Group("/reports", middleware.RequireAdmin())
	{
		reports.GET("/dashboard", h.dashboard)
	}
}

// dashboard godoc
// @Summary Dashboard statistics
// @Description Sector-scoped aggregates gathered concurrently; sources that fail are listed in failedStats instead of failing the response
// @Tags reports
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportHandler) dashboard(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	stats, err := h.reportingService.DashboardStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DashboardResponse{Stats: *stats})
}
