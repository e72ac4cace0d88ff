package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/repository"
)

type StatsHandler struct {
	requests   *repository.RequestRepository
	bugReports *repository.BugReportRepository
}

// NewStatsHandler создаёт новый хэндлер.
func NewStatsHandler(requests *repository.RequestRepository, bugReports *repository.BugReportRepository) *StatsHandler {
	return &StatsHandler{requests: requests, bugReports: bugReports}
}

// GetDashboardStats обрабатывает GET /stats/dashboard.
func (h *StatsHandler) GetDashboardStats(c *gin.Context) {
	byStatus, err := h.requests.CountByStatus(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	openBugs, err := h.bugReports.CountOpenBySeverity(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		RequestsByStatus:   byStatus,
		OpenBugsBySeverity: openBugs,
	})
}
