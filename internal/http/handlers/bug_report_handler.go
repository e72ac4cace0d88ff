package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/goroutine"
	"github.com/ignatzorin/testhub-backend/internal/http/handlers/common"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	"github.com/ignatzorin/testhub-backend/internal/service"
	"github.com/ignatzorin/testhub-backend/internal/validation"
)

type BugReportHandler struct {
	bugs          *service.BugReportService
	requests      *repository.RequestRepository
	notifications *service.NotificationService
}

// NewBugReportHandler создаёт новый хэндлер.
func NewBugReportHandler(bugs *service.BugReportService, requests *repository.RequestRepository, notifications *service.NotificationService) *BugReportHandler {
	return &BugReportHandler{bugs: bugs, requests: requests, notifications: notifications}
}

// CreateBugReport обрабатывает POST /requests/:id/bugs.
func (h *BugReportHandler) CreateBugReport(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateBugReportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateBugTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateBugDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	report, err := h.bugs.Create(c.Request.Context(), service.CreateBugReportInput{
		RequestID:   requestID,
		Title:       req.Title,
		Description: description,
		Severity:    strings.ToUpper(strings.TrimSpace(req.Severity)),
		TesterID:    &userID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Уведомление заказчику пишется в фоне, ошибки не прерывают запрос
	if owner, ferr := h.requests.FindByID(c.Request.Context(), requestID); ferr == nil && h.notifications != nil {
		customerID := owner.CustomerID
		title := report.Title
		goroutine.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = h.notifications.Notify(ctx, customerID, models.NotificationBugReported,
				"Найден дефект", "По вашей заявке зарегистрирован баг-репорт: "+title, &requestID)
		})
	}

	c.JSON(http.StatusCreated, report)
}

// ListBugReports обрабатывает GET /requests/:id/bugs.
func (h *BugReportHandler) ListBugReports(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reports, err := h.bugs.ListByRequest(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if reports == nil {
		reports = []models.BugReport{}
	}

	c.JSON(http.StatusOK, gin.H{"bug_reports": reports})
}

// GetBugReport обрабатывает GET /bugs/:id.
func (h *BugReportHandler) GetBugReport(c *gin.Context) {
	bugID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.bugs.Get(c.Request.Context(), bugID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateBugStatus обрабатывает PATCH /bugs/:id/status.
func (h *BugReportHandler) UpdateBugStatus(c *gin.Context) {
	bugID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBugStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.bugs.UpdateStatus(c.Request.Context(), bugID, strings.ToUpper(strings.TrimSpace(req.Status))); err != nil {
		_ = c.Error(err)
		return
	}

	report, err := h.bugs.Get(c.Request.Context(), bugID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// AddBugComment обрабатывает POST /bugs/:id/comments.
func (h *BugReportHandler) AddBugComment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	bugID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AddBugCommentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateComment(req.Content); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.bugs.AddComment(c.Request.Context(), bugID, userID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
