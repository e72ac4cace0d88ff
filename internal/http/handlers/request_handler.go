package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/derive"
	domainrepo "github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/goroutine"
	"github.com/ignatzorin/testhub-backend/internal/http/handlers/common"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	"github.com/ignatzorin/testhub-backend/internal/service"
	usecaserequest "github.com/ignatzorin/testhub-backend/internal/usecase/request"
	"github.com/ignatzorin/testhub-backend/internal/validation"
)

// RequestUseCases собирает use case-ы заявки в один граф зависимостей.
type RequestUseCases struct {
	Submit         *usecaserequest.SubmitRequestUseCase
	SetStatus      *usecaserequest.SetStatusUseCase
	SendQuote      *usecaserequest.SendQuoteUseCase
	AcceptQuote    *usecaserequest.AcceptQuoteUseCase
	Claim          *usecaserequest.ClaimRequestUseCase
	ReadyForReview *usecaserequest.MarkReadyForReviewUseCase
	Complete       *usecaserequest.CompleteRequestUseCase
	Cancel         *usecaserequest.CancelRequestUseCase
}

type RequestHandler struct {
	usecases      RequestUseCases
	requests      *repository.RequestRepository
	bugReports    *repository.BugReportRepository
	users         *repository.UserRepository
	catalogs      *service.CatalogService
	activity      *service.ActivityService
	notifications *service.NotificationService
}

// NewRequestHandler создаёт новый хэндлер.
func NewRequestHandler(
	usecases RequestUseCases,
	requests *repository.RequestRepository,
	bugReports *repository.BugReportRepository,
	users *repository.UserRepository,
	catalogs *service.CatalogService,
	activity *service.ActivityService,
	notifications *service.NotificationService,
) *RequestHandler {
	return &RequestHandler{
		usecases:      usecases,
		requests:      requests,
		bugReports:    bugReports,
		users:         users,
		catalogs:      catalogs,
		activity:      activity,
		notifications: notifications,
	}
}

// CreateRequest обрабатывает POST /requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateTestingRequestRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateRequestTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateRequestDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateTestingTypes(req.TestingTypes); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateReferenceURL(req.ReferenceURL); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var deadline *time.Time
	if req.DesiredDeadline != nil && *req.DesiredDeadline != "" {
		parsed, err := time.Parse(time.RFC3339, *req.DesiredDeadline)
		if err != nil {
			common.RespondBadRequest(c, "desired_deadline должен быть в формате RFC3339")
			return
		}
		deadline = &parsed
	}

	var archiveID *uuid.UUID
	if req.ArchiveID != nil && *req.ArchiveID != "" {
		parsed, err := uuid.Parse(*req.ArchiveID)
		if err != nil {
			common.RespondBadRequest(c, "archive_id должен быть валидным UUID")
			return
		}
		archiveID = &parsed
	}

	created, err := h.usecases.Submit.Execute(c.Request.Context(), usecaserequest.SubmitRequestInput{
		CustomerID:   userID,
		Title:        req.Title,
		Description:  req.Description,
		ProductType:  req.ProductType,
		TestingTypes: req.TestingTypes,
		TokenFee:     req.RequestedTokenFee,
		Deadline:     deadline,
		ReferenceURL: req.ReferenceURL,
		ArchiveID:    archiveID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.respondDetail(c, http.StatusCreated, created.ID)
}

// ListRequests обрабатывает GET /requests.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	page, perPage := common.GetPagination(c)
	filter := domainrepo.RequestFilter{
		Status: c.Query("status"),
		Bucket: c.Query("bucket"),
		Search: c.Query("search"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	// Заказчик видит только собственные заявки
	if role == models.RoleCustomer {
		filter.CustomerID = &userID
	}
	if role == models.RoleTester && c.Query("mine") == "true" {
		filter.TesterID = &userID
	}

	rows, total, err := h.requests.ListModels(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	updatesByRequest, err := h.requests.ListUpdatesForRequests(c.Request.Context(), ids)
	if err != nil {
		_ = c.Error(err)
		return
	}
	bugsByRequest, err := h.bugReports.ListForRequests(c.Request.Context(), ids)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, err := h.resolveTesters(c, rows, updatesByRequest, bugsByRequest)
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := make([]*dto.RequestSummaryResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		derived := h.buildDerived(row, updatesByRequest[row.ID], bugsByRequest[row.ID], users)
		items = append(items, dto.NewRequestSummaryResponse(row, derived))
	}

	c.JSON(http.StatusOK, dto.RequestListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	})
}

// GetRequest обрабатывает GET /requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
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

	row, _, _, err := h.requests.GetModelWithDetails(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	role, _ := common.CurrentUserRole(c)
	if role == models.RoleCustomer && row.CustomerID != userID {
		common.RespondForbidden(c, "")
		return
	}

	h.respondDetail(c, http.StatusOK, requestID)
}

// SetStatus обрабатывает PATCH /requests/:id/status.
func (h *RequestHandler) SetStatus(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SetStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	to := valueobject.StatusCode(strings.ToUpper(strings.TrimSpace(req.Status)))
	updated, err := h.usecases.SetStatus.Execute(c.Request.Context(), requestID, to)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.notifyCustomer(updated.CustomerID, requestID, models.NotificationStatusChanged,
		"Статус заявки изменён", "Заявка переведена в статус "+h.catalogs.Catalog().Label(updated.Status))

	h.respondDetail(c, http.StatusOK, requestID)
}

// SendQuote обрабатывает POST /requests/:id/quote.
func (h *RequestHandler) SendQuote(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SendQuoteRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateQuoteAmount(req.Amount); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var expiryDays *int
	if req.ExpiryDays > 0 {
		expiryDays = &req.ExpiryDays
	}

	updated, err := h.usecases.SendQuote.Execute(c.Request.Context(), usecaserequest.SendQuoteInput{
		RequestID:  requestID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		ExpiryDays: expiryDays,
		Notes:      req.Notes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.notifyCustomer(updated.CustomerID, requestID, models.NotificationQuoteSent,
		"Получено предложение цены", "По вашей заявке отправлено предложение стоимости")

	h.respondDetail(c, http.StatusOK, requestID)
}

// AcceptQuote обрабатывает POST /requests/:id/quote/accept.
func (h *RequestHandler) AcceptQuote(c *gin.Context) {
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

	updated, err := h.usecases.AcceptQuote.Execute(c.Request.Context(), requestID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.notifyCustomer(updated.CustomerID, requestID, models.NotificationQuoteAccepted,
		"Предложение принято", "Предложение стоимости по заявке принято")

	h.respondDetail(c, http.StatusOK, requestID)
}

// ClaimRequest обрабатывает POST /requests/:id/claim.
func (h *RequestHandler) ClaimRequest(c *gin.Context) {
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

	tester, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.usecases.Claim.Execute(c.Request.Context(), requestID, userID, derive.DisplayName(*tester))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.notifyCustomer(updated.CustomerID, requestID, models.NotificationClaimed,
		"Заявка взята в работу", "Тестировщик "+derive.DisplayName(*tester)+" взял заявку в работу")

	h.respondDetail(c, http.StatusOK, requestID)
}

// MarkReadyForReview обрабатывает POST /requests/:id/ready-for-review.
func (h *RequestHandler) MarkReadyForReview(c *gin.Context) {
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

	updated, err := h.usecases.ReadyForReview.Execute(c.Request.Context(), requestID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.notifyCustomer(updated.CustomerID, requestID, models.NotificationStatusChanged,
		"Заявка готова к проверке", "Результаты тестирования готовы к вашей проверке")

	h.respondDetail(c, http.StatusOK, requestID)
}

// CompleteRequest обрабатывает POST /requests/:id/complete.
func (h *RequestHandler) CompleteRequest(c *gin.Context) {
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

	role, _ := common.CurrentUserRole(c)
	if role == models.RoleCustomer {
		existing, err := h.requests.FindByID(c.Request.Context(), requestID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if !existing.IsOwnedBy(userID) {
			common.RespondForbidden(c, "")
			return
		}
	}

	if _, err := h.usecases.Complete.Execute(c.Request.Context(), requestID); err != nil {
		_ = c.Error(err)
		return
	}

	h.respondDetail(c, http.StatusOK, requestID)
}

// CancelRequest обрабатывает POST /requests/:id/cancel.
func (h *RequestHandler) CancelRequest(c *gin.Context) {
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

	if _, err := h.usecases.Cancel.Execute(c.Request.Context(), requestID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	h.respondDetail(c, http.StatusOK, requestID)
}

// CreateUpdate обрабатывает POST /requests/:id/updates.
func (h *RequestHandler) CreateUpdate(c *gin.Context) {
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

	var req dto.CreateUpdateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateUpdateNote(req.Note); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	status := valueobject.StatusCode(strings.ToUpper(strings.TrimSpace(req.Status)))
	update, err := h.activity.CreateUpdate(c.Request.Context(), requestID, &userID, status, req.Note)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, update)
}

// ListUpdates обрабатывает GET /requests/:id/updates.
func (h *RequestHandler) ListUpdates(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updates, err := h.requests.ListUpdates(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if updates == nil {
		updates = []models.TestingUpdate{}
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// CreateTestLog обрабатывает POST /requests/:id/logs.
func (h *RequestHandler) CreateTestLog(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateTestLogRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	log, err := h.activity.CreateTestLog(c.Request.Context(), requestID, req.Level, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

// ListTestLogs обрабатывает GET /requests/:id/logs.
func (h *RequestHandler) ListTestLogs(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	_, _, logs, err := h.requests.GetModelWithDetails(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if logs == nil {
		logs = []models.TestLog{}
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// respondDetail отдаёт детальный view заявки с производными полями.
func (h *RequestHandler) respondDetail(c *gin.Context, status int, requestID uuid.UUID) {
	row, updates, logs, err := h.requests.GetModelWithDetails(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	bugs, err := h.bugReports.ListByRequestID(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, err := h.resolveTesters(c, []models.TestingRequest{*row},
		map[uuid.UUID][]models.TestingUpdate{requestID: updates},
		map[uuid.UUID][]models.BugReport{requestID: bugs})
	if err != nil {
		_ = c.Error(err)
		return
	}

	derived := h.buildDerived(row, updates, bugs, users)
	c.JSON(status, dto.NewRequestDetailResponse(row, derived, updates, bugs, logs))
}

// buildDerived пересчитывает производные поля заявки на чтении.
func (h *RequestHandler) buildDerived(row *models.TestingRequest, updates []models.TestingUpdate, bugs []models.BugReport, users map[uuid.UUID]models.User) dto.DerivedView {
	catalog := h.catalogs.Catalog()
	code := valueobject.StatusCode(row.Status)

	return dto.DerivedView{
		Progress:      derive.Progress(catalog, row, updates),
		Priority:      string(derive.Priority(bugs)),
		StatusLabel:   catalog.Label(code),
		DisplayBucket: catalog.DisplayBucket(code),
		AssignedOwner: derive.AssignedOwner(row, updates, bugs, users),
		Deadline:      derive.Deadline(row),
	}
}

// resolveTesters собирает пользователей, упомянутых заявками и их журналами,
// одним запросом.
func (h *RequestHandler) resolveTesters(c *gin.Context, rows []models.TestingRequest, updatesByRequest map[uuid.UUID][]models.TestingUpdate, bugsByRequest map[uuid.UUID][]models.BugReport) (map[uuid.UUID]models.User, error) {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}

	add := func(id *uuid.UUID) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}

	for i := range rows {
		add(rows[i].AssignedTesterID)
		for _, u := range updatesByRequest[rows[i].ID] {
			add(u.TesterID)
		}
		for _, b := range bugsByRequest[rows[i].ID] {
			add(b.TesterID)
		}
	}

	return h.users.GetByIDs(c.Request.Context(), ids)
}

// notifyCustomer пишет уведомление заказчику в фоне. Контекст запроса к этому
// моменту уже может быть отменён, поэтому используется собственный таймаут.
func (h *RequestHandler) notifyCustomer(customerID, requestID uuid.UUID, ntype, title, body string) {
	if h.notifications == nil {
		return
	}
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.notifications.Notify(ctx, customerID, ntype, title, body, &requestID)
	})
}
