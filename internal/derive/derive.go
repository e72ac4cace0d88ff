// Package derive вычисляет производные поля заявки: прогресс, приоритет,
// назначенного исполнителя и дедлайн. Функции чистые и детерминированные,
// работают над неизменяемым снимком заявки и её журналов.
package derive

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

const (
	minProgress = 5
	maxProgress = 100
)

// deadlineOffsetDays смещение дедлайна в днях от базовой даты по статусу.
var deadlineOffsetDays = map[valueobject.StatusCode]int{
	valueobject.StatusNew:             10,
	valueobject.StatusPending:         7,
	valueobject.StatusWaitingCustomer: 5,
	valueobject.StatusInProgress:      14,
	valueobject.StatusReadyForReview:  3,
	valueobject.StatusCompleted:       0,
	valueobject.StatusCancelled:       0,
	valueobject.StatusExpired:         0,
}

const defaultDeadlineOffsetDays = 10

// TesterRef ссылка на исполнителя для отображения.
type TesterRef struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name"`
}

// Unassigned значение по умолчанию, когда исполнитель не определён.
var Unassigned = TesterRef{Name: "Unassigned"}

// Progress вычисляет нормализованный процент выполнения. Берётся максимум из
// веса текущего статуса и весов всех статусов в журнале обновлений, результат
// зажимается в [5,100]. За счёт максимума прогресс монотонно не убывает, даже
// если статус заявки позже скорректирован назад.
func Progress(catalog *valueobject.StatusCatalog, req *models.TestingRequest, updates []models.TestingUpdate) int {
	progress := catalog.Lookup(valueobject.StatusCode(req.Status)).ProgressWeight
	for _, u := range updates {
		if w := catalog.Lookup(valueobject.StatusCode(u.Status)).ProgressWeight; w > progress {
			progress = w
		}
	}

	if progress < minProgress {
		progress = minProgress
	}
	if progress > maxProgress {
		progress = maxProgress
	}
	return progress
}

// Priority возвращает производный приоритет заявки: самая критичная severity
// среди связанных баг-репортов. Без баг-репортов приоритет medium.
func Priority(bugReports []models.BugReport) valueobject.Priority {
	best := valueobject.Severity("")
	found := false
	for _, br := range bugReports {
		sev := valueobject.ParseSeverity(br.Severity)
		if !found || sev.MoreSevereThan(best) {
			best = sev
			found = true
		}
	}
	if !found {
		return valueobject.PriorityMedium
	}
	return best.Priority()
}

// AssignedOwner определяет исполнителя для отображения: последний по времени
// update с тестировщиком, иначе первый баг-репорт с тестировщиком, иначе
// Unassigned. Имя разрешается через users по цепочке фолбэков.
func AssignedOwner(req *models.TestingRequest, updates []models.TestingUpdate, bugReports []models.BugReport, users map[uuid.UUID]models.User) TesterRef {
	var testerID *uuid.UUID

	// updates отсортированы по created_at; побеждает самый свежий с тестировщиком
	for _, u := range updates {
		if u.TesterID != nil {
			testerID = u.TesterID
		}
	}

	if testerID == nil {
		for _, br := range bugReports {
			if br.TesterID != nil {
				testerID = br.TesterID
				break
			}
		}
	}

	if testerID == nil && req.AssignedTesterID != nil {
		testerID = req.AssignedTesterID
	}

	if testerID == nil {
		return Unassigned
	}

	user, ok := users[*testerID]
	if !ok {
		return TesterRef{ID: testerID, Name: "Unassigned"}
	}
	return TesterRef{ID: testerID, Name: DisplayName(user)}
}

// DisplayName разрешает отображаемое имя пользователя: fullName -> firstName+
// lastName -> username -> email -> phone -> "Unassigned". Побеждает первое
// непустое значение.
func DisplayName(user models.User) string {
	if p := user.Profile; p != nil {
		if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
			return strings.TrimSpace(*p.FullName)
		}
		first, last := "", ""
		if p.FirstName != nil {
			first = strings.TrimSpace(*p.FirstName)
		}
		if p.LastName != nil {
			last = strings.TrimSpace(*p.LastName)
		}
		if full := strings.TrimSpace(first + " " + last); full != "" {
			return full
		}
	}
	if strings.TrimSpace(user.Username) != "" {
		return strings.TrimSpace(user.Username)
	}
	if strings.TrimSpace(user.Email) != "" {
		return strings.TrimSpace(user.Email)
	}
	if p := user.Profile; p != nil && p.Phone != nil && strings.TrimSpace(*p.Phone) != "" {
		return strings.TrimSpace(*p.Phone)
	}
	return "Unassigned"
}

// Deadline вычисляет дедлайн заявки. Заданный заказчиком desiredDeadline
// возвращается как есть и никогда не пересчитывается. Иначе к updatedAt
// (или createdAt) прибавляется смещение по статусу.
func Deadline(req *models.TestingRequest) time.Time {
	if req.DesiredDeadline != nil {
		return *req.DesiredDeadline
	}

	base := req.UpdatedAt
	if base.IsZero() {
		base = req.CreatedAt
	}

	offset, ok := deadlineOffsetDays[valueobject.StatusCode(strings.ToUpper(req.Status))]
	if !ok {
		offset = defaultDeadlineOffsetDays
	}
	return base.Add(time.Duration(offset) * 24 * time.Hour)
}
