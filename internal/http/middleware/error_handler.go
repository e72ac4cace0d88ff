package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	domainrepo "github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/logger"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	usecaserequest "github.com/ignatzorin/testhub-backend/internal/usecase/request"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Типизированные доменные ошибки превращаются в понятные клиенту ответы,
// внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		status, body := mapError(err)
		c.JSON(status, body)
	}
}

// mapError разбирает доменные ошибки по типам.
func mapError(err error) (int, gin.H) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, gin.H{"error": appErr.Message, "code": string(appErr.Code)}
	}

	var transitionErr *valueobject.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict, gin.H{
			"error": transitionErr.Error(),
			"code":  "INVALID_TRANSITION",
			"from":  string(transitionErr.From),
			"to":    string(transitionErr.To),
		}
	}

	var quoteErr *valueobject.QuoteError
	if errors.As(err, &quoteErr) {
		status := http.StatusConflict
		if quoteErr.Kind == valueobject.QuoteInvalidAmount || quoteErr.Kind == valueobject.QuoteMissingCurrency {
			status = http.StatusBadRequest
		}
		return status, gin.H{"error": quoteErr.Message, "code": string(quoteErr.Kind)}
	}

	var claimErr *entity.ClaimError
	if errors.As(err, &claimErr) {
		return http.StatusConflict, gin.H{"error": claimErr.Message, "code": string(claimErr.Kind)}
	}

	var tokensErr *usecaserequest.InsufficientTokensError
	if errors.As(err, &tokensErr) {
		return http.StatusPaymentRequired, gin.H{
			"error":     "недостаточно токенов для оформления заявки",
			"code":      "INSUFFICIENT_TOKENS",
			"required":  tokensErr.Required,
			"remaining": tokensErr.Remaining,
		}
	}

	switch {
	case errors.Is(err, domainrepo.ErrVersionConflict):
		return http.StatusConflict, gin.H{"error": "заявка была изменена параллельно, повторите запрос"}
	case errors.Is(err, repository.ErrRequestNotFound):
		return http.StatusNotFound, gin.H{"error": "заявка на тестирование не найдена"}
	case errors.Is(err, repository.ErrBugReportNotFound):
		return http.StatusNotFound, gin.H{"error": "баг-репорт не найден"}
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, gin.H{"error": "пользователь не найден"}
	case errors.Is(err, repository.ErrBalanceNotFound):
		return http.StatusNotFound, gin.H{"error": "баланс токенов не найден"}
	case errors.Is(err, repository.ErrArchiveNotFound):
		return http.StatusNotFound, gin.H{"error": "архив не найден"}
	case errors.Is(err, repository.ErrInsufficientTokens):
		return http.StatusPaymentRequired, gin.H{"error": "недостаточно токенов"}
	case errors.Is(err, repository.ErrDuplicateUser):
		return http.StatusConflict, gin.H{"error": "пользователь с таким email или username уже существует"}
	}

	message := "внутренняя ошибка сервера"
	statusCode := http.StatusInternalServerError

	// Сообщения без внутренних деталей можно показать клиенту
	errStr := err.Error()
	if errStr != "" && !containsInternalKeywords(errStr) {
		message = errStr
		if contains(errStr, "неверный") || contains(errStr, "невалид") || contains(errStr, "обязател") {
			statusCode = http.StatusBadRequest
		} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
			statusCode = http.StatusForbidden
		}
	}

	return statusCode, gin.H{"error": message}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"pq:",
		"constraint",
		"violates",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
