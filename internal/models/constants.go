package models

// RequestStatus константы статусов заявок на тестирование
const (
	RequestStatusNew             = "NEW"
	RequestStatusPending         = "PENDING"
	RequestStatusWaitingCustomer = "WAITING_CUSTOMER"
	RequestStatusInProgress      = "IN_PROGRESS"
	RequestStatusReadyForReview  = "READY_FOR_REVIEW"
	RequestStatusCompleted       = "COMPLETED"
	RequestStatusCancelled       = "CANCELLED"
	RequestStatusExpired         = "EXPIRED"
)

// BugSeverity константы критичности баг-репортов
const (
	BugSeverityCritical = "CRITICAL"
	BugSeverityHigh     = "HIGH"
	BugSeverityMedium   = "MEDIUM"
	BugSeverityLow      = "LOW"
)

// BugStatus константы статусов баг-репортов
const (
	BugStatusOpen       = "OPEN"
	BugStatusInProgress = "IN_PROGRESS"
	BugStatusResolved   = "RESOLVED"
	BugStatusClosed     = "CLOSED"
)

// Role константы ролей пользователей
const (
	RoleCustomer = "customer"
	RoleTester   = "tester"
	RoleAdmin    = "admin"
)

// DisplayBucket укрупнённые статусы для клиентского дашборда
const (
	BucketPending    = "pending"
	BucketInProgress = "in-progress"
	BucketCompleted  = "completed"
	BucketFailed     = "failed"
)

// LogLevel уровни записей тестовых логов
const (
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
)

// ValidBugSeverities список валидных уровней критичности
var ValidBugSeverities = map[string]struct{}{
	BugSeverityCritical: {},
	BugSeverityHigh:     {},
	BugSeverityMedium:   {},
	BugSeverityLow:      {},
}

// ValidBugStatuses список валидных статусов баг-репортов
var ValidBugStatuses = map[string]struct{}{
	BugStatusOpen:       {},
	BugStatusInProgress: {},
	BugStatusResolved:   {},
	BugStatusClosed:     {},
}

// ValidLogLevels список валидных уровней логов
var ValidLogLevels = map[string]struct{}{
	LogLevelInfo:  {},
	LogLevelWarn:  {},
	LogLevelError: {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleCustomer: {},
	RoleTester:   {},
	RoleAdmin:    {},
}
