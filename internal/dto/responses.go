package dto

import (
	"time"

	"github.com/ignatzorin/testhub-backend/internal/derive"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

// ErrorResponse represents a standardized error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standardized success payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the payload returned after register/login/refresh
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// NewAuthResponse creates an AuthResponse from a user and a token pair
func NewAuthResponse(user *models.User, accessToken, refreshToken string, expiresIn time.Duration) *AuthResponse {
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(expiresIn.Seconds()),
	}
}

// DerivedView holds the computed presentation fields of a testing request.
// These values are never stored, they are recomputed on every read.
type DerivedView struct {
	Progress      int              `json:"progress"`
	Priority      string           `json:"priority"`
	StatusLabel   string           `json:"status_label"`
	DisplayBucket string           `json:"display_bucket"`
	AssignedOwner derive.TesterRef `json:"assigned_owner"`
	Deadline      time.Time        `json:"deadline"`
}

// RequestSummaryResponse represents a testing request in list views
type RequestSummaryResponse struct {
	*models.TestingRequest
	Derived DerivedView `json:"derived"`
}

// NewRequestSummaryResponse creates a RequestSummaryResponse from components
func NewRequestSummaryResponse(req *models.TestingRequest, derived DerivedView) *RequestSummaryResponse {
	return &RequestSummaryResponse{
		TestingRequest: req,
		Derived:        derived,
	}
}

// RequestDetailResponse represents a testing request with its journals
type RequestDetailResponse struct {
	*models.TestingRequest
	Derived    DerivedView            `json:"derived"`
	Quote      *QuoteResponse         `json:"quote,omitempty"`
	Updates    []models.TestingUpdate `json:"updates"`
	BugReports []models.BugReport     `json:"bug_reports"`
	TestLogs   []models.TestLog       `json:"test_logs"`
}

// NewRequestDetailResponse creates a RequestDetailResponse from components
func NewRequestDetailResponse(req *models.TestingRequest, derived DerivedView, updates []models.TestingUpdate, bugReports []models.BugReport, logs []models.TestLog) *RequestDetailResponse {
	if updates == nil {
		updates = []models.TestingUpdate{}
	}
	if bugReports == nil {
		bugReports = []models.BugReport{}
	}
	if logs == nil {
		logs = []models.TestLog{}
	}
	return &RequestDetailResponse{
		TestingRequest: req,
		Derived:        derived,
		Quote:          NewQuoteResponse(req),
		Updates:        updates,
		BugReports:     bugReports,
		TestLogs:       logs,
	}
}

// RequestListResponse represents a paginated list of testing requests
type RequestListResponse struct {
	Items      []*RequestSummaryResponse `json:"items"`
	TotalCount int                       `json:"total_count"`
	Page       int                       `json:"page"`
	PerPage    int                       `json:"per_page"`
}

// TestingTypeResponse represents a priced testing type from the cost catalog
type TestingTypeResponse struct {
	Key    string `json:"key"`
	Tokens int    `json:"tokens"`
}

// QuoteResponse represents the active quote of a testing request
type QuoteResponse struct {
	Price      float64    `json:"price"`
	Currency   string     `json:"currency"`
	Notes      *string    `json:"notes,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	ExpiryAt   *time.Time `json:"expiry_at,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

// NewQuoteResponse collects the flattened quote columns of a request row.
// Returns nil when the request carries no active quote.
func NewQuoteResponse(req *models.TestingRequest) *QuoteResponse {
	if req.QuotePrice == nil {
		return nil
	}
	currency := ""
	if req.QuoteCurrency != nil {
		currency = *req.QuoteCurrency
	}
	return &QuoteResponse{
		Price:      *req.QuotePrice,
		Currency:   currency,
		Notes:      req.QuoteNotes,
		SentAt:     req.QuoteSentAt,
		ExpiryAt:   req.QuoteExpiryAt,
		AcceptedAt: req.QuoteAcceptedAt,
	}
}

// StatsResponse represents aggregate dashboard counters
type StatsResponse struct {
	RequestsByStatus   map[string]int `json:"requests_by_status"`
	OpenBugsBySeverity map[string]int `json:"open_bugs_by_severity"`
}
