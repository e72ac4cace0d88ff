package dto

// RegisterRequest represents the request to register a new account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to refresh a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateTestingRequestRequest represents the request to submit a testing request
type CreateTestingRequestRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description" binding:"required"`
	ProductType       string   `json:"product_type"`
	TestingTypes      []string `json:"testing_types" binding:"required"`
	RequestedTokenFee *int     `json:"requested_token_fee"`
	ReferenceURL      *string  `json:"reference_url"`
	ArchiveID         *string  `json:"archive_id"`
	DesiredDeadline   *string  `json:"desired_deadline"`
}

// SetStatusRequest represents the request to move a testing request to a new status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SendQuoteRequest represents the request to send a price quote
type SendQuoteRequest struct {
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency" binding:"required"`
	Notes      *string `json:"notes"`
	ExpiryDays int     `json:"expiry_days"`
}

// AcceptQuoteRequest represents the request to accept an active quote
type AcceptQuoteRequest struct {
	Notes *string `json:"notes"`
}

// CreateUpdateRequest represents the request to append a progress update
type CreateUpdateRequest struct {
	Note   string `json:"note" binding:"required"`
	Status string `json:"status"`
}

// CreateTestLogRequest represents the request to append a technical test log entry
type CreateTestLogRequest struct {
	Level   string `json:"level"`
	Message string `json:"message" binding:"required"`
}

// CreateBugReportRequest represents the request to file a bug report
type CreateBugReportRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Severity    string  `json:"severity" binding:"required"`
}

// UpdateBugStatusRequest represents the request to change a bug report status
type UpdateBugStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddBugCommentRequest represents the request to comment on a bug report
type AddBugCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// DepositTokensRequest represents the request to top up a token balance
type DepositTokensRequest struct {
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description"`
}
