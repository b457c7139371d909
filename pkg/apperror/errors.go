package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Webhook Security (SEC) ----

func ErrInvalidWebhookSignature() *AppError {
	return New("SEC_001", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrMissingWebhookSignature() *AppError {
	return New("SEC_002", "Missing webhook signature header", http.StatusUnauthorized)
}

func ErrUnknownProvider(name string) *AppError {
	return New("SEC_003", fmt.Sprintf("Unknown provider: %s", name), http.StatusBadRequest)
}

// ---- Wallet & Ledger (WLT) ----

func ErrInsufficientBalance() *AppError {
	return New("WLT_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WLT_002", "Invalid amount", http.StatusBadRequest)
}

func ErrWalletNotFound() *AppError {
	return New("WLT_003", "Wallet not found", http.StatusNotFound)
}

// ---- Transactions (TXN) ----

func ErrTransactionNotFound(reference string) *AppError {
	return New("TXN_001", fmt.Sprintf("No transaction matches reference %s", reference), http.StatusNotFound)
}

func ErrDuplicateReference() *AppError {
	return New("TXN_002", "Transaction reference already used", http.StatusConflict)
}

func ErrMalformedPayload() *AppError {
	return New("TXN_003", "Malformed webhook payload", http.StatusBadRequest)
}

func ErrVendFailed(reason string) *AppError {
	return New("TXN_004", fmt.Sprintf("Provider could not fulfil the purchase: %s", reason), http.StatusBadGateway)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Validation (VAL) ----

// Validation returns a request-validation error with a descriptive message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("VAL_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Payment gateway unavailable", http.StatusBadGateway, err)
}
