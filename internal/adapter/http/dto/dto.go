package dto

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Phone    string `json:"phone" binding:"required,ng_phone"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AirtimePurchaseRequest is the request body for airtime purchases.
// Amount is in kobo.
type AirtimePurchaseRequest struct {
	Network  string `json:"network" binding:"required,oneof=mtn glo airtel 9mobile"`
	Phone    string `json:"phone" binding:"required,ng_phone"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Provider string `json:"provider" binding:"required,oneof=vtpass baxi clubkonnect"`
}

// DataPurchaseRequest is the request body for data bundle purchases.
type DataPurchaseRequest struct {
	Network  string `json:"network" binding:"required,oneof=mtn glo airtel 9mobile"`
	Phone    string `json:"phone" binding:"required,ng_phone"`
	PlanCode string `json:"plan_code" binding:"required,safe_id"`
	PlanName string `json:"plan_name" binding:"required,max=100"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Provider string `json:"provider" binding:"required,oneof=vtpass baxi clubkonnect"`
}

// CablePurchaseRequest is the request body for cable TV subscriptions.
type CablePurchaseRequest struct {
	CableProvider string `json:"cable_provider" binding:"required,oneof=dstv gotv startimes"`
	Smartcard     string `json:"smartcard" binding:"required,smartcard"`
	PlanCode      string `json:"plan_code" binding:"required,safe_id"`
	PlanName      string `json:"plan_name" binding:"required,max=100"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Provider      string `json:"provider" binding:"required,oneof=vtpass baxi clubkonnect"`
}

// ElectricityPurchaseRequest is the request body for electricity tokens.
type ElectricityPurchaseRequest struct {
	Disco     string `json:"disco" binding:"required,safe_id"`
	Meter     string `json:"meter" binding:"required,meter_number"`
	MeterType string `json:"meter_type" binding:"required,oneof=prepaid postpaid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Provider  string `json:"provider" binding:"required,oneof=vtpass baxi clubkonnect"`
}

// FundWalletRequest is the request body for wallet funding. Amount is
// in kobo.
type FundWalletRequest struct {
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	Gateway string `json:"gateway" binding:"omitempty,oneof=paystack"`
}

// FundWalletResponse carries the hosted checkout handle.
type FundWalletResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// ContactRequest is the request body for saving a beneficiary.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Phone   string `json:"phone" binding:"required,ng_phone"`
	Network string `json:"network" binding:"required,oneof=mtn glo airtel 9mobile"`
}

// ContactResponse is one saved beneficiary.
type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Network   string `json:"network"`
	CreatedAt string `json:"created_at"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	Reference             string  `json:"reference"`
	Type                  string  `json:"type"`
	Amount                int64   `json:"amount"`
	Status                string  `json:"status"`
	Recipient             string  `json:"recipient,omitempty"`
	ProviderTransactionID *string `json:"provider_transaction_id,omitempty"`
	FailureReason         *string `json:"failure_reason,omitempty"`
	CreatedAt             string  `json:"created_at"`
	CompletedAt           *string `json:"completed_at,omitempty"`
	FailedAt              *string `json:"failed_at,omitempty"`
}

// TransactionListResponse wraps paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// WalletBalanceResponse is the response for balance query. Balance is
// in kobo.
type WalletBalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// WebhookAck is the body answered to webhook deliveries.
type WebhookAck struct {
	Status string `json:"status"` // processed, duplicate, ignored, noop
}
