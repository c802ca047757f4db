package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestPurchaseRequest struct {
	ItemID        string          `json:"item_id"`
	TransactionID string          `json:"transaction_id"`
	Price         decimal.Decimal `json:"price"`
}

type RequestPurchaseResponse struct {
	Success          bool   `json:"success"`
	ConfirmationCode string `json:"confirmation_code"`
	Message          string `json:"message"`
}

type VerifyPurchaseRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
	AdminKey         string `json:"admin_key"`
}

type VerifyPurchaseResponse struct {
	Success       bool   `json:"success"`
	ItemID        string `json:"item_id"`
	TransactionID string `json:"transaction_id"`
}

type RejectPurchaseRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
	AdminKey         string `json:"admin_key"`
}

type CheckPurchaseRequest struct {
	ItemID        string `json:"item_id"`
	TransactionID string `json:"transaction_id"`
}

// CheckPurchaseResponse carries one of three shapes: purchased with a
// confirmation timestamp, pending with the recovered confirmation code, or
// not found.
type CheckPurchaseResponse struct {
	Purchased        bool       `json:"purchased"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	Status           string     `json:"status,omitempty"`
	ConfirmationCode string     `json:"confirmation_code,omitempty"`
}

type PollApprovalResponse struct {
	Approved bool   `json:"approved"`
	Status   string `json:"status,omitempty"`
}

type TrackDownloadRequest struct {
	ItemID string `json:"item_id"`
	IsFree bool   `json:"is_free"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	URL   string `json:"url,omitempty"`
}
