package http

import "time"

// Request bodies. Struct tags drive go-playground/validator after echo binds the body.

type NewOrderRequest struct {
	ProProfileID      string    `json:"proProfileId"      validate:"required,uuid"`
	CategoryID        string    `json:"categoryId"        validate:"required,uuid"`
	WindowStart       time.Time `json:"windowStart"       validate:"required"`
	WindowEnd         time.Time `json:"windowEnd"         validate:"required,gtfield=WindowStart"`
	PricingMode       string    `json:"pricingMode"       validate:"required,oneof=HOURLY FIXED"`
	EstimatedHours    *string   `json:"estimatedHours"    validate:"omitempty,numeric"`
	QuotedAmountCents *int64    `json:"quotedAmountCents" validate:"omitempty,gt=0"`
}

type TransitionRequest struct {
	Target         string  `json:"target"         validate:"required"`
	ExpectedStatus string  `json:"expectedStatus" validate:"required"`
	FinalHours     *string `json:"finalHours"     validate:"omitempty,numeric"`
	ApprovedHours  *string `json:"approvedHours"  validate:"omitempty,numeric"`
	Reason         string  `json:"reason"         validate:"max=2000"`
}

type ForceStatusRequest struct {
	Target string `json:"target" validate:"required"`
	Reason string `json:"reason" validate:"required,max=2000"`
}

type CardRequest struct {
	Token           string `json:"token"`
	PaymentMethodID string `json:"paymentMethodId"`
	PayerEmail      string `json:"payerEmail"      validate:"omitempty,email"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type PaymentEventRequest struct {
	EventID         string `json:"eventId"         validate:"required,max=128"`
	Status          string `json:"status"          validate:"required"`
	Reference       string `json:"reference"       validate:"max=128"`
	AuthorizedCents *int64 `json:"authorizedCents" validate:"omitempty,gte=0"`
	CapturedCents   *int64 `json:"capturedCents"   validate:"omitempty,gte=0"`
	RefundedCents   *int64 `json:"refundedCents"   validate:"omitempty,gte=0"`
	FailureReason   string `json:"failureReason"`
}

type PayoutEventRequest struct {
	EventID       string `json:"eventId"       validate:"required,max=128"`
	Status        string `json:"status"        validate:"required"`
	FailureReason string `json:"failureReason"`
}

type NewProRequest struct {
	UserID           string `json:"userId"           validate:"omitempty,uuid"`
	DisplayName      string `json:"displayName"      validate:"required,max=120"`
	HourlyRateCents  int64  `json:"hourlyRateCents"  validate:"required,gt=0"`
	PayoutAccountRef string `json:"payoutAccountRef" validate:"max=128"`
}
