package http

import (
	"time"

	"booking/internal/core/application/usecases/queries"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/domain/services"
)

type OrderResponse struct {
	ID                  string           `json:"id"`
	ClientID            string           `json:"clientId"`
	ProProfileID        string           `json:"proProfileId"`
	Status              string           `json:"status"`
	PricingMode         string           `json:"pricingMode"`
	Currency            string           `json:"currency"`
	WindowStart         time.Time        `json:"windowStart"`
	WindowEnd           time.Time        `json:"windowEnd"`
	HourlyRateCents     *int64           `json:"hourlyRateCents,omitempty"`
	QuotedAmountCents   *int64           `json:"quotedAmountCents,omitempty"`
	EstimatedHours      *string          `json:"estimatedHours,omitempty"`
	FinalHoursSubmitted *string          `json:"finalHoursSubmitted,omitempty"`
	ApprovedHours       *string          `json:"approvedHours,omitempty"`
	TotalAmountCents    *int64           `json:"totalAmountCents,omitempty"`
	DisputeReason       *string          `json:"disputeReason,omitempty"`
	ChatOpen            bool             `json:"chatOpen"`
	Payment             *PaymentResponse `json:"payment,omitempty"`
	Version             int64            `json:"version"`
}

type PaymentResponse struct {
	ID              string `json:"id"`
	OrderID         string `json:"orderId,omitempty"`
	Status          string `json:"status"`
	Currency        string `json:"currency,omitempty"`
	EstimatedCents  int64  `json:"estimatedCents,omitempty"`
	AuthorizedCents int64  `json:"authorizedCents"`
	CapturedCents   int64  `json:"capturedCents"`
	RefundedCents   int64  `json:"refundedCents"`
	CheckoutURL     string `json:"checkoutUrl,omitempty"`
	FailureReason   string `json:"failureReason,omitempty"`
}

type PayoutResponse struct {
	ID                string   `json:"id"`
	ProProfileID      string   `json:"proProfileId"`
	Status            string   `json:"status"`
	AmountCents       int64    `json:"amountCents"`
	Currency          string   `json:"currency"`
	ProviderReference string   `json:"providerReference,omitempty"`
	FailureReason     string   `json:"failureReason,omitempty"`
	Attempts          int      `json:"attempts"`
	EarningIDs        []string `json:"earningIds"`
}

type ProResponse struct {
	ID               string `json:"id"`
	UserID           string `json:"userId"`
	DisplayName      string `json:"displayName"`
	Status           string `json:"status"`
	HourlyRateCents  int64  `json:"hourlyRateCents"`
	Currency         string `json:"currency"`
	SuspensionReason string `json:"suspensionReason,omitempty"`
}

type ChatStateResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Open    bool   `json:"open"`
}

type AuditEntryResponse struct {
	ID         string         `json:"id"`
	EventType  string         `json:"eventType"`
	ActorID    string         `json:"actorId"`
	ActorRole  string         `json:"actorRole"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func cents(m *kernel.Money) *int64 {
	if m == nil {
		return nil
	}
	c := m.Cents()
	return &c
}

func hours(h *kernel.Hours) *string {
	if h == nil {
		return nil
	}
	s := h.String()
	return &s
}

func orderResponse(o *order.Order) OrderResponse {
	terms := o.Terms()
	resp := OrderResponse{
		ID:                  o.ID().String(),
		ClientID:            o.ClientID().String(),
		ProProfileID:        o.ProProfileID().String(),
		Status:              o.Status().String(),
		PricingMode:         o.PricingMode().String(),
		Currency:            o.Currency(),
		WindowStart:         o.Window().Start(),
		WindowEnd:           o.Window().End(),
		HourlyRateCents:     cents(terms.HourlyRate),
		QuotedAmountCents:   cents(terms.QuotedAmount),
		EstimatedHours:      hours(terms.EstimatedHours),
		FinalHoursSubmitted: hours(o.FinalHoursSubmitted()),
		ApprovedHours:       hours(o.ApprovedHours()),
		TotalAmountCents:    cents(o.TotalAmount()),
		ChatOpen:            services.IsChatOpenStatus(o.Status()),
		Version:             o.Version(),
	}
	if d := o.Dispute(); d != nil {
		resp.DisputeReason = &d.Reason
	}
	return resp
}

func orderViewResponse(v *queries.GetOrderQueryResponse) OrderResponse {
	resp := OrderResponse{
		ID:                  v.ID.String(),
		ClientID:            v.ClientID.String(),
		ProProfileID:        v.ProProfileID.String(),
		Status:              v.Status,
		PricingMode:         v.PricingMode,
		Currency:            v.Currency,
		WindowStart:         v.WindowStart,
		WindowEnd:           v.WindowEnd,
		HourlyRateCents:     v.HourlyRateCents,
		QuotedAmountCents:   v.QuotedAmountCents,
		EstimatedHours:      v.EstimatedHours,
		FinalHoursSubmitted: v.FinalHoursSubmitted,
		ApprovedHours:       v.ApprovedHours,
		TotalAmountCents:    v.TotalAmountCents,
		DisputeReason:       v.DisputeReason,
		ChatOpen:            v.ChatOpen,
		Version:             v.Version,
	}
	if p := v.Payment; p != nil {
		resp.Payment = &PaymentResponse{
			ID:              p.ID.String(),
			Status:          p.Status,
			AuthorizedCents: p.AuthorizedCents,
			CapturedCents:   p.CapturedCents,
			RefundedCents:   p.RefundedCents,
			CheckoutURL:     p.CheckoutURL,
		}
	}
	return resp
}

func paymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID().String(),
		OrderID:         p.OrderID().String(),
		Status:          p.Status().String(),
		Currency:        p.Currency(),
		EstimatedCents:  p.AmountEstimated().Cents(),
		AuthorizedCents: p.AmountAuthorized().Cents(),
		CapturedCents:   p.AmountCaptured().Cents(),
		RefundedCents:   p.AmountRefunded().Cents(),
		CheckoutURL:     p.CheckoutURL(),
		FailureReason:   p.FailureReason(),
	}
}

func payoutResponse(p *payout.Payout) PayoutResponse {
	earnings := p.Earnings()
	ids := make([]string, 0, len(earnings))
	for _, e := range earnings {
		ids = append(ids, e.ID().String())
	}
	return PayoutResponse{
		ID:                p.ID().String(),
		ProProfileID:      p.ProProfileID().String(),
		Status:            p.Status().String(),
		AmountCents:       p.Amount().Cents(),
		Currency:          p.Currency(),
		ProviderReference: p.ProviderReference(),
		FailureReason:     p.FailureReason(),
		Attempts:          p.Attempts(),
		EarningIDs:        ids,
	}
}

func proResponse(p *proprofile.ProProfile) ProResponse {
	return ProResponse{
		ID:               p.ID().String(),
		UserID:           p.UserID().String(),
		DisplayName:      p.DisplayName(),
		Status:           p.Status().String(),
		HourlyRateCents:  p.HourlyRate().Cents(),
		Currency:         p.HourlyRate().Currency(),
		SuspensionReason: p.SuspensionReason(),
	}
}

func auditEntryResponses(entries []queries.AuditTrailEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:         e.ID.String(),
			EventType:  e.EventType,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
