package mercadopago

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
)

// RejectedCardToken makes the in-memory provider reject the hold, so declines can
// be exercised without a sandbox account.
const RejectedCardToken = "mock-rejected"

// fakeAPI is the in-memory provider used in mock mode. It follows the real
// status flow: authorized -> approved -> refunded, authorized -> cancelled.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	currency string
	payments map[int]*payment.Response
}

func newFakeAPI(currency string) *fakeAPI {
	if currency == "" {
		currency = "BRL"
	}
	return &fakeAPI{nextID: 1000, currency: currency, payments: make(map[int]*payment.Response)}
}

func (f *fakeAPI) Create(_ context.Context, request payment.Request) (*payment.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	resp := &payment.Response{
		ID:                f.nextID,
		Status:            "authorized",
		StatusDetail:      "pending_capture",
		TransactionAmount: request.TransactionAmount,
		ExternalReference: request.ExternalReference,
		CurrencyID:        f.currency,
		DateLastUpdated:   time.Now().UTC(),
	}
	if request.Token == RejectedCardToken {
		resp.Status = "rejected"
		resp.StatusDetail = "cc_rejected_other_reason"
	}
	f.payments[resp.ID] = resp
	return clone(resp), nil
}

func (f *fakeAPI) Get(_ context.Context, id int) (*payment.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp, ok := f.payments[id]
	if !ok {
		return nil, notFound()
	}
	return clone(resp), nil
}

func (f *fakeAPI) Search(_ context.Context, request payment.SearchRequest) (*payment.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := request.Filters["external_reference"]
	result := &payment.SearchResponse{}
	for _, resp := range f.payments {
		if ref != "" && resp.ExternalReference == ref {
			result.Results = append(result.Results, *clone(resp))
		}
	}
	return result, nil
}

func (f *fakeAPI) Cancel(_ context.Context, id int) (*payment.Response, error) {
	return f.update(id, func(resp *payment.Response) error {
		if resp.Status != "authorized" && resp.Status != "pending" {
			return badRequest("payment cannot be cancelled in status " + resp.Status)
		}
		resp.Status = "cancelled"
		resp.StatusDetail = "by_collector"
		return nil
	})
}

func (f *fakeAPI) CaptureAmount(_ context.Context, id int, amount float64) (*payment.Response, error) {
	return f.update(id, func(resp *payment.Response) error {
		if resp.Status != "authorized" {
			return badRequest("payment cannot be captured in status " + resp.Status)
		}
		if amount > resp.TransactionAmount {
			return badRequest("capture amount exceeds authorized amount")
		}
		resp.Status = "approved"
		resp.StatusDetail = "accredited"
		resp.Captured = true
		resp.TransactionAmount = amount
		return nil
	})
}

// refundCreate backs the refunds side of the fake; see fakeRefunds.
func (f *fakeAPI) refundCreate(id int) (*refund.Response, error) {
	var amount float64
	_, err := f.update(id, func(resp *payment.Response) error {
		if resp.Status != "approved" {
			return badRequest("payment cannot be refunded in status " + resp.Status)
		}
		resp.Status = "refunded"
		resp.StatusDetail = "refunded"
		resp.TransactionAmountRefunded = resp.TransactionAmount
		amount = resp.TransactionAmount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &refund.Response{PaymentID: id, Amount: amount, Status: "approved"}, nil
}

func (f *fakeAPI) update(id int, mutate func(*payment.Response) error) (*payment.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp, ok := f.payments[id]
	if !ok {
		return nil, notFound()
	}
	if err := mutate(resp); err != nil {
		return nil, err
	}
	resp.DateLastUpdated = time.Now().UTC()
	return clone(resp), nil
}

// fakeRefunds adapts fakeAPI to refundsAPI; both SDK clients name their method Create.
type fakeRefunds struct {
	api *fakeAPI
}

func (r fakeRefunds) Create(_ context.Context, paymentID int) (*refund.Response, error) {
	return r.api.refundCreate(paymentID)
}

func clone(resp *payment.Response) *payment.Response {
	c := *resp
	return &c
}

func notFound() error {
	return &mperror.ResponseError{StatusCode: http.StatusNotFound, Message: "payment not found"}
}

func badRequest(msg string) error {
	return &mperror.ResponseError{StatusCode: http.StatusBadRequest, Message: strings.TrimSpace(msg)}
}
