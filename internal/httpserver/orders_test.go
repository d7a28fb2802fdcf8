package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	paymentsvc "storefront/internal/service/payment"
)

func sampleOrders() map[string]domain.Order {
	return map[string]domain.Order{
		"o-1": {ID: "o-1", OrderNumber: "AB12CD34", CustomerID: "c-cust", Phone: "09171234567", Status: domain.StatusShipped},
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	orders := &stubOrders{placeErr: &domain.InsufficientStockError{Items: []domain.StockShortage{
		{ProductID: "p-1", ProductName: "Sweet Corn", Requested: 5, Available: 2},
	}}}
	router := newTestRouter(t, Deps{Orders: orders})

	rec := do(router, http.MethodPost, "/checkout", "customer-token", `{"deliveryMethod":"pickup","phone":"0917","paymentMethod":"cash"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"available":2`) || !strings.Contains(rec.Body.String(), `"phone":"0917"`) {
		t.Fatalf("expected shortage and echoed input, got %s", rec.Body.String())
	}
}

func TestCheckout_CreatesForSignedInCustomer(t *testing.T) {
	router := newTestRouter(t, Deps{Orders: &stubOrders{}})

	rec := do(router, http.MethodPost, "/checkout", "customer-token", `{"deliveryMethod":"pickup","phone":"0917","paymentMethod":"cash"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"customerId":"c-cust"`) {
		t.Fatalf("expected order for c-cust, got %s", rec.Body.String())
	}
}

func TestAdminCancel_InvalidTransitionNamesStatus(t *testing.T) {
	orders := &stubOrders{cancelErr: &domain.InvalidTransitionError{Current: domain.StatusDelivered, Target: domain.StatusCancelled}}
	router := newTestRouter(t, Deps{Orders: orders})

	rec := do(router, http.MethodPost, "/admin/orders/o-1/cancel", "staff-token", `{"reason":"customer request"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"currentStatus":"delivered"`) {
		t.Fatalf("expected current status in body, got %s", rec.Body.String())
	}
}

func TestAdminAdvance_UsesStaffUsername(t *testing.T) {
	router := newTestRouter(t, Deps{Orders: &stubOrders{}})

	rec := do(router, http.MethodPost, "/admin/orders/o-1/status", "staff-token", `{"status":"shipped"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"updatedBy":"admin"`) {
		t.Fatalf("expected actor admin, got %s", rec.Body.String())
	}
}

func TestPublicTrack_PhoneMismatchIsNotFound(t *testing.T) {
	router := newTestRouter(t, Deps{Orders: &stubOrders{orders: sampleOrders()}})

	rec := do(router, http.MethodGet, "/track?number=AB12CD34&phone=09999999999", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, "/track?number=AB12CD34&phone=09171234567", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrderByRef_DispatchesBucketsAndNumbers(t *testing.T) {
	orders := &stubOrders{orders: sampleOrders()}
	router := newTestRouter(t, Deps{Orders: orders})

	rec := do(router, http.MethodGet, "/orders/to_ship?page=2", "customer-token", "")
	if rec.Code != http.StatusOK || orders.lastBucket != domain.BucketToShip {
		t.Fatalf("expected to_ship history, got %d bucket=%s", rec.Code, orders.lastBucket)
	}

	rec = do(router, http.MethodGet, "/orders/AB12CD34", "customer-token", "")
	if rec.Code != http.StatusOK || orders.tracked != "AB12CD34" {
		t.Fatalf("expected order view, got %d tracked=%s", rec.Code, orders.tracked)
	}

	rec = do(router, http.MethodGet, "/orders/AB12CD34/track", "other-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected other customer to get 404, got %d", rec.Code)
	}
}

func TestPaymentWebhook_BadSignature(t *testing.T) {
	payments := &stubPayments{webhookErr: paymentsvc.ErrInvalidSignature}
	router := newTestRouter(t, Deps{Payments: payments})

	rec := do(router, http.MethodPost, "/payments/webhook", "", `{"id":"chk-1","status":"PAYMENT_SUCCESS"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPaymentWebhook_PassesSignature(t *testing.T) {
	payments := &stubPayments{}
	router := newTestRouter(t, Deps{Payments: payments})

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"id":"chk-1","status":"PAYMENT_SUCCESS"}`))
	req.Header.Set("X-Signature", "abc123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if payments.signature != "abc123" {
		t.Fatalf("expected signature to reach the service, got %q", payments.signature)
	}
}

func TestPaymentReturn_OtherCustomersPayment(t *testing.T) {
	payments := &stubPayments{payments: map[string]domain.Payment{"pay-1": {ID: "pay-1", OrderID: "o-1"}}}
	router := newTestRouter(t, Deps{Orders: &stubOrders{orders: sampleOrders()}, Payments: payments})

	rec := do(router, http.MethodGet, "/payments/pay-1/success", "other-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(payments.reconciled) != 0 {
		t.Fatalf("expected no reconcile, got %v", payments.reconciled)
	}

	rec = do(router, http.MethodGet, "/payments/pay-1/success", "customer-token", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"completed"`) {
		t.Fatalf("expected reconciled payment, got %d body=%s", rec.Code, rec.Body.String())
	}
}
