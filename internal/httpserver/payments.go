package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

const signatureHeader = "X-Signature"

var returnOutcomes = map[string]bool{"success": true, "failure": true, "cancel": true}

// paymentWebhook is called by the gateway. The raw body is verified before
// it is decoded.
func (a *api) paymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.deps.Payments.HandleWebhook(c.Request.Context(), raw, c.GetHeader(signatureHeader))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentId": p.ID, "status": p.Status})
}

func (a *api) paymentStatus(c *gin.Context) {
	p, order, ok := a.ownPayment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p, "orderNumber": order.OrderNumber})
}

// paymentReturn handles the buyer landing back from the gateway. The status
// is confirmed with the gateway rather than taken from the URL.
func (a *api) paymentReturn(c *gin.Context) {
	outcome := c.Param("outcome")
	if !returnOutcomes[outcome] {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	p, order, ok := a.ownPayment(c)
	if !ok {
		return
	}
	body := gin.H{"outcome": outcome, "orderNumber": order.OrderNumber}
	updated, err := a.deps.Payments.Reconcile(c.Request.Context(), p.ID)
	if err != nil {
		a.logger.Printf("payment: reconcile payment=%s err=%v", p.ID, err)
		body["paymentError"] = err.Error()
		updated = p
	}
	body["payment"] = updated
	c.JSON(http.StatusOK, body)
}

func (a *api) ownPayment(c *gin.Context) (*domain.Payment, *domain.Order, bool) {
	p, err := a.deps.Payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return nil, nil, false
	}
	tracked, err := a.deps.Orders.Detail(c.Request.Context(), p.OrderID)
	if err != nil {
		a.fail(c, err, nil)
		return nil, nil, false
	}
	if tracked.Order.CustomerID != customerFrom(c).ID {
		a.fail(c, domain.ErrNotFound, nil)
		return nil, nil, false
	}
	return p, &tracked.Order, true
}
