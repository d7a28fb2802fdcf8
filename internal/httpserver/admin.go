package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountsvc "storefront/internal/service/account"
	customersvc "storefront/internal/service/customer"
	feedbacksvc "storefront/internal/service/feedback"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	supportsvc "storefront/internal/service/support"
)

func (a *api) dashboard(c *gin.Context) {
	d, err := a.deps.Dashboard.Build(c.Request.Context())
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *api) adminOrders(c *gin.Context) {
	page, err := a.deps.Orders.List(c.Request.Context(), c.Query("status"), pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"status": c.Query("status")})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminOrderDetail(c *gin.Context) {
	tracked, err := a.deps.Orders.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, tracked)
}

func (a *api) adminAdvanceOrder(c *gin.Context) {
	var req ordersvc.AdvanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := a.deps.Orders.AdvanceStatus(c.Request.Context(), c.Param("id"), req, principalFrom(c).User.Username)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, event)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (a *api) adminCancelOrder(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	event, err := a.deps.Orders.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason, principalFrom(c).User.Username)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (a *api) adminProducts(c *gin.Context) {
	a.listProducts(c)
}

func (a *api) adminCreateProduct(c *gin.Context) {
	var req productsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.deps.Products.Create(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (a *api) adminProductDetail(c *gin.Context) {
	p, err := a.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) adminUpdateProduct(c *gin.Context) {
	var req productsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.deps.Products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, p)
}

type stockRequest struct {
	StockQuantity int `json:"stockQuantity"`
}

func (a *api) adminSetStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.deps.Products.SetStock(c.Request.Context(), c.Param("id"), req.StockQuantity)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) adminCustomers(c *gin.Context) {
	page, err := a.deps.Customers.List(c.Request.Context(), c.Query("q"), pageParam(c))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminCustomerDetail(c *gin.Context) {
	d, err := a.deps.Customers.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *api) adminUpdateCustomer(c *gin.Context) {
	var req customersvc.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	customer, err := a.deps.Customers.UpdateContact(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (a *api) adminStaff(c *gin.Context) {
	staff, err := a.deps.Accounts.ListStaff(c.Request.Context())
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

func (a *api) adminCreateStaff(c *gin.Context) {
	var req accountsvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := a.deps.Accounts.CreateStaff(c.Request.Context(), req)
	if err != nil {
		req.Password = ""
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *api) adminTickets(c *gin.Context) {
	d, err := a.deps.Support.Dashboard(c.Request.Context(), c.Query("status"), c.Query("priority"), pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"status": c.Query("status"), "priority": c.Query("priority")})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *api) adminTicketDetail(c *gin.Context) {
	t, err := a.deps.Support.Detail(c.Request.Context(), c.Param("number"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, t)
}

type staffMessageRequest struct {
	Message    string `json:"message"`
	IsInternal bool   `json:"isInternal"`
}

func (a *api) adminReplyTicket(c *gin.Context) {
	var req staffMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := a.deps.Support.StaffReply(c.Request.Context(), principalFrom(c).User.ID, c.Param("number"), req.Message, req.IsInternal)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *api) adminUpdateTicket(c *gin.Context) {
	var req supportsvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := a.deps.Support.Update(c.Request.Context(), c.Param("number"), req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *api) adminFeedback(c *gin.Context) {
	page, err := a.deps.Feedback.List(c.Request.Context(), c.Query("type"), c.Query("rating"), pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"type": c.Query("type"), "rating": c.Query("rating")})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminRespondFeedback(c *gin.Context) {
	var req feedbacksvc.RespondInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := a.deps.Feedback.Respond(c.Request.Context(), c.Param("id"), principalFrom(c).User.ID, req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (a *api) adminInbox(c *gin.Context) {
	page, err := a.deps.Contact.Inbox(c.Request.Context(), c.Query("filter"), pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"filter": c.Query("filter")})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminContactThread(c *gin.Context) {
	m, err := a.deps.Contact.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *api) adminReplyContact(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := a.deps.Contact.StaffReply(c.Request.Context(), principalFrom(c).User, c.Param("id"), req.Message)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (a *api) adminMarkContactRead(c *gin.Context) {
	if err := a.deps.Contact.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}
