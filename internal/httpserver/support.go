package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	contactsvc "storefront/internal/service/contact"
	feedbacksvc "storefront/internal/service/feedback"
	supportsvc "storefront/internal/service/support"
)

type messageRequest struct {
	Message string `json:"message"`
}

func (a *api) myTickets(c *gin.Context) {
	page, err := a.deps.Support.ListForCustomer(c.Request.Context(), customerFrom(c).ID, pageParam(c))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) createTicket(c *gin.Context) {
	var req supportsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := a.deps.Support.Create(c.Request.Context(), customerFrom(c).ID, principalFrom(c).User.ID, req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *api) viewTicket(c *gin.Context) {
	t, err := a.deps.Support.View(c.Request.Context(), customerFrom(c).ID, c.Param("number"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *api) replyTicket(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := a.deps.Support.Reply(c.Request.Context(), customerFrom(c).ID, principalFrom(c).User.ID, c.Param("number"), req.Message)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *api) myFeedback(c *gin.Context) {
	page, err := a.deps.Feedback.ListForCustomer(c.Request.Context(), customerFrom(c).ID, pageParam(c))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) submitFeedback(c *gin.Context) {
	var req feedbacksvc.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := a.deps.Feedback.Submit(c.Request.Context(), customerFrom(c).ID, req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// submitContact accepts messages from anyone. A signed-in caller is linked
// to the message.
func (a *api) submitContact(c *gin.Context) {
	var req contactsvc.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var caller *domain.User
	if p := principalFrom(c); p != nil {
		caller = &p.User
	}
	m, err := a.deps.Contact.Submit(c.Request.Context(), caller, req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *api) myContactMessages(c *gin.Context) {
	page, err := a.deps.Contact.Mine(c.Request.Context(), principalFrom(c).User.ID, pageParam(c))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) contactThread(c *gin.Context) {
	m, err := a.deps.Contact.Thread(c.Request.Context(), principalFrom(c).User.ID, c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *api) replyContact(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := a.deps.Contact.Reply(c.Request.Context(), principalFrom(c).User, c.Param("id"), req.Message)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, r)
}
