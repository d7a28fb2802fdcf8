package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountsvc "storefront/internal/service/account"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *api) register(c *gin.Context) {
	var req accountsvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, customer, err := a.deps.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		req.Password = ""
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "customer": customer})
}

func (a *api) registerStaff(c *gin.Context) {
	if !a.deps.StaffSignup {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff registration is closed; ask an administrator for an account"})
		return
	}
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
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// login signs in to one namespace. Customer accounts cannot use the staff
// login and the reverse.
func (a *api) login(staff bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if p := principalFrom(c); p != nil {
			_ = a.deps.Accounts.Terminate(c.Request.Context(), p.SessionID)
		}
		res, err := a.deps.Accounts.Login(c.Request.Context(), req.Username, req.Password, staff)
		if err != nil {
			a.fail(c, err, gin.H{"username": req.Username})
			return
		}
		maxAge := int(a.deps.Accounts.SessionTTL().Seconds())
		c.SetCookie(sessionCookie, res.Token, maxAge, "/", "", false, true)
		c.JSON(http.StatusOK, res)
	}
}

func (a *api) logout(c *gin.Context) {
	if p := principalFrom(c); p != nil {
		if err := a.deps.Accounts.Terminate(c.Request.Context(), p.SessionID); err != nil {
			a.fail(c, err, nil)
			return
		}
	}
	clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// account returns the signed-in user, plus the customer profile on the
// storefront side.
func (a *api) account(c *gin.Context) {
	p := principalFrom(c)
	body := gin.H{"user": p.User}
	if customer := customerFrom(c); customer != nil {
		body["customer"] = customer
	}
	c.JSON(http.StatusOK, body)
}
