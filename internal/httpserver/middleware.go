package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/partition"
	accountsvc "storefront/internal/service/account"
)

const (
	sessionCookie   = "session"
	principalCtxKey = "principal"
	customerCtxKey  = "customer"
)

// authenticate resolves the session token from the Authorization header or
// the session cookie. Requests with a missing or stale token continue
// anonymously.
func (a *api) authenticate(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token, _ = c.Cookie(sessionCookie)
	}
	if token == "" {
		c.Next()
		return
	}
	principal, err := a.deps.Accounts.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.Next()
		return
	}
	c.Set(principalCtxKey, principal)
	c.Next()
}

// partitionGuard ends the session of an account that crosses into the
// other namespace and sends it to its own login page.
func (a *api) partitionGuard(c *gin.Context) {
	p := principalFrom(c)
	d := partition.Decide(p != nil, p != nil && p.User.IsStaff, c.Request.URL.Path)
	if d.Action != partition.Terminate {
		c.Next()
		return
	}
	if err := a.deps.Accounts.Terminate(c.Request.Context(), p.SessionID); err != nil {
		a.logger.Printf("partition: terminate session user=%s err=%v", p.User.ID, err)
	}
	a.deps.Metrics.PartitionTerminated(d.Role)
	a.logger.Printf("partition: terminated %s session user=%s path=%s", d.Role, p.User.ID, c.Request.URL.Path)
	clearSessionCookie(c)
	c.Redirect(http.StatusFound, d.Redirect)
	c.Abort()
}

func (a *api) requireUser(c *gin.Context) {
	if principalFrom(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	c.Next()
}

// requireCustomer also loads the customer profile, creating it on first use.
func (a *api) requireCustomer(c *gin.Context) {
	p := principalFrom(c)
	if p == nil || p.User.IsStaff {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	customer, err := a.deps.Customers.Ensure(c.Request.Context(), p.User.ID)
	if err != nil {
		a.fail(c, err, nil)
		c.Abort()
		return
	}
	c.Set(customerCtxKey, customer)
	c.Next()
}

func (a *api) requireStaff(c *gin.Context) {
	p := principalFrom(c)
	if p == nil || !p.User.IsStaff {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "staff sign in required"})
		return
	}
	c.Next()
}

func principalFrom(c *gin.Context) *accountsvc.Principal {
	v, ok := c.Get(principalCtxKey)
	if !ok {
		return nil
	}
	p, _ := v.(*accountsvc.Principal)
	return p
}

func customerFrom(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil
	}
	customer, _ := v.(*domain.Customer)
	return customer
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}
