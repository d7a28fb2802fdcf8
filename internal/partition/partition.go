// Package partition keeps customer and staff sessions apart. A signed-in
// account that strays into the other side's namespace loses its session.
package partition

import "strings"

// Action is what the guard asks the HTTP layer to do with a request.
type Action int

const (
	Pass Action = iota
	Terminate
)

// Decision is the outcome for one request. Redirect is set when Action is
// Terminate.
type Decision struct {
	Action   Action
	Redirect string
	// Role names the side the terminated account belonged to.
	Role string
}

const (
	CustomerLogin = "/login"
	StaffLogin    = "/admin/login"
	WebhookPath   = "/payments/webhook"
)

var sharedPrefixes = []string{"/static/", "/media/"}

var sharedPaths = map[string]bool{
	"/login":          true,
	"/logout":         true,
	"/register":       true,
	"/admin/login":    true,
	"/admin/logout":   true,
	"/admin/register": true,
	"/healthz":        true,
	"/readyz":         true,
	"/metrics":        true,
	WebhookPath:       true,
}

// Decide applies the partition policy. It has no side effects.
func Decide(authenticated, staff bool, path string) Decision {
	if !authenticated || Shared(path) {
		return Decision{Action: Pass}
	}
	admin := IsAdminPath(path)
	switch {
	case admin && !staff:
		return Decision{Action: Terminate, Redirect: CustomerLogin, Role: "customer"}
	case !admin && staff:
		return Decision{Action: Terminate, Redirect: StaffLogin, Role: "staff"}
	}
	return Decision{Action: Pass}
}

// Shared reports whether path is reachable by every account type.
func Shared(path string) bool {
	for _, prefix := range sharedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return sharedPaths[trimSlash(path)]
}

// IsAdminPath reports whether path lies in the /admin namespace. Paths such
// as /administrator do not.
func IsAdminPath(path string) bool {
	p := trimSlash(path)
	return p == "/admin" || strings.HasPrefix(p, "/admin/")
}

func trimSlash(path string) string {
	if len(path) > 1 {
		return strings.TrimRight(path, "/")
	}
	return path
}
