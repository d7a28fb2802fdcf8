package partition

import "testing"

func TestDecide(t *testing.T) {
	cases := []struct {
		name          string
		authenticated bool
		staff         bool
		path          string
		want          Decision
	}{
		{"anonymous on admin", false, false, "/admin/orders", Decision{Action: Pass}},
		{"anonymous on storefront", false, false, "/cart", Decision{Action: Pass}},
		{"customer on storefront", true, false, "/cart", Decision{Action: Pass}},
		{"customer on admin", true, false, "/admin/orders", Decision{Action: Terminate, Redirect: "/login", Role: "customer"}},
		{"customer on admin root", true, false, "/admin", Decision{Action: Terminate, Redirect: "/login", Role: "customer"}},
		{"customer on admin login", true, false, "/admin/login", Decision{Action: Pass}},
		{"customer on admin register with slash", true, false, "/admin/register/", Decision{Action: Pass}},
		{"staff on admin", true, true, "/admin/dashboard", Decision{Action: Pass}},
		{"staff on storefront", true, true, "/orders", Decision{Action: Terminate, Redirect: "/admin/login", Role: "staff"}},
		{"staff on home", true, true, "/", Decision{Action: Terminate, Redirect: "/admin/login", Role: "staff"}},
		{"staff on logout", true, true, "/logout", Decision{Action: Pass}},
		{"staff on static", true, true, "/static/css/site.css", Decision{Action: Pass}},
		{"staff on media", true, true, "/media/products/corn.jpg", Decision{Action: Pass}},
		{"staff on health", true, true, "/healthz", Decision{Action: Pass}},
		{"staff on webhook", true, true, "/payments/webhook", Decision{Action: Pass}},
		{"staff on lookalike prefix", true, true, "/administrator", Decision{Action: Terminate, Redirect: "/admin/login", Role: "staff"}},
		{"customer on lookalike prefix", true, false, "/administrator", Decision{Action: Pass}},
	}
	for _, tc := range cases {
		got := Decide(tc.authenticated, tc.staff, tc.path)
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
