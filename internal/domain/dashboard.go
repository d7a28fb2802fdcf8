package domain

// DashboardCounts are the headline numbers on the admin dashboard.
type DashboardCounts struct {
	Products         int `json:"products"`
	Customers        int `json:"customers"`
	Orders           int `json:"orders"`
	Feedback         int `json:"feedback"`
	UnreadContacts   int `json:"unreadContacts"`
	OpenTickets      int `json:"openTickets"`
	MonthlyOrders    int `json:"monthlyOrders"`
	MonthlyCustomers int `json:"monthlyCustomers"`
}

type Dashboard struct {
	Counts       DashboardCounts `json:"counts"`
	LowStock     []Product       `json:"lowStock"`
	RecentOrders []Order         `json:"recentOrders"`
}
