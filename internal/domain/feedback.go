package domain

import "time"

type FeedbackType string

const (
	FeedbackGeneral    FeedbackType = "general"
	FeedbackProduct    FeedbackType = "product"
	FeedbackService    FeedbackType = "service"
	FeedbackWebsite    FeedbackType = "website"
	FeedbackComplaint  FeedbackType = "complaint"
	FeedbackSuggestion FeedbackType = "suggestion"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackGeneral, FeedbackProduct, FeedbackService, FeedbackWebsite, FeedbackComplaint, FeedbackSuggestion:
		return true
	}
	return false
}

type Feedback struct {
	ID            string       `json:"id"`
	CustomerID    string       `json:"customerId"`
	CustomerName  string       `json:"customerName,omitempty"`
	Type          FeedbackType `json:"type"`
	Subject       string       `json:"subject"`
	Message       string       `json:"message"`
	Rating        *int         `json:"rating,omitempty"`
	OrderID       *string      `json:"orderId,omitempty"`
	IsAnonymous   bool         `json:"isAnonymous"`
	IsPublished   bool         `json:"isPublished"`
	AdminResponse string       `json:"adminResponse,omitempty"`
	RespondedBy   *string      `json:"respondedBy,omitempty"`
	RespondedAt   *time.Time   `json:"respondedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}
