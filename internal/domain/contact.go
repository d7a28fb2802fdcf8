package domain

import "time"

type ContactMessage struct {
	ID          string         `json:"id"`
	UserID      *string        `json:"userId,omitempty"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Subject     string         `json:"subject,omitempty"`
	Message     string         `json:"message"`
	IsRead      bool           `json:"isRead"`
	CreatedAt   time.Time      `json:"createdAt"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Replies     []ContactReply `json:"replies,omitempty"`
}

type ContactReply struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contactId"`
	SenderID   *string   `json:"senderId,omitempty"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	IsAdmin    bool      `json:"isAdmin"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}
