package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when checking out a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartChanged is returned when cart lines disappear while an order is
	// being created from them.
	ErrCartChanged = errors.New("cart changed during checkout")
	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports bad caller input. Fields maps input names to
// problems; the HTTP layer echoes the original input alongside it.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}

func (e *ValidationError) Add(field, problem string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = problem
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, problem := range e.Fields {
		parts = append(parts, field+": "+problem)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StockShortage is one cart line that asks for more than is in stock.
type StockShortage struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func (s StockShortage) String() string {
	return fmt.Sprintf("%s: Only %d in stock, but you ordered %d.", s.ProductName, s.Available, s.Requested)
}

// InsufficientStockError lists every line that failed the stock check.
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	lines := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		lines = append(lines, item.String())
	}
	return "insufficient stock: " + strings.Join(lines, " ")
}

// InvalidTransitionError names the status that blocked a transition.
type InvalidTransitionError struct {
	Current OrderStatus
	Target  OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.Current, e.Target)
}
