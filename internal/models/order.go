package models

import (
	"encoding/json"
	"time"
)

const OrderStatusPending = "pending"

type Order struct {
	ID        int64           `db:"id" json:"id"`
	Reference string          `db:"reference" json:"reference"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Items     json.RawMessage `db:"items" json:"items"`
	Total     float64         `db:"total" json:"total"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// OrderUser is the subset of user fields attached to an order in admin listings.
type OrderUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderWithUser joins an order with the user who placed it.
type OrderWithUser struct {
	Order
	User OrderUser `json:"user"`
}
