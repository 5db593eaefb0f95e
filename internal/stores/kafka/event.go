package kafka

import "time"

const TopicOrderCreated = `order-service.order-created`

// OrderCreatedEvent is published after a checkout commits.
type OrderCreatedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
