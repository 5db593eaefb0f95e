// Package logkey holds the slog attribute keys used across the service so
// log queries stay consistent.
package logkey

const (
	TraceID = "trace_id"
	ERROR   = "error"
	UserID  = "user_id"
	OrderID = "order_id"
)
