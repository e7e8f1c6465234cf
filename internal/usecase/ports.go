package usecase

import "context"

// Publisher delivers lifecycle events to the surrounding system with
// at-least-once semantics. Publish failures never roll back the state
// transition that produced the event.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload map[string]any) error
}

// Notifier is fire-and-forget delivery of human-facing notifications.
// Failures are logged by implementations and never surface to callers.
type Notifier interface {
	Notify(ctx context.Context, recipient, kind, message string)
}

// Lifecycle event topics.
const (
	TopicQuotationApproved    = "quotation.mutually_approved"
	TopicSaleOverrideRequired = "sale.override_required"
	TopicSaleCleared          = "sale.cleared"
	TopicOrderCompleted       = "order.completed"
	TopicOrderCancelled       = "order.cancelled"
	TopicOrderRefunded        = "order.refunded"
	topicFulfilmentPrefix     = "fulfilment."
)
