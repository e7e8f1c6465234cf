package test

import "context"

// PublishedEvent is one recorded Publish call.
type PublishedEvent struct {
	Topic   string
	Payload map[string]any
}

// PublisherStub records emitted events for assertions.
type PublisherStub struct {
	Events []PublishedEvent
	Err    error
}

func (s *PublisherStub) Publish(ctx context.Context, topic string, payload map[string]any) error {
	if s.Err != nil {
		return s.Err
	}
	s.Events = append(s.Events, PublishedEvent{Topic: topic, Payload: payload})
	return nil
}

// Topics lists recorded topics in order.
func (s *PublisherStub) Topics() []string {
	out := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, e.Topic)
	}
	return out
}

// Notification is one recorded Notify call.
type Notification struct {
	Recipient string
	Kind      string
	Message   string
}

// NotifierStub records notifications for assertions.
type NotifierStub struct {
	Sent []Notification
}

func (s *NotifierStub) Notify(ctx context.Context, recipient, kind, message string) {
	s.Sent = append(s.Sent, Notification{Recipient: recipient, Kind: kind, Message: message})
}
