package interfaces

import "context"

// EventPublisher emits domain events after an operation commits.
// The key is the account id, used for partition routing so consumers
// see one account's events in order.
type EventPublisher interface {
	Publish(ctx context.Context, key int64, event any) error
}
