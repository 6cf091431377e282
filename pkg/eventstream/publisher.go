package eventstream

import "context"

// Publisher publishes search events to an event stream backend.
type Publisher interface {
	PublishSearch(ctx context.Context, event *SearchCompletedEvent) error
	Close() error
}
