package application

import "context"

// Worker runs background refreshes on its own schedule.
// Implementations must run until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
