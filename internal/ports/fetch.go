package ports

import "context"

type FetchRequest struct {
	URLs         []string
	Dir          string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	SkipExisting bool
}

type FetchPort interface {
	// Fetch downloads every URL into Dir and returns the local paths in
	// request order.
	Fetch(ctx context.Context, request FetchRequest) ([]string, error)
}
