package notifications

import (
	"context"
	"time"
)

// CallAsync runs fn detached from the request lifecycle with its own
// deadline, so a slow push gateway never holds a response hostage.
func CallAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = fn(ctx)
	}()
}
