package commands

import (
	"context"
	"time"
)

// DefaultCommandTimeout bounds a single page command.
const DefaultCommandTimeout = 10 * time.Second

// commandContext derives the execution context of one command. A nil parent
// is treated as background; a non-positive timeout leaves the parent's
// deadline in charge.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
