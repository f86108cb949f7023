package ids

import "github.com/google/uuid"

// NewID returns a random identifier for request ids and toasts.
func NewID() string {
	return uuid.NewString()
}
