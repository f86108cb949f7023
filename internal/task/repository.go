package task

import (
	"context"

	"tasklist/internal/model"
)

// Repository is the persistence backend contract. Update and Delete on an
// unknown id are no-ops, not errors.
type Repository interface {
	List(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, text string) (model.Task, error)
	Update(ctx context.Context, id model.ID, text string, done bool) error
	Delete(ctx context.Context, id model.ID) error
	ClearAll(ctx context.Context) error
}

// Publisher receives a change after every successful mutation.
type Publisher interface {
	Publish(c model.Change)
}
