package task

import (
	"context"
	"log/slog"
	"time"

	"tasklist/internal/model"
)

type Service struct {
	repo   Repository
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a repository. pub may be nil when the backend publishes
// its own change notifications.
func NewService(repo Repository, pub Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		pub:    pub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.backendErr("list", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *Service) Add(ctx context.Context, text string) (model.Task, error) {
	valid, err := ValidateText(text)
	if err != nil {
		return model.Task{}, err
	}
	created, err := s.repo.Add(ctx, valid)
	if err != nil {
		return model.Task{}, s.backendErr("add", err)
	}
	s.publish(model.ChangeInsert, created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id model.ID, text string, done bool) error {
	valid, err := ValidateText(text)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, valid, done); err != nil {
		return s.backendErr("update", err)
	}
	s.publish(model.ChangeUpdate, id)
	return nil
}

func (s *Service) Delete(ctx context.Context, id model.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.backendErr("delete", err)
	}
	s.publish(model.ChangeDelete, id)
	return nil
}

func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.ClearAll(ctx); err != nil {
		return s.backendErr("clear", err)
	}
	s.publish(model.ChangeClear, "")
	return nil
}

func (s *Service) backendErr(op string, err error) error {
	s.logger.Error("backend operation failed", "op", op, "err", err)
	return &BackendError{Op: op, Err: err}
}

func (s *Service) publish(op model.ChangeOp, id model.ID) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(model.Change{Op: op, ID: id, At: s.now()})
}
