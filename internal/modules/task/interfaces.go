package task

import (
	"context"

	"taskboard/internal/domain"
)

// TaskRepositoryInterface — only the methods the task service uses
type TaskRepositoryInterface interface {
	Create(ctx context.Context, t *domain.Task) error
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id, userID string) (int64, error)
}

// EventPublisher pushes task change events to a user's live connections.
type EventPublisher interface {
	SendToUser(userID string, message interface{}) bool
}
