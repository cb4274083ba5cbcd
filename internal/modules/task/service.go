package task

import (
	"context"
	"errors"

	"taskboard/internal/domain"

	"gorm.io/gorm"
)

// Service contains the per-user task CRUD logic. Ownership is enforced by
// the repository's user-scoped queries, so a wrong user simply sees "not
// found".
type Service struct {
	tasks  TaskRepositoryInterface
	events EventPublisher
}

func NewService(tasks TaskRepositoryInterface, events EventPublisher) *Service {
	return &Service{
		tasks:  tasks,
		events: events,
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateTaskRequest) (*domain.Task, error) {
	t := &domain.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish(userID, Event{Type: EventCreated, TaskID: t.ID, Task: t})
	return t, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, req UpdateTaskRequest) (*domain.Task, error) {
	t, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	if req.Priority != nil {
		t.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publish(userID, Event{Type: EventUpdated, TaskID: t.ID, Task: t})
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	affected, err := s.tasks.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	s.publish(userID, Event{Type: EventDeleted, TaskID: id})
	return nil
}

func (s *Service) publish(userID string, event Event) {
	if s.events == nil {
		return
	}
	_ = s.events.SendToUser(userID, event)
}
