package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard/internal/database"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) SendToUser(userID string, message interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, message.(Event))
	return true
}

func setupService(t *testing.T) (*Service, *recordingPublisher, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}, &domain.Task{}))

	pub := &recordingPublisher{}
	return NewService(repository.NewTaskRepository(db), pub), pub, db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestTaskService_CreateAndGet(t *testing.T) {
	svc, pub, db := setupService(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@b.com")

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	created, err := svc.Create(ctx, user.ID, CreateTaskRequest{
		Title:    "Write report",
		Priority: "high",
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	assert.False(t, created.Completed)

	got, err := svc.Get(ctx, created.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventCreated, pub.events[0].Type)
}

func TestTaskService_DefaultPriority(t *testing.T) {
	svc, _, db := setupService(t)
	user := seedUser(t, db, "a@b.com")

	created, err := svc.Create(context.Background(), user.ID, CreateTaskRequest{Title: "No priority given"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
}

func TestTaskService_Update(t *testing.T) {
	svc, pub, db := setupService(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@b.com")

	created, err := svc.Create(ctx, user.ID, CreateTaskRequest{Title: "Initial"})
	require.NoError(t, err)

	title := "Renamed"
	done := true
	updated, err := svc.Update(ctx, created.ID, user.ID, UpdateTaskRequest{Title: &title, Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.Completed)

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventUpdated, pub.events[1].Type)
}

func TestTaskService_CrossUserIsolation(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@b.com")
	intruder := seedUser(t, db, "intruder@b.com")

	created, err := svc.Create(ctx, owner.ID, CreateTaskRequest{Title: "Private"})
	require.NoError(t, err)

	// another user's task is indistinguishable from a missing one
	_, err = svc.Get(ctx, created.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	title := "Hijacked"
	_, err = svc.Update(ctx, created.ID, intruder.ID, UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = svc.Delete(ctx, created.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// still intact for the owner
	got, err := svc.Get(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)
}

func TestTaskService_ListOrderedNewestFirst(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@b.com")

	first := &domain.Task{UserID: user.ID, Title: "first", CreatedAt: time.Now().Add(-time.Hour)}
	second := &domain.Task{UserID: user.ID, Title: "second", CreatedAt: time.Now()}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	tasks, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)
	assert.Equal(t, "first", tasks[1].Title)
}

func TestTaskService_Delete(t *testing.T) {
	svc, pub, db := setupService(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@b.com")

	created, err := svc.Create(ctx, user.ID, CreateTaskRequest{Title: "To delete"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, user.ID))

	_, err = svc.Get(ctx, created.ID, user.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// deleting twice reports not found
	assert.ErrorIs(t, svc.Delete(ctx, created.ID, user.ID), ErrTaskNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventDeleted, pub.events[1].Type)
	assert.Equal(t, created.ID, pub.events[1].TaskID)
}
