package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          string       `json:"id" gorm:"primaryKey;size:36"`
	UserID      string       `json:"user_id" gorm:"size:36;index;not null"`
	User        User         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title       string       `json:"title" gorm:"size:200;not null"`
	Description string       `json:"description" gorm:"size:2000"`
	Completed   bool         `json:"completed"`
	Priority    TaskPriority `json:"priority" gorm:"size:10;default:medium"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return nil
}
