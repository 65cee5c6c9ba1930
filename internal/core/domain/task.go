package domain

import (
	"strings"
	"time"
)

// Task is a task resource as returned by the task API.
type Task struct {
	ID          int64     `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty" table:"wide"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	OwnerID     int64     `json:"owner_id" yaml:"owner_id" table:"wide"`
}

// NewTask is the body of a task creation request.
type NewTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Validate checks the task can be submitted.
func (t NewTask) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskValidation.WithDetails("title is required")
	}
	return nil
}

// Normalize returns a copy with Completed defaulted to false.
func (t NewTask) Normalize() NewTask {
	if t.Completed == nil {
		completed := false
		t.Completed = &completed
	}
	return t
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Validate checks the patch can be submitted.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return ErrTaskValidation.WithDetails("no fields to update")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTaskValidation.WithDetails("title cannot be empty")
	}
	return nil
}
