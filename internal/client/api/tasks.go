package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/yndnr/taskdeck-go/internal/client/transport"
	"github.com/yndnr/taskdeck-go/internal/core/domain"
)

// PathTasks is the task collection endpoint.
const PathTasks = "/tasks"

func taskPath(id int64) string {
	return PathTasks + "/" + strconv.FormatInt(id, 10)
}

// GetTasks lists the caller's tasks.
func (c *Client) GetTasks(ctx context.Context) ([]domain.Task, error) {
	resp, err := c.Do(ctx, transport.NewRequest(http.MethodGet, PathTasks))
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := resp.Decode(&tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task. A nil Completed is sent as false. The title is
// sent as given; the server owns validation.
func (c *Client) CreateTask(ctx context.Context, t domain.NewTask) (*domain.Task, error) {
	req, err := transport.NewJSONRequest(http.MethodPost, PathTasks, t.Normalize())
	if err != nil {
		return nil, err
	}
	return c.doTask(ctx, req)
}

// UpdateTask applies a partial update to task id.
func (c *Client) UpdateTask(ctx context.Context, id int64, p domain.TaskPatch) (*domain.Task, error) {
	req, err := transport.NewJSONRequest(http.MethodPut, taskPath(id), p)
	if err != nil {
		return nil, err
	}
	return c.doTask(ctx, req)
}

// DeleteTask deletes task id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, transport.NewRequest(http.MethodDelete, taskPath(id)))
	return err
}

func (c *Client) doTask(ctx context.Context, req *transport.Request) (*domain.Task, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := resp.Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}
