package api

import (
	"net/url"
	"strconv"

	"github.com/phrazzld/todo-app/internal/domain"
)

// Flash texts shown after a create.
const (
	FlashTaskAdded        = "Task successfully added"
	FlashEmptyDescription = "Description cannot be empty"
)

// CreateTaskRequest is the form posted to /todo. Description is a pointer so
// an absent field can be told apart from an empty one.
type CreateTaskRequest struct {
	Description *string `validate:"required"`
}

// UpdateTaskRequest is the form posted to /todo/{id}.
type UpdateTaskRequest struct {
	ID     int32
	Method string
}

// createTaskRequestFromForm reads the first description value, if present.
func createTaskRequestFromForm(form url.Values) CreateTaskRequest {
	var req CreateTaskRequest
	if values, ok := form["description"]; ok && len(values) > 0 {
		description := values[0]
		req.Description = &description
	}
	return req
}

// parseTaskID converts a path segment into a task ID. Values that are not
// positive 32-bit integers are rejected.
func parseTaskID(raw string) (int32, error) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	id := int32(n)
	if err := domain.ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}
