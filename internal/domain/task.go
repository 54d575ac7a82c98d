package domain

import "fmt"

// Task is a single to-do item. ID is assigned by the store on insert and
// never changes; Description is fixed at creation; Completed flips on toggle.
type Task struct {
	ID          int32  `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// NewTask holds the fields supplied when creating a task.
// Completed always starts false, so it is not part of the input.
type NewTask struct {
	Description string `json:"description"`
}

// ValidateDescription reports whether description may be persisted.
// Only the empty string is rejected; whitespace is kept as typed.
func ValidateDescription(description string) error {
	if description == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDescription)
	}
	return nil
}

// NewTaskFromDescription validates description and returns the insert payload.
func NewTaskFromDescription(description string) (NewTask, error) {
	if err := ValidateDescription(description); err != nil {
		return NewTask{}, err
	}
	return NewTask{Description: description}, nil
}

// ValidateID checks that id could have been assigned by the store.
func ValidateID(id int32) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}
