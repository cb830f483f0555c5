package errors

import "fmt"

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when a write collides with existing state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrConnection is returned when a Shopify store cannot be reached with the
// given credentials. Surfaced at store create/update time; never retried.
type ErrConnection struct {
	Domain string
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("could not connect to shopify store: %s", e.Domain)
}

// IsNotFound reports whether err is an *ErrNotFound
func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}
