package service

import (
	"context"
	"fmt"
)

// Executor runs a SQL statement against a database backend and returns rows
// as opaque column→value mappings.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]map[string]any, error)
	TestConnection(ctx context.Context) error
	Name() string
}

// RemoteError carries a non-2xx execution service response. The handler
// forwards Status and Body verbatim: database errors are never reinterpreted.
type RemoteError struct {
	Status int
	Body   []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("execution service returned status %d: %s", e.Status, e.Body)
}
