// Package dberr defines the error taxonomy shared by every layer of the
// engine: the page layer raises NoRoom, the catalog and heap layers raise
// Relation errors, and the executor wraps anything it recognizes but cannot
// carry out as an Exec error.
package dberr

import (
	"fmt"
)

// Category classifies a DBError by where in the stack it originated and how
// the executor boundary should render it.
type Category int

const (
	// NoRoom signals that a slotted page has no space for a record, either
	// because the page is full or because the record itself is too large.
	NoRoom Category = iota
	// Relation signals a schema violation: duplicate or unknown table,
	// column, or index, an attempt to drop a schema table, or a row missing
	// a required column.
	Relation
	// Exec signals SQL the executor recognizes but cannot carry out, either
	// because the grammar is not implemented or because a predicate shape is
	// rejected.
	Exec
)

func (c Category) String() string {
	switch c {
	case NoRoom:
		return "NoRoom"
	case Relation:
		return "RelationError"
	case Exec:
		return "ExecError"
	default:
		return "Error"
	}
}

// DBError is the concrete error type returned by every package in this
// module. It carries enough context to render the "Error: <class>: <detail>"
// message the executor's QueryResult promises, while still composing with
// errors.Is/errors.As via Unwrap.
type DBError struct {
	Category  Category
	Detail    string
	Component string
	Cause     error
}

// New creates a DBError with the given category and detail message.
func New(category Category, detail string) *DBError {
	return &DBError{Category: category, Detail: detail}
}

// Newf creates a DBError with a formatted detail message.
func Newf(category Category, format string, args ...any) *DBError {
	return New(category, fmt.Sprintf(format, args...))
}

// Wrap attaches component context to an existing error without discarding
// its category when the underlying error is itself a DBError. Non-DBError
// causes are wrapped as Exec errors, since by the time an arbitrary error
// reaches the executor boundary there is nowhere else to classify it.
func Wrap(err error, component string) *DBError {
	if err == nil {
		return nil
	}
	if dbErr, ok := err.(*DBError); ok {
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}
	return &DBError{
		Category:  Exec,
		Detail:    err.Error(),
		Component: component,
		Cause:     err,
	}
}

// Error implements the error interface. Its shape matches spec §7:
// "<class>: <detail>", optionally suffixed with the component and cause.
func (e *DBError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Category, e.Detail)
	if e.Component != "" {
		msg += fmt.Sprintf(" (in %s)", e.Component)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is reports whether err carries the given category, so callers can branch
// on "was this a NoRoom condition" without a type assertion.
func Is(err error, category Category) bool {
	dbErr, ok := err.(*DBError)
	return ok && dbErr.Category == category
}
