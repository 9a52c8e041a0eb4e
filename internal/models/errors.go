package models

import (
	"errors"
	"strings"
)

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrModuleNotFound  = errors.New("module not found")
	ErrVideoNotFound   = errors.New("video not found")
)

// IsNotFound reports whether err marks a missing catalog entity
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProgramNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrVideoNotFound)
}

// ValidationError lists every problem found in a request
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Add records a problem
func (e *ValidationError) Add(msg string) {
	e.Fields = append(e.Fields, msg)
}

// OrNil returns e when it has recorded problems, nil otherwise
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
