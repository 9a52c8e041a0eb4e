package models

import (
	"slices"
	"strings"
)

// ProgramLifecycle is the publication state of a program in the catalog
type ProgramLifecycle string

const (
	ProgramLifecycleActive    ProgramLifecycle = "active"
	ProgramLifecycleDraft     ProgramLifecycle = "draft"
	ProgramLifecycleCompleted ProgramLifecycle = "completed"
)

// Valid reports whether l is one of the known lifecycle values
func (l ProgramLifecycle) Valid() bool {
	switch l {
	case ProgramLifecycleActive, ProgramLifecycleDraft, ProgramLifecycleCompleted:
		return true
	}
	return false
}

// maxIDLength matches the VARCHAR(64) id columns
const maxIDLength = 64

// Program is a top-level course offering with its modules
type Program struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      ProgramLifecycle `json:"status"`
	Modules     []Module         `json:"modules,omitempty"`
}

// Module is an ordered group of videos within a program
type Module struct {
	ID        string  `json:"id"`
	ProgramID string  `json:"programId,omitempty"`
	Title     string  `json:"title"`
	Order     int     `json:"order"`
	Videos    []Video `json:"videos"`
}

// Video is a leaf lesson unit within a module
type Video struct {
	ID              string `json:"id"`
	ModuleID        string `json:"moduleId,omitempty"`
	Title           string `json:"title"`
	URL             string `json:"url,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	Order           int    `json:"order"`
}

// ProgramListItem is a program without its module tree
type ProgramListItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      ProgramLifecycle `json:"status"`
	ModuleCount int              `json:"moduleCount"`
	VideoCount  int              `json:"videoCount"`
}

// FindModule returns the module with the given id, or nil
func (p *Program) FindModule(moduleID string) *Module {
	if p == nil {
		return nil
	}
	for i := range p.Modules {
		if p.Modules[i].ID == moduleID {
			return &p.Modules[i]
		}
	}
	return nil
}

// HasVideo reports whether the module contains a video with the given id
func (m *Module) HasVideo(videoID string) bool {
	if m == nil {
		return false
	}
	return slices.ContainsFunc(m.Videos, func(v Video) bool { return v.ID == videoID })
}

// SortTree orders modules and videos by order, ties broken by id
func (p *Program) SortTree() {
	slices.SortStableFunc(p.Modules, func(a, b Module) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ID, b.ID)
	})
	for i := range p.Modules {
		slices.SortStableFunc(p.Modules[i].Videos, func(a, b Video) int {
			if a.Order != b.Order {
				return a.Order - b.Order
			}
			return strings.Compare(a.ID, b.ID)
		})
	}
}

// CreateProgramRequest represents a request to create a program
type CreateProgramRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      ProgramLifecycle `json:"status"`
}

// Validate checks the request and defaults the status to draft
func (r *CreateProgramRequest) Validate() error {
	v := &ValidationError{}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		v.Add("name is required")
	}
	if r.Status == "" {
		r.Status = ProgramLifecycleDraft
	}
	if !r.Status.Valid() {
		v.Add("status must be one of active, draft, completed")
	}
	return v.OrNil()
}

// UpdateProgramRequest represents a request to update a program (partial update)
type UpdateProgramRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *ProgramLifecycle `json:"status,omitempty"`
}

// Validate checks the provided fields
func (r *UpdateProgramRequest) Validate() error {
	v := &ValidationError{}
	if r.Name == nil && r.Description == nil && r.Status == nil {
		v.Add("at least one field must be provided")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		v.Add("name must not be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		v.Add("status must be one of active, draft, completed")
	}
	return v.OrNil()
}

// CreateModuleRequest represents a request to create a module in a program
type CreateModuleRequest struct {
	Title string `json:"title"`
	Order int    `json:"order"`
}

// Validate checks the request
func (r *CreateModuleRequest) Validate() error {
	v := &ValidationError{}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		v.Add("title is required")
	}
	if r.Order < 0 {
		v.Add("order must not be negative")
	}
	return v.OrNil()
}

// UpdateModuleRequest represents a request to update a module (partial update)
type UpdateModuleRequest struct {
	Title *string `json:"title,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// Validate checks the provided fields
func (r *UpdateModuleRequest) Validate() error {
	v := &ValidationError{}
	if r.Title == nil && r.Order == nil {
		v.Add("at least one field must be provided")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		v.Add("title must not be empty")
	}
	if r.Order != nil && *r.Order < 0 {
		v.Add("order must not be negative")
	}
	return v.OrNil()
}

// CreateVideoRequest represents a request to create a video in a module
type CreateVideoRequest struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"durationSeconds"`
	Order           int    `json:"order"`
}

// Validate checks the request
func (r *CreateVideoRequest) Validate() error {
	v := &ValidationError{}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		v.Add("title is required")
	}
	if r.Order < 0 {
		v.Add("order must not be negative")
	}
	if r.DurationSeconds < 0 {
		v.Add("durationSeconds must not be negative")
	}
	return v.OrNil()
}

// UpdateVideoRequest represents a request to update a video (partial update)
type UpdateVideoRequest struct {
	Title           *string `json:"title,omitempty"`
	URL             *string `json:"url,omitempty"`
	DurationSeconds *int    `json:"durationSeconds,omitempty"`
	Order           *int    `json:"order,omitempty"`
}

// Validate checks the provided fields
func (r *UpdateVideoRequest) Validate() error {
	v := &ValidationError{}
	if r.Title == nil && r.URL == nil && r.DurationSeconds == nil && r.Order == nil {
		v.Add("at least one field must be provided")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		v.Add("title must not be empty")
	}
	if r.Order != nil && *r.Order < 0 {
		v.Add("order must not be negative")
	}
	if r.DurationSeconds != nil && *r.DurationSeconds < 0 {
		v.Add("durationSeconds must not be negative")
	}
	return v.OrNil()
}

// ValidateID checks an identifier received from a path or the store
func ValidateID(field, id string) error {
	if id == "" {
		return &ValidationError{Fields: []string{field + " is required"}}
	}
	if len(id) > maxIDLength {
		return &ValidationError{Fields: []string{field + " is too long"}}
	}
	return nil
}
