package models

import "time"

// ProgressStatus is the derived completion state of a user's program
type ProgressStatus string

const (
	ProgressStatusActive    ProgressStatus = "active"
	ProgressStatusCompleted ProgressStatus = "completed"
)

// ProgramCompletion maps a module id to the ids of the videos the user completed in it
type ProgramCompletion map[string][]string

// Add inserts videoID into the module's set. It reports false when the video was already present.
func (c ProgramCompletion) Add(moduleID, videoID string) bool {
	for _, id := range c[moduleID] {
		if id == videoID {
			return false
		}
	}
	c[moduleID] = append(c[moduleID], videoID)
	return true
}

// Clone returns a deep copy of c
func (c ProgramCompletion) Clone() ProgramCompletion {
	out := make(ProgramCompletion, len(c))
	for moduleID, ids := range c {
		out[moduleID] = append([]string(nil), ids...)
	}
	return out
}

// CompletionRecord holds every video a user completed, by program
type CompletionRecord struct {
	UserID   string                       `json:"userId"`
	Programs map[string]ProgramCompletion `json:"completedVideos"`
}

// ProgramProgress is the derived progress of one user in one program
type ProgramProgress struct {
	ModuleProgress  map[string]int `json:"moduleProgress"`
	ProgramProgress int            `json:"programProgress"`
	ProgramStatus   ProgressStatus `json:"programStatus"`
}

// UserProgramProgress is a persisted ProgramProgress keyed by program, for dashboards
type UserProgramProgress struct {
	ProgramID string `json:"programId"`
	ProgramProgress
	UpdatedAt time.Time `json:"updatedAt"`
}

// VideoCompletion identifies one video completion event
type VideoCompletion struct {
	UserID    string
	ProgramID string
	ModuleID  string
	VideoID   string
}

// Validate checks that every id is present
func (c VideoCompletion) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"userId", c.UserID},
		{"programId", c.ProgramID},
		{"moduleId", c.ModuleID},
		{"videoId", c.VideoID},
	} {
		if err := ValidateID(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ProgramCompletedEvent is published when a user's program transitions to completed
type ProgramCompletedEvent struct {
	UserID      string    `json:"userId"`
	ProgramID   string    `json:"programId"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressFunc derives a program's progress from the user's completion set in it
type ProgressFunc func(completed ProgramCompletion) ProgramProgress

// ProgressUpdate is the outcome of a locked progress write
type ProgressUpdate struct {
	// PreviousStatus is empty when the user had not started the program
	PreviousStatus ProgressStatus
	Progress       ProgramProgress
	// Written is false when nothing was persisted
	Written bool
}

// Completed reports whether the write moved the program to completed
func (u ProgressUpdate) Completed() bool {
	return u.Written &&
		u.Progress.ProgramStatus == ProgressStatusCompleted &&
		u.PreviousStatus != ProgressStatusCompleted
}
