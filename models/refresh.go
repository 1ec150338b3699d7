package models

import "time"

// RefreshPhase tags the variant held by a RefreshState.
type RefreshPhase string

const (
	RefreshIdle      RefreshPhase = "idle"
	RefreshPending   RefreshPhase = "pending"
	RefreshCompleted RefreshPhase = "completed"
	RefreshError     RefreshPhase = "error"
)

// RefreshState is the UI-facing status of the latest refresh attempt.
// At and FromCache are only meaningful when Phase is RefreshCompleted,
// Detail only when Phase is RefreshError.
type RefreshState struct {
	Phase     RefreshPhase `json:"phase"`
	At        time.Time    `json:"at,omitzero"`
	FromCache bool         `json:"fromCache,omitempty"`
	Detail    string       `json:"detail,omitempty"`
}

// PendingState marks a refresh in flight.
func PendingState() RefreshState {
	return RefreshState{Phase: RefreshPending}
}

// CompletedState marks a successful refresh.
func CompletedState(at time.Time, fromCache bool) RefreshState {
	return RefreshState{Phase: RefreshCompleted, At: at, FromCache: fromCache}
}

// ErrorState marks a failed refresh.
func ErrorState(err error) RefreshState {
	return RefreshState{Phase: RefreshError, Detail: err.Error()}
}

// String renders the state the way the status bar shows it.
func (r RefreshState) String() string {
	switch r.Phase {
	case RefreshPending:
		return "Loading..."
	case RefreshCompleted:
		src := "network"
		if r.FromCache {
			src = "cache"
		}
		return "Updated " + r.At.Local().Format("15:04:05") + " from " + src
	case RefreshError:
		return "Error: " + r.Detail
	}
	return "Waiting"
}

// DashboardStatus is the read-only view published by the dashboard loop.
type DashboardStatus struct {
	Locale     string           `json:"locale"`
	Refresh    RefreshState     `json:"refresh"`
	Counts     map[Category]int `json:"counts"`
	CacheError string           `json:"cacheError,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt,omitzero"`
}
