package query

import "time"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of one entry. Data is the last successful value and
// survives later failures; Err is the most recent failure and is cleared by
// the next success.
type State struct {
	Status      Status
	Data        any
	HasData     bool
	Err         error
	UpdatedAt   time.Time
	Invalidated bool
}

func (state State) IsFetching() bool {
	return state.Status == StatusLoading
}

// settled is the status an entry falls back to when its flight is dropped.
func (state State) settled() Status {
	switch {
	case state.Err != nil:
		return StatusError
	case state.HasData:
		return StatusSuccess
	default:
		return StatusIdle
	}
}
