package models

import "time"

type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncSkipped SyncStatus = "skipped"
	SyncError   SyncStatus = "error"
)

type SyncSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type SyncDetail struct {
	BookingRef string     `json:"bookingRef"`
	Status     SyncStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
}

// SyncReport is the outcome of one batch sync run.
type SyncReport struct {
	RunID      string       `json:"runId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Summary    SyncSummary  `json:"summary"`
	Details    []SyncDetail `json:"details"`
}

// Add records one item outcome and updates the summary.
func (r *SyncReport) Add(detail SyncDetail) {
	r.Details = append(r.Details, detail)
	r.Summary.Total++
	switch detail.Status {
	case SyncSuccess:
		r.Summary.Success++
	case SyncSkipped:
		r.Summary.Skipped++
	case SyncError:
		r.Summary.Failed++
	}
}
