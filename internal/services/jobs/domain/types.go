// Package domain defines the core types and interfaces for the jobs service
package domain

import (
	"time"

	"orderlens/internal/core/order"
)

// Status is the lifecycle state of an analysis job
type Status string

// Job states; completed and failed are terminal
const (
	StatusProcessing Status = "processing"
	StatusAnalyzing  Status = "analyzing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// Submission is what a caller hands in
type Submission struct {
	Conversation string
	StartDate    string
	EndDate      string
	ShopName     string
	FileName     string // set for uploads
}

// Job is the stored record
type Job struct {
	ID                 string        `json:"job_id"`
	Status             Status        `json:"status"`
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         *time.Time    `json:"finished_at,omitempty"`
	ShopName           string        `json:"shop_name,omitempty"`
	StartDate          string        `json:"start_date,omitempty"`
	EndDate            string        `json:"end_date,omitempty"`
	FileName           string        `json:"file_name,omitempty"`
	ConversationLength int           `json:"conversation_length"`
	Result             *order.Result `json:"result,omitempty"`
	Error              string        `json:"error,omitempty"`
}

// Summary is the list view of a job
type Summary struct {
	ID                 string    `json:"job_id"`
	Status             Status    `json:"status"`
	StartedAt          time.Time `json:"started_at"`
	ShopName           string    `json:"shop_name,omitempty"`
	StartDate          string    `json:"start_date,omitempty"`
	EndDate            string    `json:"end_date,omitempty"`
	FileName           string    `json:"file_name,omitempty"`
	ConversationLength int       `json:"conversation_length"`
	HasResult          bool      `json:"has_result"`
}

// Summarize drops the payload
func (j Job) Summarize() Summary {
	return Summary{
		ID:                 j.ID,
		Status:             j.Status,
		StartedAt:          j.StartedAt,
		ShopName:           j.ShopName,
		StartDate:          j.StartDate,
		EndDate:            j.EndDate,
		FileName:           j.FileName,
		ConversationLength: j.ConversationLength,
		HasResult:          j.Result != nil,
	}
}
