// Package domain holds DTOs for the analysis http surface
package domain

import (
	"context"

	exdom "orderlens/internal/services/extract/domain"
)

// SubmitInput is the JSON body of a job submission
type SubmitInput struct {
	Conversation string `json:"conversation" validate:"required,notblank" example:"2024년 7월 1일 월요일\n2024년 7월 1일 오전 10:00, 김철수 : 곰탕 2개요"`
	StartDate    string `json:"start_date,omitempty" validate:"omitempty,max=32" example:"2024-07-01"`
	EndDate      string `json:"end_date,omitempty" validate:"omitempty,max=32" example:"2024-07-31"`
	ShopName     string `json:"shop_name,omitempty" validate:"omitempty,max=100" example:"우국상"`
}

// SubmitResponse carries the new job id
type SubmitResponse struct {
	JobID string `json:"job_id" example:"6f1c2a8e-3c1b-4c3a-9a43-8f0f3b8d2a11"`
}

// CSVResponse holds the three tables, each base64 encoded
type CSVResponse struct {
	TimeBased     string `json:"time_based_csv"`
	ItemBased     string `json:"item_based_csv"`
	CustomerBased string `json:"customer_based_csv"`
}

// Artifact is one stored prompt or reply
type Artifact = exdom.Artifact

// ArtifactsPort lists stored pipeline artifacts for a job
type ArtifactsPort interface {
	List(ctx context.Context, jobID string, limit int) ([]Artifact, error)
}
