package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/models"
)

type CreateDealRequest struct {
	InfluencerID uuid.UUID `json:"influencerId" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description" validate:"required"`
	Requirements string    `json:"requirements"`
	Deliverables string    `json:"deliverables"`
	Budget       float64   `json:"budget" validate:"required,gt=0"`
	Timeline     int       `json:"timeline" validate:"required,gt=0"`
	Niches       []string  `json:"niches"`
	ContentTypes []string  `json:"contentTypes"`
}

type UpdateDealStatusRequest struct {
	Status models.DealStatus `json:"status" validate:"required"`
}

type CreateDeliverableRequest struct {
	Description string    `json:"description" validate:"required"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

type UpdateDeliverableRequest struct {
	// Action is one of submit, approve, reject.
	Action        string `json:"action" validate:"required,oneof=submit approve reject"`
	SubmissionURL string `json:"submissionUrl"`
	Feedback      string `json:"feedback"`
}

type CreateReviewRequest struct {
	InfluencerID uuid.UUID `json:"influencerId" validate:"required"`
	Rating       float64   `json:"rating" validate:"required,gte=1,lte=5"`
	Content      string    `json:"content" validate:"required"`
}
