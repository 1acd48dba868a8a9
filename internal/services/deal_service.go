package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/models"
)

var (
	ErrDealNotFound          = errors.New("deal not found")
	ErrCollaborationNotFound = errors.New("collaboration not found")
	ErrDeliverableNotFound   = errors.New("deliverable not found")
	ErrInfluencerNotFound    = errors.New("influencer not found")
	ErrNotDealParticipant    = errors.New("not a participant of this deal")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrReviewExists          = errors.New("review already exists for this influencer")
	ErrReviewNotAllowed      = errors.New("review requires a completed collaboration")
	ErrSubmissionRequired    = errors.New("submission url is required")
)

// DealService drives the deal -> collaboration -> deliverable pipeline.
type DealService struct {
	db *gorm.DB
}

func NewDealService(db *gorm.DB) *DealService {
	return &DealService{db: db}
}

// Propose creates a PENDING deal from the caller's brand to an influencer,
// with tag reconciliation and a proposal notification, in one transaction.
func (s *DealService) Propose(brandUserID uuid.UUID, req *dto.CreateDealRequest) (*models.Deal, error) {
	brand, err := s.brandOf(brandUserID)
	if err != nil {
		return nil, err
	}

	var influencer models.Influencer
	if err := s.db.First(&influencer, "id = ?", req.InfluencerID).Error; err != nil {
		return nil, ErrInfluencerNotFound
	}

	deal := models.Deal{
		BrandID:      brand.ID,
		InfluencerID: influencer.ID,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Deliverables: req.Deliverables,
		Budget:       req.Budget,
		Timeline:     req.Timeline,
		Status:       models.DealPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		niches, err := reconcileNiches(tx, req.Niches)
		if err != nil {
			return err
		}
		contentTypes, err := reconcileContentTypes(tx, req.ContentTypes)
		if err != nil {
			return err
		}

		if err := tx.Create(&deal).Error; err != nil {
			return err
		}
		if len(niches) > 0 {
			if err := tx.Model(&deal).Association("Niches").Append(niches); err != nil {
				return err
			}
		}
		if len(contentTypes) > 0 {
			if err := tx.Model(&deal).Association("ContentTypes").Append(contentTypes); err != nil {
				return err
			}
		}

		notification := models.Notification{
			UserID:  influencer.UserID,
			Type:    models.NotificationDealProposal,
			Title:   "New deal proposal",
			Content: fmt.Sprintf("%s proposed a deal: %s", brand.CompanyName, deal.Title),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, err
	}

	return &deal, nil
}

// List returns the deals where the caller is the brand or influencer side.
func (s *DealService) List(userID uuid.UUID) ([]models.Deal, error) {
	var deals []models.Deal

	if brand, err := s.brandOf(userID); err == nil {
		err := s.db.Preload("Niches").Preload("ContentTypes").
			Where("brand_id = ?", brand.ID).
			Order("created_at DESC").
			Find(&deals).Error
		return deals, err
	}

	influencer, err := s.influencerOf(userID)
	if err != nil {
		return nil, err
	}
	err = s.db.Preload("Niches").Preload("ContentTypes").
		Where("influencer_id = ?", influencer.ID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// UpdateStatus applies one pipeline transition. The influencer side may
// accept or reject a pending deal; the brand side may cancel one.
// Acceptance atomically creates the collaboration.
func (s *DealService) UpdateStatus(userID, dealID uuid.UUID, status models.DealStatus) (*models.Deal, error) {
	var deal models.Deal
	if err := s.db.First(&deal, "id = ?", dealID).Error; err != nil {
		return nil, ErrDealNotFound
	}

	isBrand := false
	if brand, err := s.brandOf(userID); err == nil && brand.ID == deal.BrandID {
		isBrand = true
	} else if influencer, err := s.influencerOf(userID); err != nil || influencer.ID != deal.InfluencerID {
		return nil, ErrNotDealParticipant
	}

	if deal.Status != models.DealPending {
		return nil, ErrInvalidTransition
	}

	switch status {
	case models.DealAccepted, models.DealRejected:
		if isBrand {
			return nil, ErrInvalidTransition
		}
	case models.DealCancelled:
		if !isBrand {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, ErrInvalidTransition
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&deal).Update("status", status).Error; err != nil {
			return err
		}

		if status != models.DealAccepted {
			return nil
		}

		start := time.Now()
		end := start.AddDate(0, 0, deal.Timeline)
		collaboration := models.Collaboration{
			DealID:        deal.ID,
			BrandID:       deal.BrandID,
			InfluencerID:  deal.InfluencerID,
			StartDate:     start,
			EndDate:       &end,
			Status:        models.CollaborationInProgress,
			PaymentStatus: models.PaymentPending,
		}
		if err := tx.Create(&collaboration).Error; err != nil {
			return err
		}

		var brand models.Brand
		if err := tx.First(&brand, "id = ?", deal.BrandID).Error; err != nil {
			return err
		}
		notification := models.Notification{
			UserID:  brand.UserID,
			Type:    models.NotificationSystem,
			Title:   "Deal accepted",
			Content: fmt.Sprintf("Your deal %q was accepted", deal.Title),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, err
	}

	deal.Status = status
	return &deal, nil
}

// ListCollaborations returns the caller's collaborations on either side.
func (s *DealService) ListCollaborations(userID uuid.UUID) ([]models.Collaboration, error) {
	var collaborations []models.Collaboration

	if brand, err := s.brandOf(userID); err == nil {
		err := s.db.Where("brand_id = ?", brand.ID).
			Order("created_at DESC").Find(&collaborations).Error
		return collaborations, err
	}

	influencer, err := s.influencerOf(userID)
	if err != nil {
		return nil, err
	}
	err = s.db.Where("influencer_id = ?", influencer.ID).
		Order("created_at DESC").Find(&collaborations).Error
	return collaborations, err
}

// CompleteCollaboration marks a collaboration (and its deal) finished.
// Brand side only; cancellation follows the same path with CANCELLED.
func (s *DealService) CompleteCollaboration(userID, collaborationID uuid.UUID, status models.CollaborationStatus) (*models.Collaboration, error) {
	if status != models.CollaborationCompleted && status != models.CollaborationCancelled {
		return nil, ErrInvalidTransition
	}

	brand, err := s.brandOf(userID)
	if err != nil {
		return nil, err
	}

	var collaboration models.Collaboration
	if err := s.db.First(&collaboration, "id = ?", collaborationID).Error; err != nil {
		return nil, ErrCollaborationNotFound
	}
	if collaboration.BrandID != brand.ID {
		return nil, ErrNotDealParticipant
	}
	if collaboration.Status != models.CollaborationInProgress {
		return nil, ErrInvalidTransition
	}

	dealStatus := models.DealCompleted
	if status == models.CollaborationCancelled {
		dealStatus = models.DealCancelled
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&collaboration).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&models.Deal{}).
			Where("id = ?", collaboration.DealID).
			Update("status", dealStatus).Error
	})
	if err != nil {
		return nil, err
	}

	collaboration.Status = status
	return &collaboration, nil
}

// AddDeliverable schedules a deliverable on a collaboration (brand side).
func (s *DealService) AddDeliverable(userID, collaborationID uuid.UUID, req *dto.CreateDeliverableRequest) (*models.Deliverable, error) {
	brand, err := s.brandOf(userID)
	if err != nil {
		return nil, err
	}

	var collaboration models.Collaboration
	if err := s.db.First(&collaboration, "id = ?", collaborationID).Error; err != nil {
		return nil, ErrCollaborationNotFound
	}
	if collaboration.BrandID != brand.ID {
		return nil, ErrNotDealParticipant
	}

	deliverable := models.Deliverable{
		CollaborationID: collaboration.ID,
		Description:     req.Description,
		DueDate:         req.DueDate,
		Status:          models.DeliverablePending,
	}
	if err := s.db.Create(&deliverable).Error; err != nil {
		return nil, err
	}
	return &deliverable, nil
}

// UpdateDeliverable moves a deliverable through its states: the influencer
// submits, the brand approves or rejects with feedback.
func (s *DealService) UpdateDeliverable(userID, deliverableID uuid.UUID, req *dto.UpdateDeliverableRequest) (*models.Deliverable, error) {
	var deliverable models.Deliverable
	if err := s.db.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
		return nil, ErrDeliverableNotFound
	}

	var collaboration models.Collaboration
	if err := s.db.First(&collaboration, "id = ?", deliverable.CollaborationID).Error; err != nil {
		return nil, ErrCollaborationNotFound
	}

	switch req.Action {
	case "submit":
		influencer, err := s.influencerOf(userID)
		if err != nil || influencer.ID != collaboration.InfluencerID {
			return nil, ErrNotDealParticipant
		}
		if deliverable.Status != models.DeliverablePending && deliverable.Status != models.DeliverableRejected {
			return nil, ErrInvalidTransition
		}
		if req.SubmissionURL == "" {
			return nil, ErrSubmissionRequired
		}
		err = s.db.Model(&deliverable).Updates(map[string]interface{}{
			"status":         models.DeliverableSubmitted,
			"submission_url": req.SubmissionURL,
		}).Error
		if err != nil {
			return nil, err
		}

	case "approve", "reject":
		brand, err := s.brandOf(userID)
		if err != nil || brand.ID != collaboration.BrandID {
			return nil, ErrNotDealParticipant
		}
		if deliverable.Status != models.DeliverableSubmitted {
			return nil, ErrInvalidTransition
		}
		status := models.DeliverableApproved
		if req.Action == "reject" {
			status = models.DeliverableRejected
		}
		err = s.db.Model(&deliverable).Updates(map[string]interface{}{
			"status":   status,
			"feedback": req.Feedback,
		}).Error
		if err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidTransition
	}

	err := s.db.First(&deliverable, "id = ?", deliverable.ID).Error
	return &deliverable, err
}

// Review lets a brand rate an influencer after a completed collaboration.
// The influencer's aggregate rating moves in the same transaction.
func (s *DealService) Review(brandUserID uuid.UUID, req *dto.CreateReviewRequest) (*models.Review, error) {
	brand, err := s.brandOf(brandUserID)
	if err != nil {
		return nil, err
	}

	var influencer models.Influencer
	if err := s.db.First(&influencer, "id = ?", req.InfluencerID).Error; err != nil {
		return nil, ErrInfluencerNotFound
	}

	var completed int64
	s.db.Model(&models.Collaboration{}).
		Where("brand_id = ? AND influencer_id = ? AND status = ?",
			brand.ID, influencer.ID, models.CollaborationCompleted).
		Count(&completed)
	if completed == 0 {
		return nil, ErrReviewNotAllowed
	}

	var existing models.Review
	if err := s.db.Where("brand_id = ? AND influencer_id = ?", brand.ID, influencer.ID).
		First(&existing).Error; err == nil {
		return nil, ErrReviewExists
	}

	review := models.Review{
		BrandID:      brand.ID,
		InfluencerID: influencer.ID,
		Rating:       req.Rating,
		Content:      req.Content,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		newCount := influencer.RatingCount + 1
		newRating := (influencer.Rating*float64(influencer.RatingCount) + req.Rating) / float64(newCount)
		return tx.Model(&influencer).Updates(map[string]interface{}{
			"rating":       newRating,
			"rating_count": newCount,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// ListReviews returns the reviews received by an influencer.
func (s *DealService) ListReviews(influencerID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("influencer_id = ?", influencerID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *DealService) brandOf(userID uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := s.db.Where("user_id = ?", userID).First(&brand).Error; err != nil {
		return nil, ErrRoleMismatch
	}
	return &brand, nil
}

func (s *DealService) influencerOf(userID uuid.UUID) (*models.Influencer, error) {
	var influencer models.Influencer
	if err := s.db.Where("user_id = ?", userID).First(&influencer).Error; err != nil {
		return nil, ErrRoleMismatch
	}
	return &influencer, nil
}
