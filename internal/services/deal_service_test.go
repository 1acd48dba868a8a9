package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/models"
)

type dealFixture struct {
	db             *gorm.DB
	svc            *DealService
	brandUser      *models.User
	influencerUser *models.User
	brand          *models.Brand
	influencer     *models.Influencer
}

func newDealFixture(t *testing.T) *dealFixture {
	t.Helper()
	db := setupTestDB(t)

	brandUser := seedUser(t, db, "brand@example.com", models.RoleBrand)
	influencerUser := seedUser(t, db, "inf@example.com", models.RoleInfluencer)

	brand := models.Brand{UserID: brandUser.ID, CompanyName: "Acme", Industry: "Tech"}
	if err := db.Create(&brand).Error; err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	influencer := models.Influencer{UserID: influencerUser.ID, FirstName: "Jo", LastName: "Doe"}
	if err := db.Create(&influencer).Error; err != nil {
		t.Fatalf("seed influencer: %v", err)
	}

	return &dealFixture{
		db: db, svc: NewDealService(db),
		brandUser: brandUser, influencerUser: influencerUser,
		brand: &brand, influencer: &influencer,
	}
}

func (f *dealFixture) propose(t *testing.T) *models.Deal {
	t.Helper()
	deal, err := f.svc.Propose(f.brandUser.ID, &dto.CreateDealRequest{
		InfluencerID: f.influencer.ID,
		Title:        "Summer campaign",
		Description:  "Three posts",
		Budget:       1500,
		Timeline:     30,
		Niches:       []string{"Fashion"},
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	return deal
}

func TestProposeCreatesPendingDealAndNotification(t *testing.T) {
	f := newDealFixture(t)
	deal := f.propose(t)

	if deal.Status != models.DealPending {
		t.Fatalf("status = %s, want PENDING", deal.Status)
	}

	var notification models.Notification
	if err := f.db.Where("user_id = ? AND type = ?", f.influencerUser.ID, models.NotificationDealProposal).
		First(&notification).Error; err != nil {
		t.Fatalf("proposal notification missing: %v", err)
	}
}

func TestProposeRequiresBrandProfile(t *testing.T) {
	f := newDealFixture(t)

	_, err := f.svc.Propose(f.influencerUser.ID, &dto.CreateDealRequest{
		InfluencerID: f.influencer.ID, Title: "x", Description: "y", Budget: 1, Timeline: 1,
	})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestAcceptCreatesCollaboration(t *testing.T) {
	f := newDealFixture(t)
	deal := f.propose(t)

	updated, err := f.svc.UpdateStatus(f.influencerUser.ID, deal.ID, models.DealAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if updated.Status != models.DealAccepted {
		t.Fatalf("status = %s, want ACCEPTED", updated.Status)
	}

	var collaborations []models.Collaboration
	f.db.Where("deal_id = ?", deal.ID).Find(&collaborations)
	if len(collaborations) != 1 {
		t.Fatalf("expected exactly 1 collaboration, got %d", len(collaborations))
	}
	if collaborations[0].Status != models.CollaborationInProgress {
		t.Fatalf("collaboration status = %s, want IN_PROGRESS", collaborations[0].Status)
	}
	if collaborations[0].PaymentStatus != models.PaymentPending {
		t.Fatalf("payment status = %s, want PENDING", collaborations[0].PaymentStatus)
	}

	// A second transition is rejected: the deal already left PENDING.
	if _, err := f.svc.UpdateStatus(f.influencerUser.ID, deal.ID, models.DealAccepted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBrandCannotAcceptOwnDeal(t *testing.T) {
	f := newDealFixture(t)
	deal := f.propose(t)

	if _, err := f.svc.UpdateStatus(f.brandUser.ID, deal.ID, models.DealAccepted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// The brand may cancel its own pending deal.
	if _, err := f.svc.UpdateStatus(f.brandUser.ID, deal.ID, models.DealCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestDeliverableLifecycle(t *testing.T) {
	f := newDealFixture(t)
	deal := f.propose(t)
	if _, err := f.svc.UpdateStatus(f.influencerUser.ID, deal.ID, models.DealAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	var collaboration models.Collaboration
	f.db.Where("deal_id = ?", deal.ID).First(&collaboration)

	deliverable, err := f.svc.AddDeliverable(f.brandUser.ID, collaboration.ID, &dto.CreateDeliverableRequest{
		Description: "First post", DueDate: collaboration.StartDate.AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("add deliverable: %v", err)
	}

	// Brand cannot submit; influencer submits with a URL.
	if _, err := f.svc.UpdateDeliverable(f.brandUser.ID, deliverable.ID, &dto.UpdateDeliverableRequest{
		Action: "submit", SubmissionURL: "https://example.com/post",
	}); !errors.Is(err, ErrNotDealParticipant) {
		t.Fatalf("expected ErrNotDealParticipant, got %v", err)
	}

	submitted, err := f.svc.UpdateDeliverable(f.influencerUser.ID, deliverable.ID, &dto.UpdateDeliverableRequest{
		Action: "submit", SubmissionURL: "https://example.com/post",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.DeliverableSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", submitted.Status)
	}

	rejected, err := f.svc.UpdateDeliverable(f.brandUser.ID, deliverable.ID, &dto.UpdateDeliverableRequest{
		Action: "reject", Feedback: "wrong hashtag",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.DeliverableRejected || rejected.Feedback != "wrong hashtag" {
		t.Fatalf("rejection not recorded: %+v", rejected)
	}

	// Rejected deliverables can be resubmitted and approved.
	if _, err := f.svc.UpdateDeliverable(f.influencerUser.ID, deliverable.ID, &dto.UpdateDeliverableRequest{
		Action: "submit", SubmissionURL: "https://example.com/post-v2",
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	approved, err := f.svc.UpdateDeliverable(f.brandUser.ID, deliverable.ID, &dto.UpdateDeliverableRequest{Action: "approve"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.DeliverableApproved {
		t.Fatalf("status = %s, want APPROVED", approved.Status)
	}
}

func TestReviewRequiresCompletedCollaboration(t *testing.T) {
	f := newDealFixture(t)
	deal := f.propose(t)
	if _, err := f.svc.UpdateStatus(f.influencerUser.ID, deal.ID, models.DealAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	review := &dto.CreateReviewRequest{InfluencerID: f.influencer.ID, Rating: 5, Content: "great"}

	if _, err := f.svc.Review(f.brandUser.ID, review); !errors.Is(err, ErrReviewNotAllowed) {
		t.Fatalf("expected ErrReviewNotAllowed while in progress, got %v", err)
	}

	var collaboration models.Collaboration
	f.db.Where("deal_id = ?", deal.ID).First(&collaboration)
	if _, err := f.svc.CompleteCollaboration(f.brandUser.ID, collaboration.ID, models.CollaborationCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.svc.Review(f.brandUser.ID, review); err != nil {
		t.Fatalf("review: %v", err)
	}

	var influencer models.Influencer
	f.db.First(&influencer, "id = ?", f.influencer.ID)
	if influencer.RatingCount != 1 || influencer.Rating != 5 {
		t.Fatalf("aggregate not updated: rating=%f count=%d", influencer.Rating, influencer.RatingCount)
	}

	// One review per brand+influencer pair.
	if _, err := f.svc.Review(f.brandUser.ID, review); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("expected ErrReviewExists, got %v", err)
	}
}
