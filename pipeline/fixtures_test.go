package pipeline

import (
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/carehome_end/models"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(DefaultUrgencyThresholds(), zerolog.Nop())
}

type inquiryOption func(*models.Inquiry)

func newInquiry(opts ...inquiryOption) models.Inquiry {
	inq := models.Inquiry{
		ID:        primitive.NewObjectID(),
		Status:    models.InquiryStatusNEW,
		CreatedAt: testNow.Add(-2 * time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
		Home: &models.HomeRef{
			ID:           "home-1",
			Name:         "Maple Grove",
			City:         "Portland",
			State:        "OR",
			OperatorID:   "op-1",
			OperatorName: "Evergreen Senior Living",
		},
		Family: &models.FamilyRef{
			ID:                 "fam-1",
			Name:               "Johnson Family",
			PrimaryContactName: "Alice Johnson",
			Phone:              "555-0100",
			Email:              "alice@example.com",
		},
		Source: models.InquirySourceWEBSITE,
	}
	for _, opt := range opts {
		opt(&inq)
	}
	return inq
}

func withStatus(s models.InquiryStatus) inquiryOption {
	return func(inq *models.Inquiry) { inq.Status = s }
}

func withAgeDays(days int) inquiryOption {
	return func(inq *models.Inquiry) {
		inq.CreatedAt = testNow.Add(-time.Duration(days)*day - time.Hour)
		inq.UpdatedAt = inq.CreatedAt
	}
}

func withUpdatedDaysAgo(days int) inquiryOption {
	return func(inq *models.Inquiry) { inq.UpdatedAt = testNow.Add(-time.Duration(days)*day - time.Minute) }
}

func withTourIn(d time.Duration) inquiryOption {
	return func(inq *models.Inquiry) {
		t := testNow.Add(d)
		inq.TourDate = &t
	}
}

func withFamily(name, contact, email string) inquiryOption {
	return func(inq *models.Inquiry) {
		inq.Family = &models.FamilyRef{ID: "fam-" + name, Name: name, PrimaryContactName: contact, Email: email}
	}
}

func withHome(id string) inquiryOption {
	return func(inq *models.Inquiry) { inq.Home.ID = id }
}

func withStaff(id string) inquiryOption {
	return func(inq *models.Inquiry) { inq.AssignedStaff = &models.StaffRef{ID: id, Name: "Staff " + id} }
}

func withSource(s models.InquirySource) inquiryOption {
	return func(inq *models.Inquiry) { inq.Source = s }
}

func defaultSpec() FilterSpec {
	return FilterSpec{Page: 1, Limit: 10}
}

func ids(items []models.Inquiry) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(items))
	for _, inq := range items {
		out = append(out, inq.ID)
	}
	return out
}
