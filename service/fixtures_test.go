package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/utils"
)

var (
	testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	admin    = &utils.LoginUser{ID: "admin-1", Role: models.UserRoleADMIN, Username: "admin"}
	operator = &utils.LoginUser{ID: "op-1", Role: models.UserRoleOPERATOR, Username: "Evergreen"}
	staff    = &utils.LoginUser{ID: "staff-1", Role: models.UserRoleSTAFF, Username: "Sam", OperatorID: "op-1"}
	family   = &utils.LoginUser{ID: "fam-1", Role: models.UserRoleFAMILY, Username: "Alice"}
)

type harness struct {
	store   *repository.MemoryStore
	hub     *EventHub
	events  <-chan Event
	service *InquiryService
}

func newHarness(t *testing.T, seed ...models.Inquiry) *harness {
	t.Helper()
	store := repository.NewMemoryStore(seed...)
	hub := NewEventHub(zerolog.Nop(), nil)
	events, cancel := hub.Subscribe(admin)
	t.Cleanup(cancel)

	svc := NewInquiryService(store, hub, nil, zerolog.Nop())
	svc.SetClock(func() time.Time { return testNow })
	return &harness{store: store, hub: hub, events: events, service: svc}
}

func (h *harness) drain() []string {
	var types []string
	for {
		select {
		case ev := <-h.events:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func seededInquiry(status models.InquiryStatus) models.Inquiry {
	created := testNow.AddDate(0, 0, -3)
	return models.Inquiry{
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
		Home:      &models.HomeRef{ID: "home-1", Name: "Maple Grove", OperatorID: "op-1"},
		Family:    &models.FamilyRef{ID: "fam-1", Name: "Johnson Family"},
		AssignedStaff: &models.StaffRef{
			ID:   "staff-1",
			Name: "Sam",
		},
		FurthestStatus: status,
	}
}
