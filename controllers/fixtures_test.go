package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/pipeline"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/service"
	"github.com/BerniceZTT/carehome_end/utils"
)

var (
	testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	admin    = &utils.LoginUser{ID: "admin-1", Role: models.UserRoleADMIN, Username: "admin"}
	operator = &utils.LoginUser{ID: "op-1", Role: models.UserRoleOPERATOR, Username: "Evergreen"}
	family   = &utils.LoginUser{ID: "fam-1", Role: models.UserRoleFAMILY, Username: "Alice"}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  *repository.MemoryStore
	hub    *service.EventHub
}

func newTestEnv(t *testing.T, user *utils.LoginUser, seed ...models.Inquiry) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore(seed...)
	hub := service.NewEventHub(zerolog.Nop(), nil)
	svc := service.NewInquiryService(store, hub, nil, zerolog.Nop())
	svc.SetClock(func() time.Time { return testNow })
	engine := pipeline.NewEngine(pipeline.DefaultUrgencyThresholds(), zerolog.Nop())

	ctl := NewInquiryController(svc, engine, nil, "inquiries")
	events := NewEventsController(hub)

	router := gin.New()
	api := router.Group("/api", func(c *gin.Context) {
		c.Set(utils.ContextUserKey, user)
		c.Next()
	})
	api.GET("/inquiries", ctl.List)
	api.GET("/inquiries/analytics", ctl.Analytics)
	api.GET("/inquiries/export", ctl.Export)
	api.POST("/inquiries", ctl.Create)
	api.GET("/inquiries/:id", ctl.Detail)
	api.PATCH("/inquiries/:id/status", ctl.UpdateStatus)
	api.PUT("/inquiries/:id/assign", ctl.Assign)
	api.GET("/inquiries/:id/history", ctl.History)
	api.GET("/inquiries/:id/notes", ctl.Notes)
	api.POST("/inquiries/:id/notes", ctl.AddNote)
	api.GET("/events", events.Stream)

	return &testEnv{router: router, store: store, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func seedInquiry(status models.InquiryStatus, familyName string, ageDays int, operatorID string) models.Inquiry {
	created := testNow.Add(-time.Duration(ageDays)*24*time.Hour - time.Hour)
	return models.Inquiry{
		ID:             primitive.NewObjectID(),
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
		Home:           &models.HomeRef{ID: "home-" + operatorID, Name: "Maple Grove", City: "Portland", State: "OR", OperatorID: operatorID},
		Family:         &models.FamilyRef{ID: "fam-1", Name: familyName, PrimaryContactName: familyName + " Contact"},
		Source:         models.InquirySourceWEBSITE,
		FurthestStatus: status,
	}
}

func manyInquiries(n int) []models.Inquiry {
	out := make([]models.Inquiry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, seedInquiry(models.InquiryStatusNEW, "Family", i, "op-1"))
	}
	return out
}
