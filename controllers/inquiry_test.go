package controllers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/pipeline"
)

func TestListPaginates(t *testing.T) {
	env := newTestEnv(t, admin, manyInquiries(25)...)

	w := env.do(t, http.MethodGet, "/api/inquiries?page=3&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Len(t, body["inquiries"], 5)
	assert.Equal(t, map[string]interface{}{
		"page":       3.0,
		"limit":      10.0,
		"total":      25.0,
		"totalPages": 3.0,
	}, body["pagination"])
}

func TestListIncludesDerivedFields(t *testing.T) {
	env := newTestEnv(t, admin, seedInquiry(models.InquiryStatusNEW, "Johnson", 0, "op-1"))

	body := decode(t, env.do(t, http.MethodGet, "/api/inquiries", nil))
	items := body["inquiries"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "New", item["statusText"])
	assert.Equal(t, "medium", item["urgency"])
	assert.Equal(t, "Contact family", item["nextAction"])
	assert.Equal(t, 0.0, item["ageInDays"])
}

func TestListValidationError(t *testing.T) {
	env := newTestEnv(t, admin)

	w := env.do(t, http.MethodGet, "/api/inquiries?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "limit", body["field"])

	w = env.do(t, http.MethodGet, "/api/inquiries?dateFrom=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "dateFrom", decode(t, w)["field"])
}

func TestListIsScopedToOperator(t *testing.T) {
	env := newTestEnv(t, operator,
		seedInquiry(models.InquiryStatusNEW, "Mine", 1, "op-1"),
		seedInquiry(models.InquiryStatusNEW, "Theirs", 1, "op-2"),
	)

	body := decode(t, env.do(t, http.MethodGet, "/api/inquiries", nil))
	items := body["inquiries"].([]interface{})
	require.Len(t, items, 1)
	family := items[0].(map[string]interface{})["family"].(map[string]interface{})
	assert.Equal(t, "Mine", family["name"])
}

func TestListReportsSkippedRecords(t *testing.T) {
	broken := seedInquiry(models.InquiryStatusNEW, "Broken", 1, "op-1")
	broken.Family = nil
	env := newTestEnv(t, admin, seedInquiry(models.InquiryStatusNEW, "Fine", 1, "op-1"), broken)

	w := env.do(t, http.MethodGet, "/api/inquiries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Skipped-Records"))
	assert.Len(t, decode(t, w)["inquiries"], 1)
}

func TestDetailHidesOtherOperators(t *testing.T) {
	theirs := seedInquiry(models.InquiryStatusNEW, "Theirs", 1, "op-2")
	env := newTestEnv(t, operator, theirs)

	w := env.do(t, http.MethodGet, "/api/inquiries/"+theirs.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/inquiries/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownStoredStatusIsReported(t *testing.T) {
	inq := seedInquiry("ARCHIVED", "Johnson", 2, "op-1")
	env := newTestEnv(t, operator, inq)
	path := "/api/inquiries/" + inq.ID.Hex()

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, path, nil},
		{http.MethodPatch, path + "/status", map[string]string{"status": "CLOSED_LOST"}},
		{http.MethodPut, path + "/assign", map[string]string{"staffId": "staff-9", "staffName": "Pat"}},
	}
	for _, r := range requests {
		var w *httptest.ResponseRecorder
		require.NotPanics(t, func() { w = env.do(t, r.method, r.path, r.body) }, r.method)
		assert.Equal(t, http.StatusInternalServerError, w.Code, r.method)
		body := decode(t, w)
		assert.Equal(t, "DATA_INTEGRITY", body["code"], r.method)
		assert.Equal(t, false, body["success"], r.method)
	}
}

func TestCreateInquiry(t *testing.T) {
	env := newTestEnv(t, family)

	w := env.do(t, http.MethodPost, "/api/inquiries", map[string]interface{}{
		"home":   map[string]string{"id": "home-1", "name": "Maple Grove", "operatorId": "op-1"},
		"family": map[string]string{"name": "Johnson Family"},
		"source": "website",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "NEW", data["status"])
	assert.Equal(t, "fam-1", data["family"].(map[string]interface{})["id"])

	w = env.do(t, http.MethodPost, "/api/inquiries", map[string]interface{}{
		"home":   map[string]string{"id": "home-1", "name": "Maple Grove"},
		"family": map[string]string{"name": ""},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, admin)

	w := env.do(t, http.MethodPost, "/api/inquiries", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w)["code"])
}

func TestUpdateStatus(t *testing.T) {
	inq := seedInquiry(models.InquiryStatusNEW, "Johnson", 2, "op-1")
	env := newTestEnv(t, operator, inq)
	path := "/api/inquiries/" + inq.ID.Hex()

	w := env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "contacted", "remark": "called"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "CONTACTED", data["status"])
	assert.Equal(t, "Contacted", data["statusText"])
	assert.NotNil(t, data["firstContactedAt"])

	w = env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "NEW"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w)["code"])

	w = env.do(t, http.MethodPatch, path+"/status", map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["data"].([]interface{})
	require.Len(t, history, 1)
	entry := history[0].(map[string]interface{})
	assert.Equal(t, "NEW", entry["fromStatus"])
	assert.Equal(t, "CONTACTED", entry["toStatus"])
	assert.Equal(t, "called", entry["remark"])
}

func TestAssignClosedInquiry(t *testing.T) {
	open := seedInquiry(models.InquiryStatusCONTACTED, "Open", 2, "op-1")
	closed := seedInquiry(models.InquiryStatusCONVERTED, "Closed", 2, "op-1")
	env := newTestEnv(t, operator, open, closed)
	assignment := map[string]string{"staffId": "staff-9", "staffName": "Pat"}

	w := env.do(t, http.MethodPut, "/api/inquiries/"+open.ID.Hex()+"/assign", assignment)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	staff := decode(t, w)["data"].(map[string]interface{})["assignedStaff"].(map[string]interface{})
	assert.Equal(t, "staff-9", staff["id"])

	w = env.do(t, http.MethodPut, "/api/inquiries/"+closed.ID.Hex()+"/assign", assignment)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INQUIRY_CLOSED", decode(t, w)["code"])
}

func TestNotes(t *testing.T) {
	inq := seedInquiry(models.InquiryStatusCONTACTED, "Johnson", 2, "op-1")
	env := newTestEnv(t, family, inq)
	path := "/api/inquiries/" + inq.ID.Hex() + "/notes"

	w := env.do(t, http.MethodPost, path, map[string]string{"title": "Diet", "content": "Needs low sodium meals"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "fam-1", note["creatorId"])

	w = env.do(t, http.MethodPost, path, map[string]string{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestAnalyticsUsesFilteredSet(t *testing.T) {
	env := newTestEnv(t, admin,
		seedInquiry(models.InquiryStatusCONVERTED, "A", 3, "op-1"),
		seedInquiry(models.InquiryStatusCONTACTED, "B", 3, "op-1"),
		seedInquiry(models.InquiryStatusNEW, "C", 3, "op-1"),
		seedInquiry(models.InquiryStatusNEW, "D", 3, "op-1"),
	)

	w := env.do(t, http.MethodGet, "/api/inquiries/analytics?page=2&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 4.0, data["totalInquiries"])
	assert.Equal(t, 1.0, data["convertedInquiries"])
	assert.Equal(t, 25.0, data["conversionRate"])

	w = env.do(t, http.MethodGet, "/api/inquiries/analytics?statuses=NEW", nil)
	data = decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 2.0, data["totalInquiries"])
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, admin,
		seedInquiry(models.InquiryStatusNEW, "Johnson", 1, "op-1"),
		seedInquiry(models.InquiryStatusCONTACTED, "Smith", 2, "op-1"),
	)

	w := env.do(t, http.MethodGet, "/api/inquiries/export?statuses=NEW", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="inquiries-2026-10-15.csv"`, w.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, pipeline.ExportHeader, rows[0])
	assert.Equal(t, "Johnson Contact", rows[1][3])
}

func TestExportXLSX(t *testing.T) {
	env := newTestEnv(t, admin, seedInquiry(models.InquiryStatusNEW, "Johnson", 1, "op-1"))

	w := env.do(t, http.MethodGet, "/api/inquiries/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="inquiries-2026-10-15.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Inquiries")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t, admin)

	w := env.do(t, http.MethodGet, "/api/inquiries/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "format", decode(t, w)["field"])
}
