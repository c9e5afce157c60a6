package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/carehome_end/models"
)

func TestStatusMappingsAreTotal(t *testing.T) {
	seenRank := map[int]models.InquiryStatus{}
	for _, s := range models.AllInquiryStatuses {
		assert.NotPanics(t, func() {
			assert.NotEmpty(t, StatusDisplayText(s), s)
			assert.NotEmpty(t, StatusColor(s), s)
			assert.NotEmpty(t, NextActionText(s), s)
		})
		rank := PipelineRank(s)
		_, dup := seenRank[rank]
		assert.False(t, dup, "duplicate rank %d for %s", rank, s)
		seenRank[rank] = s
	}
}

func TestPipelineRankFollowsDeclaredOrder(t *testing.T) {
	for i, s := range models.AllInquiryStatuses {
		assert.Equal(t, i, PipelineRank(s), s)
	}
}

func TestUnknownStatusPanics(t *testing.T) {
	assert.Panics(t, func() { StatusDisplayText("ARCHIVED") })
}

func TestStatusDisplayText(t *testing.T) {
	assert.Equal(t, "Tour Scheduled", StatusDisplayText(models.InquiryStatusTOUR_SCHEDULED))
	assert.Equal(t, "Closed Lost", StatusDisplayText(models.InquiryStatusCLOSED_LOST))
}

func TestStatusColorSemanticFamilies(t *testing.T) {
	assert.Equal(t, "green", StatusColor(models.InquiryStatusCONVERTED))
	assert.Equal(t, "red", StatusColor(models.InquiryStatusCLOSED_LOST))
	assert.Contains(t, StatusColor(models.InquiryStatusPLACEMENT_ACCEPTED), "green")

	colors := map[string]bool{}
	for _, s := range models.AllInquiryStatuses {
		c := StatusColor(s)
		assert.False(t, colors[c], "color %s reused", c)
		colors[c] = true
		switch s {
		case models.InquiryStatusCONVERTED, models.InquiryStatusPLACEMENT_ACCEPTED, models.InquiryStatusCLOSED_LOST:
		default:
			assert.NotContains(t, c, "green", s)
			assert.NotContains(t, c, "red", s)
		}
	}
}

func TestNextActionText(t *testing.T) {
	assert.Equal(t, "Contact family", NextActionText(models.InquiryStatusNEW))
	assert.Equal(t, "Confirm tour attendance", NextActionText(models.InquiryStatusTOUR_SCHEDULED))
	assert.Equal(t, "No action needed", NextActionText(models.InquiryStatusCONVERTED))
	assert.Equal(t, "No action needed", NextActionText(models.InquiryStatusCLOSED_LOST))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.InquiryStatus
		ok       bool
	}{
		{models.InquiryStatusNEW, models.InquiryStatusCONTACTED, true},
		{models.InquiryStatusNEW, models.InquiryStatusTOUR_SCHEDULED, true},
		{models.InquiryStatusQUALIFIED, models.InquiryStatusCONVERTING, true},
		{models.InquiryStatusQUALIFIED, models.InquiryStatusPLACEMENT_OFFERED, true},
		{models.InquiryStatusCONTACTED, models.InquiryStatusNEW, false},
		{models.InquiryStatusCONTACTED, models.InquiryStatusCONTACTED, false},
		{models.InquiryStatusCONVERTING, models.InquiryStatusCLOSED_LOST, true},
		{models.InquiryStatusCONVERTED, models.InquiryStatusCLOSED_LOST, false},
		{models.InquiryStatusCLOSED_LOST, models.InquiryStatusNEW, false},
		{models.InquiryStatusCLOSED_LOST, models.InquiryStatusCONVERTED, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNoTransitionLeavesTerminalState(t *testing.T) {
	for _, from := range []models.InquiryStatus{models.InquiryStatusCONVERTED, models.InquiryStatusCLOSED_LOST} {
		for _, to := range models.AllInquiryStatuses {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAgeAndStage(t *testing.T) {
	inq := newInquiry(withAgeDays(10), withUpdatedDaysAgo(3))
	assert.Equal(t, 10, AgeInDays(&inq, testNow))
	assert.Equal(t, 3, DaysInCurrentStage(&inq, testNow))

	future := newInquiry()
	future.CreatedAt = testNow.Add(time.Hour)
	future.UpdatedAt = future.CreatedAt
	assert.Equal(t, 0, AgeInDays(&future, testNow))
	assert.Equal(t, 0, DaysInCurrentStage(&future, testNow))
}

func TestFurthestStage(t *testing.T) {
	lost := newInquiry(withStatus(models.InquiryStatusCLOSED_LOST))
	assert.Equal(t, models.InquiryStatusNEW, FurthestStage(&lost))

	lost.FurthestStatus = models.InquiryStatusTOUR_COMPLETED
	assert.Equal(t, models.InquiryStatusTOUR_COMPLETED, FurthestStage(&lost))

	stale := newInquiry(withStatus(models.InquiryStatusQUALIFIED))
	stale.FurthestStatus = models.InquiryStatusCONTACTED
	assert.Equal(t, models.InquiryStatusQUALIFIED, FurthestStage(&stale))
}

func TestCheckIntegrity(t *testing.T) {
	ok := newInquiry()
	require.NoError(t, CheckIntegrity(&ok))

	noHome := newInquiry()
	noHome.Home = nil
	assert.Error(t, CheckIntegrity(&noHome))

	noFamily := newInquiry()
	noFamily.Family = nil
	assert.Error(t, CheckIntegrity(&noFamily))

	badStatus := newInquiry(withStatus("ARCHIVED"))
	assert.Error(t, CheckIntegrity(&badStatus))
}
