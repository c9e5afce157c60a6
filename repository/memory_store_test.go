package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/utils"
)

func TestMemoryStoreListScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		scopedInquiry("op-1", "s1", "f1"),
		scopedInquiry("op-2", "s2", "f2"),
		scopedInquiry("op-1", "", "f3"),
	)

	all, err := store.ListInquiries(ctx, &utils.LoginUser{ID: "a", Role: models.UserRoleADMIN})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	op, err := store.ListInquiries(ctx, &utils.LoginUser{ID: "op-1", Role: models.UserRoleOPERATOR})
	require.NoError(t, err)
	assert.Len(t, op, 2)

	staff, err := store.ListInquiries(ctx, &utils.LoginUser{ID: "s2", Role: models.UserRoleSTAFF})
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "f2", staff[0].Family.ID)

	_, err = store.ListInquiries(ctx, &utils.LoginUser{ID: "g", Role: "GUEST"})
	assert.Error(t, err)
}

func TestMemoryStoreUpdateChecksExpectedVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inq := scopedInquiry("op-1", "", "f1")
	inq.UpdatedAt = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertInquiry(ctx, &inq))
	require.False(t, inq.ID.IsZero())
	read := VersionOf(&inq)

	updated := inq
	updated.Status = models.InquiryStatusCONTACTED
	updated.UpdatedAt = inq.UpdatedAt.Add(time.Hour)
	require.NoError(t, store.UpdateInquiry(ctx, &updated, read))

	again := inq
	again.Status = models.InquiryStatusCLOSED_LOST
	assert.ErrorIs(t, store.UpdateInquiry(ctx, &again, read), ErrStaleWrite)

	// 状态相同但 updatedAt 已变化
	touched := updated
	touched.AssignedStaff = &models.StaffRef{ID: "s9"}
	require.NoError(t, store.UpdateInquiry(ctx, &touched, VersionOf(&updated)))
	sameStatus := VersionOf(&updated)
	sameStatus.UpdatedAt = sameStatus.UpdatedAt.Add(-time.Minute)
	assert.ErrorIs(t, store.UpdateInquiry(ctx, &touched, sameStatus), ErrStaleWrite)

	missing := models.Inquiry{ID: primitive.NewObjectID()}
	assert.ErrorIs(t, store.UpdateInquiry(ctx, &missing, read), ErrNotFound)

	got, err := store.GetInquiry(ctx, inq.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusCONTACTED, got.Status)

	_, err = store.GetInquiry(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListStale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	older := scopedInquiry("op-1", "", "f1")
	older.UpdatedAt = now.AddDate(0, 0, -30)
	old := scopedInquiry("op-1", "", "f2")
	old.UpdatedAt = now.AddDate(0, 0, -20)
	fresh := scopedInquiry("op-1", "", "f3")
	fresh.UpdatedAt = now.AddDate(0, 0, -1)
	done := scopedInquiry("op-1", "", "f4")
	done.Status = models.InquiryStatusCONVERTED
	done.UpdatedAt = now.AddDate(0, 0, -60)

	store := NewMemoryStore(old, fresh, done, older)
	stale, err := store.ListStale(ctx, now.AddDate(0, 0, -14))
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "f1", stale[0].Family.ID)
	assert.Equal(t, "f2", stale[1].Family.ID)
}

func TestMemoryStoreHistoryAndNotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.AppendStatusHistory(ctx, &models.InquiryStatusHistory{InquiryID: "i1", ToStatus: models.InquiryStatusCONTACTED}))
	require.NoError(t, store.AppendStatusHistory(ctx, &models.InquiryStatusHistory{InquiryID: "i2", ToStatus: models.InquiryStatusCONTACTED}))
	require.NoError(t, store.AppendStatusHistory(ctx, &models.InquiryStatusHistory{InquiryID: "i1", ToStatus: models.InquiryStatusQUALIFIED}))

	history, err := store.ListStatusHistory(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.InquiryStatusQUALIFIED, history[0].ToStatus)

	require.NoError(t, store.InsertNote(ctx, &models.InquiryNote{InquiryID: "i1", Title: "first"}))
	require.NoError(t, store.InsertNote(ctx, &models.InquiryNote{InquiryID: "i1", Title: "second"}))
	notes, err := store.ListNotes(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)

	empty, err := store.ListNotes(ctx, "i9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
