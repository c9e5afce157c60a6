package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/carehome_end/models"
)

func TestGenerateAndParseToken(t *testing.T) {
	SetJWTSecret("test-secret")
	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   "carol",
		Role:       models.UserRoleSTAFF,
		OperatorID: "op-1",
	}

	token, err := GenerateToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)

	login, err := userFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, &LoginUser{
		ID:         user.ID.Hex(),
		Role:       models.UserRoleSTAFF,
		Username:   "carol",
		OperatorID: "op-1",
	}, login)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	SetJWTSecret("first")
	token, err := GenerateToken(models.User{ID: primitive.NewObjectID(), Role: models.UserRoleADMIN}, time.Hour)
	require.NoError(t, err)

	SetJWTSecret("second")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateToken(models.User{ID: primitive.NewObjectID(), Role: models.UserRoleADMIN}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestUserFromClaimsRejectsUnknownRole(t *testing.T) {
	_, err := userFromClaims(map[string]interface{}{"id": "u1", "role": "SUPER_ADMIN", "username": "x"})
	assert.Error(t, err)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.UserRoleADMIN, ResourceInquiries, ActionExport))
	assert.True(t, HasPermission(models.UserRoleOPERATOR, ResourceInquiries, ActionAssign))
	assert.True(t, HasPermission(models.UserRoleSTAFF, ResourceAnalytics, ActionRead))
	assert.True(t, HasPermission(models.UserRoleFAMILY, ResourceNotes, ActionCreate))

	assert.False(t, HasPermission(models.UserRoleSTAFF, ResourceInquiries, ActionExport))
	assert.False(t, HasPermission(models.UserRoleSTAFF, ResourceInquiries, ActionAssign))
	assert.False(t, HasPermission(models.UserRoleFAMILY, ResourceAnalytics, ActionRead))
	assert.False(t, HasPermission(models.UserRoleFAMILY, ResourceInquiries, ActionUpdate))
	assert.False(t, HasPermission("GUEST", ResourceInquiries, ActionRead))
}
