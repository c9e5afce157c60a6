package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleADMIN    UserRole = "ADMIN"    // 平台管理员
	UserRoleOPERATOR UserRole = "OPERATOR" // 养老院运营方
	UserRoleSTAFF    UserRole = "STAFF"    // 运营方员工
	UserRoleFAMILY   UserRole = "FAMILY"   // 家属
)

// IsValidUserRole 验证角色是否有效
func IsValidUserRole(role string) bool {
	switch UserRole(role) {
	case UserRoleADMIN, UserRoleOPERATOR, UserRoleSTAFF, UserRoleFAMILY:
		return true
	}
	return false
}

// User 用户类型
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	Role       UserRole           `bson:"role" json:"role"`
	OperatorID string             `bson:"operatorId,omitempty" json:"operatorId,omitempty"` // 员工所属运营方
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
