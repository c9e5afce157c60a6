package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/utils"
)

// ScopeFilter 按角色限定可见的咨询
// ADMIN 全部；OPERATOR 自己运营的养老院；STAFF 分配给自己的；FAMILY 自己提交的
func ScopeFilter(user *utils.LoginUser) (bson.M, error) {
	if user == nil {
		return nil, fmt.Errorf("缺少用户信息")
	}
	switch user.Role {
	case models.UserRoleADMIN:
		return bson.M{}, nil
	case models.UserRoleOPERATOR:
		return bson.M{"home.operatorId": OperatorOf(user)}, nil
	case models.UserRoleSTAFF:
		return bson.M{"assignedStaff.id": user.ID}, nil
	case models.UserRoleFAMILY:
		return bson.M{"family.id": user.ID}, nil
	}
	return nil, fmt.Errorf("未知角色: %s", user.Role)
}

// CanView 与 ScopeFilter 规则一致的内存判断
func CanView(user *utils.LoginUser, inq *models.Inquiry) bool {
	if user == nil || inq == nil {
		return false
	}
	switch user.Role {
	case models.UserRoleADMIN:
		return true
	case models.UserRoleOPERATOR:
		return inq.Home != nil && inq.Home.OperatorID == OperatorOf(user)
	case models.UserRoleSTAFF:
		return inq.AssignedStaff != nil && inq.AssignedStaff.ID == user.ID
	case models.UserRoleFAMILY:
		return inq.Family != nil && inq.Family.ID == user.ID
	}
	return false
}

// OperatorOf 运营方账号本身即运营方，令牌里带 operatorId 时以其为准
func OperatorOf(user *utils.LoginUser) string {
	if user.OperatorID != "" {
		return user.OperatorID
	}
	return user.ID
}
