package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InquiryStatusHistory 咨询状态变更历史（只追加）
type InquiryStatusHistory struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	InquiryID    string             `json:"inquiryId" bson:"inquiryId"`
	FamilyName   string             `json:"familyName" bson:"familyName"`
	FromStatus   InquiryStatus      `json:"fromStatus" bson:"fromStatus"`
	ToStatus     InquiryStatus      `json:"toStatus" bson:"toStatus"`
	OperatorID   string             `json:"operatorId" bson:"operatorId"`
	OperatorName string             `json:"operatorName" bson:"operatorName"`
	Remark       string             `json:"remark" bson:"remark"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
