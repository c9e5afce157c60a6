package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InquiryNote 咨询跟进备注
type InquiryNote struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	InquiryID   string             `bson:"inquiryId" json:"inquiryId"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	CreatorID   string             `bson:"creatorId" json:"creatorId"`
	CreatorName string             `bson:"creatorName" json:"creatorName"`
	CreatorRole string             `bson:"creatorRole" json:"creatorRole"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateInquiryNoteInput 创建备注的输入数据
type CreateInquiryNoteInput struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}
