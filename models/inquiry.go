package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InquiryStatus 咨询状态枚举
type InquiryStatus string

const (
	InquiryStatusNEW                InquiryStatus = "NEW"
	InquiryStatusCONTACTED          InquiryStatus = "CONTACTED"
	InquiryStatusTOUR_SCHEDULED     InquiryStatus = "TOUR_SCHEDULED"
	InquiryStatusTOUR_COMPLETED     InquiryStatus = "TOUR_COMPLETED"
	InquiryStatusQUALIFIED          InquiryStatus = "QUALIFIED"
	InquiryStatusPLACEMENT_OFFERED  InquiryStatus = "PLACEMENT_OFFERED"
	InquiryStatusPLACEMENT_ACCEPTED InquiryStatus = "PLACEMENT_ACCEPTED"
	InquiryStatusCONVERTING         InquiryStatus = "CONVERTING"
	InquiryStatusCONVERTED          InquiryStatus = "CONVERTED"   // 终态：成功入住
	InquiryStatusCLOSED_LOST        InquiryStatus = "CLOSED_LOST" // 终态：流失
)

// AllInquiryStatuses 按管道顺序排列的全部状态
var AllInquiryStatuses = []InquiryStatus{
	InquiryStatusNEW,
	InquiryStatusCONTACTED,
	InquiryStatusTOUR_SCHEDULED,
	InquiryStatusTOUR_COMPLETED,
	InquiryStatusQUALIFIED,
	InquiryStatusPLACEMENT_OFFERED,
	InquiryStatusPLACEMENT_ACCEPTED,
	InquiryStatusCONVERTING,
	InquiryStatusCONVERTED,
	InquiryStatusCLOSED_LOST,
}

// IsValidInquiryStatus 验证状态是否有效
func IsValidInquiryStatus(status string) bool {
	for _, s := range AllInquiryStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

// InquirySource 咨询来源
type InquirySource string

const (
	InquirySourceWEBSITE  InquirySource = "website"
	InquirySourcePHONE    InquirySource = "phone"
	InquirySourceREFERRAL InquirySource = "referral"
	InquirySourceWALKIN   InquirySource = "walkin"
	InquirySourceEMAIL    InquirySource = "email"
	InquirySourceOTHER    InquirySource = "other"
)

// AllInquirySources 全部来源
var AllInquirySources = []InquirySource{
	InquirySourceWEBSITE,
	InquirySourcePHONE,
	InquirySourceREFERRAL,
	InquirySourceWALKIN,
	InquirySourceEMAIL,
	InquirySourceOTHER,
}

// IsValidInquirySource 验证来源是否有效，空值表示未知来源
func IsValidInquirySource(source string) bool {
	if source == "" {
		return true
	}
	for _, s := range AllInquirySources {
		if string(s) == source {
			return true
		}
	}
	return false
}

// HomeRef 咨询的养老院
type HomeRef struct {
	ID           string `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	OperatorID   string `json:"operatorId" bson:"operatorId"`
	OperatorName string `json:"operatorName" bson:"operatorName"`
}

// FamilyRef 发起咨询的家庭
type FamilyRef struct {
	ID                 string `json:"id" bson:"id"`
	Name               string `json:"name" bson:"name"`
	PrimaryContactName string `json:"primaryContactName" bson:"primaryContactName"`
	Phone              string `json:"phone" bson:"phone"`
	Email              string `json:"email" bson:"email"`
}

// StaffRef 负责员工
type StaffRef struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// ResidentRef 转化后的入住人
type ResidentRef struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Inquiry 咨询模型
type Inquiry struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Status    InquiryStatus      `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	TourDate     *time.Time `json:"tourDate,omitempty" bson:"tourDate,omitempty"`
	AIMatchScore *float64   `json:"aiMatchScore,omitempty" bson:"aiMatchScore,omitempty"`

	Home              *HomeRef      `json:"home" bson:"home"`
	Family            *FamilyRef    `json:"family" bson:"family"`
	AssignedStaff     *StaffRef     `json:"assignedStaff,omitempty" bson:"assignedStaff,omitempty"`
	Source            InquirySource `json:"source,omitempty" bson:"source,omitempty"`
	ConvertedResident *ResidentRef  `json:"convertedResident,omitempty" bson:"convertedResident,omitempty"`

	ContactEmail string `json:"contactEmail" bson:"contactEmail"`
	Message      string `json:"message" bson:"message"`
	Notes        string `json:"notes" bson:"notes"`

	// 由状态流转写入
	FirstContactedAt *time.Time    `json:"firstContactedAt,omitempty" bson:"firstContactedAt,omitempty"`
	ConvertedAt      *time.Time    `json:"convertedAt,omitempty" bson:"convertedAt,omitempty"`
	FollowUpDueAt    *time.Time    `json:"followUpDueAt,omitempty" bson:"followUpDueAt,omitempty"`
	FurthestStatus   InquiryStatus `json:"furthestStatus,omitempty" bson:"furthestStatus,omitempty"`
}

// InquiryCreateRequest 创建咨询请求
type InquiryCreateRequest struct {
	Home          HomeRef       `json:"home"`
	Family        FamilyRef     `json:"family"`
	Source        InquirySource `json:"source"`
	ContactEmail  string        `json:"contactEmail"`
	Message       string        `json:"message"`
	Notes         string        `json:"notes"`
	TourDate      *time.Time    `json:"tourDate"`
	AIMatchScore  *float64      `json:"aiMatchScore"`
	FollowUpDueAt *time.Time    `json:"followUpDueAt"`
}

// InquiryStatusUpdateRequest 状态流转请求
type InquiryStatusUpdateRequest struct {
	Status        InquiryStatus `json:"status" binding:"required"`
	Remark        string        `json:"remark"`
	TourDate      *time.Time    `json:"tourDate"`
	FollowUpDueAt *time.Time    `json:"followUpDueAt"`
	Resident      *ResidentRef  `json:"resident"`
}

// InquiryAssignRequest 分配员工请求
type InquiryAssignRequest struct {
	StaffID   string `json:"staffId" binding:"required"`
	StaffName string `json:"staffName" binding:"required"`
}
