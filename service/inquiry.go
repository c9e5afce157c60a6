package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerniceZTT/carehome_end/metrics"
	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/pipeline"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/utils"
)

var (
	// ErrInquiryNotFound 咨询不存在或当前用户不可见
	ErrInquiryNotFound = errors.New("咨询不存在")
	// ErrInvalidTransition 状态流转不合法
	ErrInvalidTransition = errors.New("状态流转不合法")
	// ErrInquiryClosed 终态咨询不可修改
	ErrInquiryClosed = errors.New("咨询已结束，不能修改")
	// ErrInquiryIntegrity 存储中的咨询记录不完整或状态未知
	ErrInquiryIntegrity = errors.New("咨询数据不完整")
)

// TransitionError 具体的非法流转
type TransitionError struct {
	From models.InquiryStatus
	To   models.InquiryStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("不能从 %s 变更为 %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// InquiryService 咨询的创建、流转、分配与备注
type InquiryService struct {
	store   repository.InquiryStore
	hub     *EventHub
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewInquiryService 创建服务，hub 和 m 可以为 nil
func NewInquiryService(store repository.InquiryStore, hub *EventHub, m *metrics.Metrics, logger zerolog.Logger) *InquiryService {
	return &InquiryService{
		store:   store,
		hub:     hub,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock 替换时间来源
func (s *InquiryService) SetClock(now func() time.Time) {
	s.now = now
}

// Now 服务当前时间，控制器计算派生字段时使用同一时间来源
func (s *InquiryService) Now() time.Time {
	return s.now()
}

// Snapshot 用户可见的全部咨询
func (s *InquiryService) Snapshot(ctx context.Context, user *utils.LoginUser) ([]models.Inquiry, error) {
	return s.store.ListInquiries(ctx, user)
}

// Get 获取单条咨询，不可见的按不存在处理
func (s *InquiryService) Get(ctx context.Context, user *utils.LoginUser, id string) (*models.Inquiry, error) {
	inq, err := s.store.GetInquiry(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	if !repository.CanView(user, inq) {
		return nil, ErrInquiryNotFound
	}
	if err := pipeline.CheckIntegrity(inq); err != nil {
		s.logger.Error().Err(err).Str("inquiryId", id).Msg("咨询记录不完整")
		return nil, fmt.Errorf("%w: %v", ErrInquiryIntegrity, err)
	}
	return inq, nil
}

// Create 创建咨询，初始状态为 NEW
func (s *InquiryService) Create(ctx context.Context, user *utils.LoginUser, req models.InquiryCreateRequest) (*models.Inquiry, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	home := req.Home
	family := req.Family
	var staff *models.StaffRef

	switch user.Role {
	case models.UserRoleFAMILY:
		family.ID = user.ID
	case models.UserRoleOPERATOR:
		home.OperatorID = repository.OperatorOf(user)
	case models.UserRoleSTAFF:
		if home.OperatorID == "" {
			home.OperatorID = user.OperatorID
		}
		staff = &models.StaffRef{ID: user.ID, Name: user.Username}
	}

	now := s.now()
	inq := &models.Inquiry{
		Status:         models.InquiryStatusNEW,
		CreatedAt:      now,
		UpdatedAt:      now,
		TourDate:       req.TourDate,
		AIMatchScore:   req.AIMatchScore,
		Home:           &home,
		Family:         &family,
		AssignedStaff:  staff,
		Source:         req.Source,
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		Message:        req.Message,
		Notes:          req.Notes,
		FollowUpDueAt:  req.FollowUpDueAt,
		FurthestStatus: models.InquiryStatusNEW,
	}
	if err := s.store.InsertInquiry(ctx, inq); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("inquiryId", inq.ID.Hex()).
		Str("homeId", home.ID).
		Str("operator", user.Username).
		Msg("创建咨询")
	s.publish(EventInquiryCreated, inq, inq)
	return inq, nil
}

func validateCreate(req *models.InquiryCreateRequest) error {
	switch {
	case strings.TrimSpace(req.Home.ID) == "":
		return &pipeline.ValidationError{Field: "home.id", Message: "养老院不能为空"}
	case strings.TrimSpace(req.Home.Name) == "":
		return &pipeline.ValidationError{Field: "home.name", Message: "养老院名称不能为空"}
	case strings.TrimSpace(req.Family.Name) == "":
		return &pipeline.ValidationError{Field: "family.name", Message: "家庭名称不能为空"}
	case !models.IsValidInquirySource(string(req.Source)):
		return &pipeline.ValidationError{Field: "source", Message: fmt.Sprintf("未知来源 %q", req.Source)}
	case req.AIMatchScore != nil && (*req.AIMatchScore < 0 || *req.AIMatchScore > 1):
		return &pipeline.ValidationError{Field: "aiMatchScore", Message: "匹配分数必须在0到1之间"}
	}
	return nil
}

// Transition 变更咨询状态并追加历史记录
func (s *InquiryService) Transition(ctx context.Context, user *utils.LoginUser, id string, req models.InquiryStatusUpdateRequest) (*models.Inquiry, error) {
	to := models.InquiryStatus(strings.ToUpper(string(req.Status)))
	if !models.IsValidInquiryStatus(string(to)) {
		return nil, &pipeline.ValidationError{Field: "status", Message: fmt.Sprintf("未知状态 %q", req.Status)}
	}

	inq, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	from := inq.Status
	prev := repository.VersionOf(inq)
	if !pipeline.CanTransition(from, to) {
		return nil, &TransitionError{From: from, To: to}
	}

	now := s.now()
	if req.TourDate != nil {
		inq.TourDate = req.TourDate
	}
	if to == models.InquiryStatusTOUR_SCHEDULED && inq.TourDate == nil {
		return nil, &pipeline.ValidationError{Field: "tourDate", Message: "安排参观需要提供参观时间"}
	}
	if req.FollowUpDueAt != nil {
		inq.FollowUpDueAt = req.FollowUpDueAt
	}
	if from == models.InquiryStatusNEW && to != models.InquiryStatusCLOSED_LOST && inq.FirstContactedAt == nil {
		inq.FirstContactedAt = &now
	}
	if to == models.InquiryStatusCONVERTED {
		inq.ConvertedAt = &now
		if req.Resident != nil {
			inq.ConvertedResident = req.Resident
		}
	}
	inq.Status = to
	inq.UpdatedAt = now
	inq.FurthestStatus = pipeline.FurthestStage(inq)

	if err := s.store.UpdateInquiry(ctx, inq, prev); err != nil {
		return nil, err
	}

	history := &models.InquiryStatusHistory{
		InquiryID:    id,
		FamilyName:   inq.Family.Name,
		FromStatus:   from,
		ToStatus:     to,
		OperatorID:   user.ID,
		OperatorName: user.Username,
		Remark:       req.Remark,
		CreatedAt:    now,
	}
	if err := s.store.AppendStatusHistory(ctx, history); err != nil {
		// 状态已更新，历史写入失败只记录
		s.logger.Error().Err(err).Str("inquiryId", id).Msg("写入状态历史失败")
	}

	s.metrics.ObserveTransition(string(from), string(to))
	s.logger.Info().
		Str("inquiryId", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("operator", user.Username).
		Msg("咨询状态变更")
	s.publish(EventInquiryUpdated, inq, inq)
	s.publish(EventActivityCreated, inq, history)
	return inq, nil
}

// Assign 分配负责员工
func (s *InquiryService) Assign(ctx context.Context, user *utils.LoginUser, id string, req models.InquiryAssignRequest) (*models.Inquiry, error) {
	if strings.TrimSpace(req.StaffID) == "" {
		return nil, &pipeline.ValidationError{Field: "staffId", Message: "员工不能为空"}
	}

	inq, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if pipeline.IsTerminal(inq.Status) {
		return nil, ErrInquiryClosed
	}

	prev := repository.VersionOf(inq)
	inq.AssignedStaff = &models.StaffRef{ID: req.StaffID, Name: req.StaffName}
	inq.UpdatedAt = s.now()
	if err := s.store.UpdateInquiry(ctx, inq, prev); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("inquiryId", id).
		Str("staffId", req.StaffID).
		Str("operator", user.Username).
		Msg("分配咨询")
	s.publish(EventInquiryUpdated, inq, inq)
	s.publish(EventActivityCreated, inq, map[string]string{"action": "assign", "staffId": req.StaffID, "staffName": req.StaffName})
	return inq, nil
}

// AddNote 添加备注
func (s *InquiryService) AddNote(ctx context.Context, user *utils.LoginUser, id string, input models.CreateInquiryNoteInput) (*models.InquiryNote, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, &pipeline.ValidationError{Field: "title", Message: "标题不能为空"}
	}
	if content == "" {
		return nil, &pipeline.ValidationError{Field: "content", Message: "内容不能为空"}
	}

	inq, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	note := &models.InquiryNote{
		InquiryID:   id,
		Title:       title,
		Content:     content,
		CreatorID:   user.ID,
		CreatorName: user.Username,
		CreatorRole: string(user.Role),
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertNote(ctx, note); err != nil {
		return nil, err
	}
	s.publish(EventNoteCreated, inq, note)
	return note, nil
}

// Notes 咨询的备注，最新的在前
func (s *InquiryService) Notes(ctx context.Context, user *utils.LoginUser, id string) ([]models.InquiryNote, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.store.ListNotes(ctx, id)
}

// History 咨询的状态历史，最新的在前
func (s *InquiryService) History(ctx context.Context, user *utils.LoginUser, id string) ([]models.InquiryStatusHistory, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.store.ListStatusHistory(ctx, id)
}

func (s *InquiryService) publish(eventType string, inq *models.Inquiry, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(eventType, inq, data)
}
