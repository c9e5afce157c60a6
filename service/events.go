package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BerniceZTT/carehome_end/metrics"
	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/utils"
)

// 事件类型
const (
	EventInquiryCreated  = "inquiry:created"
	EventInquiryUpdated  = "inquiry:updated"
	EventNoteCreated     = "note:created"
	EventActivityCreated = "activity:created"
	EventInquiryStale    = "inquiry:stale"
)

// defaultSubscriberBuffer 每个订阅者的缓冲事件数
const defaultSubscriberBuffer = 32

// Event 推送给前端的失效通知，前端收到后重新拉取数据
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	InquiryID string      `json:"inquiryId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	At        time.Time   `json:"at"`

	// audience 只含判断可见性所需的字段，不会推送给前端
	audience *models.Inquiry
}

// VisibleTo 用户能否收到该事件
func (e Event) VisibleTo(user *utils.LoginUser) bool {
	return repository.CanView(user, e.audience)
}

func audienceOf(inq *models.Inquiry) *models.Inquiry {
	if inq == nil {
		return nil
	}
	a := &models.Inquiry{ID: inq.ID}
	if inq.Home != nil {
		home := *inq.Home
		a.Home = &home
	}
	if inq.Family != nil {
		family := *inq.Family
		a.Family = &family
	}
	if inq.AssignedStaff != nil {
		staff := *inq.AssignedStaff
		a.AssignedStaff = &staff
	}
	return a
}

// EventHub 进程内事件广播。发布不阻塞，订阅者缓冲满时丢弃该事件；
// 每个订阅者只收到自己有权查看的咨询的事件
type EventHub struct {
	mu      sync.Mutex
	subs    map[chan Event]*utils.LoginUser
	buffer  int
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewEventHub 创建事件中心，m 可以为 nil
func NewEventHub(logger zerolog.Logger, m *metrics.Metrics) *EventHub {
	return &EventHub{
		subs:    make(map[chan Event]*utils.LoginUser),
		buffer:  defaultSubscriberBuffer,
		logger:  logger,
		metrics: m,
	}
}

// Subscribe 以 user 的身份注册订阅者，返回事件通道和取消函数；取消函数可重复调用
func (h *EventHub) Subscribe(user *utils.LoginUser) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.subs[ch] = user
	h.metrics.SetSubscribers(len(h.subs))
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.metrics.SetSubscribers(len(h.subs))
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish 广播 inq 相关的事件
func (h *EventHub) Publish(eventType string, inq *models.Inquiry, data interface{}) Event {
	ev := Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		Data:     data,
		At:       time.Now(),
		audience: audienceOf(inq),
	}
	if inq != nil {
		ev.InquiryID = inq.ID.Hex()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, user := range h.subs {
		if !ev.VisibleTo(user) {
			continue
		}
		select {
		case ch <- ev:
		default:
			h.metrics.ObserveDroppedEvent()
			h.logger.Warn().Str("type", eventType).Str("inquiryId", ev.InquiryID).Msg("订阅者缓冲已满，丢弃事件")
		}
	}
	return ev
}

// Subscribers 当前订阅者数
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
