package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/utils"
)

// MemoryStore 内存实现，用于测试和无数据库的本地调试
type MemoryStore struct {
	mu            sync.RWMutex
	inquiries     map[primitive.ObjectID]models.Inquiry
	order         []primitive.ObjectID
	history       []models.InquiryStatusHistory
	notes         []models.InquiryNote
	operationLogs []models.OperationLog
}

// NewMemoryStore 创建内存存储，可带初始数据
func NewMemoryStore(seed ...models.Inquiry) *MemoryStore {
	s := &MemoryStore{inquiries: make(map[primitive.ObjectID]models.Inquiry)}
	for i := range seed {
		_ = s.InsertInquiry(context.Background(), &seed[i])
	}
	return s
}

func (s *MemoryStore) ListInquiries(_ context.Context, user *utils.LoginUser) ([]models.Inquiry, error) {
	if _, err := ScopeFilter(user); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Inquiry{}
	for _, id := range s.order {
		inq := s.inquiries[id]
		if CanView(user, &inq) {
			out = append(out, inq)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetInquiry(_ context.Context, id string) (*models.Inquiry, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	inq, ok := s.inquiries[objID]
	if !ok {
		return nil, ErrNotFound
	}
	return &inq, nil
}

func (s *MemoryStore) InsertInquiry(_ context.Context, inq *models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inq.ID.IsZero() {
		inq.ID = primitive.NewObjectID()
	}
	if _, exists := s.inquiries[inq.ID]; !exists {
		s.order = append(s.order, inq.ID)
	}
	s.inquiries[inq.ID] = *inq
	return nil
}

func (s *MemoryStore) UpdateInquiry(_ context.Context, inq *models.Inquiry, expected Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.inquiries[inq.ID]
	if !ok {
		return ErrNotFound
	}
	if !expected.Matches(&current) {
		return ErrStaleWrite
	}
	s.inquiries[inq.ID] = *inq
	return nil
}

func (s *MemoryStore) ListStale(_ context.Context, before time.Time) ([]models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Inquiry{}
	for _, id := range s.order {
		inq := s.inquiries[id]
		if inq.Status == models.InquiryStatusCONVERTED || inq.Status == models.InquiryStatusCLOSED_LOST {
			continue
		}
		if inq.UpdatedAt.Before(before) {
			out = append(out, inq)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) AppendStatusHistory(_ context.Context, h *models.InquiryStatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	s.history = append(s.history, *h)
	return nil
}

func (s *MemoryStore) ListStatusHistory(_ context.Context, inquiryID string) ([]models.InquiryStatusHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InquiryStatusHistory{}
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].InquiryID == inquiryID {
			out = append(out, s.history[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertNote(_ context.Context, note *models.InquiryNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	s.notes = append(s.notes, *note)
	return nil
}

func (s *MemoryStore) ListNotes(_ context.Context, inquiryID string) ([]models.InquiryNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InquiryNote{}
	for i := len(s.notes) - 1; i >= 0; i-- {
		if s.notes[i].InquiryID == inquiryID {
			out = append(out, s.notes[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveOperationLog(_ context.Context, log *models.OperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.operationLogs = append(s.operationLogs, *log)
	return nil
}

// OperationLogs 已保存的操作日志副本
func (s *MemoryStore) OperationLogs() []models.OperationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.OperationLog(nil), s.operationLogs...)
}
