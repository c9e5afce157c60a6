package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/utils"
)

// dbRetries 读操作的最大尝试次数
const dbRetries = 3

// MongoStore 基于 MongoDB 的 InquiryStore 与 OperationLogSink
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore 创建存储
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) inquiries() *mongo.Collection {
	return s.db.Collection(InquiriesCollection)
}

func (s *MongoStore) ListInquiries(ctx context.Context, user *utils.LoginUser) ([]models.Inquiry, error) {
	filter, err := ScopeFilter(user)
	if err != nil {
		return nil, err
	}

	inquiries, err := ExecuteDbOperation(ctx, dbRetries, func(ctx context.Context) ([]models.Inquiry, error) {
		return findAll[models.Inquiry](ctx, s.inquiries(), filter, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("查询咨询列表失败: %w", err)
	}
	utils.LogDbOperation("find", InquiriesCollection, filter, len(inquiries))
	return inquiries, nil
}

func (s *MongoStore) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var inq models.Inquiry
	if err := s.inquiries().FindOne(ctx, bson.M{"_id": objID}).Decode(&inq); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询咨询失败: %w", err)
	}
	return &inq, nil
}

func (s *MongoStore) InsertInquiry(ctx context.Context, inq *models.Inquiry) error {
	if inq.ID.IsZero() {
		inq.ID = primitive.NewObjectID()
	}
	if _, err := s.inquiries().InsertOne(ctx, inq); err != nil {
		return fmt.Errorf("创建咨询失败: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateInquiry(ctx context.Context, inq *models.Inquiry, expected Version) error {
	filter := bson.M{"_id": inq.ID, "status": expected.Status, "updatedAt": expected.UpdatedAt}
	res, err := s.inquiries().ReplaceOne(ctx, filter, inq)
	if err != nil {
		return fmt.Errorf("更新咨询失败: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetInquiry(ctx, inq.ID.Hex()); err != nil {
			return err
		}
		return ErrStaleWrite
	}
	return nil
}

func (s *MongoStore) ListStale(ctx context.Context, before time.Time) ([]models.Inquiry, error) {
	filter := bson.M{
		"status":    bson.M{"$nin": terminalStatuses},
		"updatedAt": bson.M{"$lt": before},
	}
	inquiries, err := ExecuteDbOperation(ctx, dbRetries, func(ctx context.Context) ([]models.Inquiry, error) {
		return findAll[models.Inquiry](ctx, s.inquiries(), filter, options.Find().SetSort(bson.M{"updatedAt": 1}))
	})
	if err != nil {
		return nil, fmt.Errorf("查询滞留咨询失败: %w", err)
	}
	return inquiries, nil
}

func (s *MongoStore) AppendStatusHistory(ctx context.Context, h *models.InquiryStatusHistory) error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(InquiryStatusHistoryCollection).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("写入状态历史失败: %w", err)
	}
	return nil
}

func (s *MongoStore) ListStatusHistory(ctx context.Context, inquiryID string) ([]models.InquiryStatusHistory, error) {
	history, err := findAll[models.InquiryStatusHistory](ctx, s.db.Collection(InquiryStatusHistoryCollection),
		bson.M{"inquiryId": inquiryID}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("查询状态历史失败: %w", err)
	}
	return history, nil
}

func (s *MongoStore) InsertNote(ctx context.Context, note *models.InquiryNote) error {
	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(InquiryNotesCollection).InsertOne(ctx, note); err != nil {
		return fmt.Errorf("添加备注失败: %w", err)
	}
	return nil
}

func (s *MongoStore) ListNotes(ctx context.Context, inquiryID string) ([]models.InquiryNote, error) {
	notes, err := findAll[models.InquiryNote](ctx, s.db.Collection(InquiryNotesCollection),
		bson.M{"inquiryId": inquiryID}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("查询备注失败: %w", err)
	}
	return notes, nil
}

// SaveOperationLog 保存操作日志
func (s *MongoStore) SaveOperationLog(ctx context.Context, log *models.OperationLog) error {
	_, err := s.db.Collection(ApiOperationLogsCollection).InsertOne(ctx, log)
	return err
}

// findAll 查询并解码全部结果，无结果时返回空切片
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
