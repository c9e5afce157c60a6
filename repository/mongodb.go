package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BerniceZTT/carehome_end/utils"
)

const (
	// 集合名
	UsersCollection                = "users"
	InquiriesCollection            = "inquiries"
	InquiryStatusHistoryCollection = "inquiryStatusHistory"
	InquiryNotesCollection         = "inquiryNotes"
	ApiOperationLogsCollection     = "apiOperationLogs"
)

var allCollections = []string{
	UsersCollection,
	InquiriesCollection,
	InquiryStatusHistoryCollection,
	InquiryNotesCollection,
	ApiOperationLogsCollection,
}

var (
	client *mongo.Client
	db     *mongo.Database
	ctx    = context.Background()
)

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(uri, dbName string) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("连接MongoDB失败: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB失败: %w", err)
	}

	db = client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	return nil
}

// CloseMongoDB 关闭MongoDB连接
func CloseMongoDB() {
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
			return
		}
		utils.Logger.Info().Msg("已断开MongoDB连接")
	}
}

// Database 返回已初始化的数据库，未调用 InitMongoDB 时为 nil
func Database() *mongo.Database {
	return db
}

// GetContext 返回MongoDB操作的上下文
func GetContext() context.Context {
	return ctx
}

// Collection 返回指定名称的集合
func Collection(name string) *mongo.Collection {
	return db.Collection(name)
}

// ExecuteDbOperation 执行数据库操作，可重试的错误按递增间隔重试
func ExecuteDbOperation[T any](ctx context.Context, retries int, operation func(context.Context) (T, error)) (T, error) {
	if retries <= 0 {
		retries = 3
	}

	var (
		zero    T
		lastErr error
	)
	for i := 0; i < retries; i++ {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
		utils.Logger.Warn().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}

	return zero, lastErr
}

// MongoDB可重试错误代码
var retryableCodes = map[int32]bool{
	6:     true, // HostUnreachable
	7:     true, // HostNotFound
	89:    true, // NetworkTimeout
	91:    true, // ShutdownInProgress
	189:   true, // PrimarySteppedDown
	10107: true, // NotMaster
	13436: true, // NotMasterNoSlaveOk
	11600: true, // InterruptedAtShutdown
	11602: true, // InterruptedDueToReplStateChange
}

var networkErrors = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"no reachable servers",
	"server selection error",
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, ne := range networkErrors {
		if strings.Contains(msg, ne) {
			return true
		}
	}
	return false
}

// InitializeCollections 初始化数据库集合和索引
func InitializeCollections() error {
	for _, collName := range allCollections {
		collExists, err := CollectionExists(collName)
		if err != nil {
			return fmt.Errorf("检查集合失败: %w", err)
		}

		if !collExists {
			if err := db.CreateCollection(ctx, collName); err != nil {
				return fmt.Errorf("创建集合失败: %w", err)
			}
			utils.Logger.Info().Str("collection", collName).Msg("创建集合成功")
		}
	}

	return ensureIndexes()
}

// ensureIndexes 按角色过滤和滞留检查使用的字段建索引
func ensureIndexes() error {
	indexes := map[string][]mongo.IndexModel{
		InquiriesCollection: {
			{Keys: bson.D{{Key: "home.operatorId", Value: 1}}},
			{Keys: bson.D{{Key: "assignedStaff.id", Value: 1}}},
			{Keys: bson.D{{Key: "family.id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
		InquiryStatusHistoryCollection: {
			{Keys: bson.D{{Key: "inquiryId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		InquiryNotesCollection: {
			{Keys: bson.D{{Key: "inquiryId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for collName, idx := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("创建索引失败 %s: %w", collName, err)
		}
	}
	return nil
}

// CollectionExists 检查集合是否存在
func CollectionExists(collName string) (bool, error) {
	collections, err := db.ListCollectionNames(ctx, bson.M{"name": collName})
	if err != nil {
		return false, err
	}

	for _, name := range collections {
		if name == collName {
			return true, nil
		}
	}
	return false, nil
}

// GetDatabaseStatus 获取各集合的文档数
func GetDatabaseStatus() (map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}

	result := make(map[string]interface{})
	for _, collName := range allCollections {
		count, err := db.Collection(collName).CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			result[collName] = map[string]interface{}{
				"count": 0,
				"error": err.Error(),
			}
			continue
		}
		result[collName] = map[string]interface{}{"count": count}
	}

	return result, nil
}
