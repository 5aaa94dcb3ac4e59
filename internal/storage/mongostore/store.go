// Package mongostore 实现基于 MongoDB 的 storage.Store
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers         = "users"
	ColApplications  = "applications"
	ColContents      = "contents"
	ColTeamMembers   = "team_members"
	ColGalleryImages = "gallery_images"
)

// Store 实现 storage.Store 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "club_admin"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// 创建索引
	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: mongostore: ensure indexes failed: %v", err)
	}

	return s, nil
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ensureIndexes 创建所有必要的索引
//
// applications.student_id 沿用原始数据没有唯一约束（只有 email 和
// codeforces_id 唯一），不在这里悄悄收紧。
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
		sparse bool
	}

	indexes := []idx{
		// users（codeforces_id 稀疏：空值不参与唯一约束）
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true, false},
		{ColUsers, bson.D{{Key: "student_id", Value: 1}}, true, false},
		{ColUsers, bson.D{{Key: "codeforces_id", Value: 1}}, true, true},
		{ColUsers, bson.D{{Key: "full_name", Value: 1}}, false, false},

		// applications
		{ColApplications, bson.D{{Key: "email", Value: 1}}, true, false},
		{ColApplications, bson.D{{Key: "codeforces_id", Value: 1}}, true, false},
		{ColApplications, bson.D{{Key: "student_id", Value: 1}}, false, false},
		{ColApplications, bson.D{{Key: "created_at", Value: 1}}, false, false},

		// contents
		{ColContents, bson.D{{Key: "heading", Value: 1}}, true, false},
		{ColContents, bson.D{{Key: "author_id", Value: 1}}, false, false},
		{ColContents, bson.D{{Key: "is_approved", Value: 1}}, false, false},
		{ColContents, bson.D{{Key: "created_at", Value: -1}}, false, false},

		// team_members
		{ColTeamMembers, bson.D{{Key: "team", Value: 1}}, false, false},

		// gallery_images
		{ColGalleryImages, bson.D{{Key: "created_at", Value: -1}}, false, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			opts := options.Index().SetUnique(true)
			if i.sparse {
				opts = opts.SetSparse(true)
			}
			model.Options = opts
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}
