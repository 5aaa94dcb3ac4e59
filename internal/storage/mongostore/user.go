package mongostore

import (
	"context"
	"errors"
	"time"

	"club-admin/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "student_id", Value: studentID}})
}

func (s *Store) FindUserByIdentity(ctx context.Context, email, studentID string) (*model.User, error) {
	if email == "" && studentID == "" {
		return nil, nil
	}
	return findOne[model.User](ctx, s.col(ColUsers), identityOr(email, studentID, ""))
}

func (s *Store) FindUserConflict(ctx context.Context, email, studentID, codeforcesID string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), identityOr(email, studentID, codeforcesID))
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) UpdateUserRefreshToken(ctx context.Context, id, token string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "refresh_token", Value: token},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserAvatar(ctx context.Context, id, avatarURL string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "avatar", Value: avatarURL},
		{Key: "updated_at", Value: time.Now()},
	})
}

// GetUserProfile 聚合查询成员主页：$lookup 关联 contents 统计博客数
func (s *Store) GetUserProfile(ctx context.Context, studentID string) (*model.Profile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "student_id", Value: studentID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColContents},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "author_id"},
			{Key: "as", Value: "blogs"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "blogs_count", Value: bson.D{{Key: "$size", Value: "$blogs"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "full_name", Value: 1},
			{Key: "student_id", Value: 1},
			{Key: "blogs_count", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "session", Value: 1},
			{Key: "department", Value: 1},
		}}},
	}

	cursor, err := s.col(ColUsers).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, nil
	}

	var profile model.Profile
	if err := cursor.Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
