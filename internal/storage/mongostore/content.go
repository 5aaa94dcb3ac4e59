package mongostore

import (
	"context"
	"time"

	"club-admin/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ContentStore
// ============================================================================

func (s *Store) CreateContent(ctx context.Context, content *model.Content) error {
	return insertOne(ctx, s.col(ColContents), content)
}

func (s *Store) GetContent(ctx context.Context, id string) (*model.Content, error) {
	return findOne[model.Content](ctx, s.col(ColContents), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListContent(ctx context.Context, approvedOnly bool) ([]*model.Content, error) {
	filter := bson.D{}
	if approvedOnly {
		filter = append(filter, bson.E{Key: "is_approved", Value: true})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Content](ctx, s.col(ColContents), filter, opts)
}

func (s *Store) SetContentApproved(ctx context.Context, id string) error {
	return updateFields(ctx, s.col(ColContents), id, bson.D{
		{Key: "is_approved", Value: true},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColContents), id)
}
