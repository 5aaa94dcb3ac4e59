package mongostore

import (
	"context"

	"club-admin/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// GalleryStore
// ============================================================================

func (s *Store) CreateGalleryImages(ctx context.Context, images []*model.GalleryImage) error {
	docs := make([]interface{}, 0, len(images))
	for _, img := range images {
		docs = append(docs, img)
	}
	return insertMany(ctx, s.col(ColGalleryImages), docs)
}

func (s *Store) ListGalleryImages(ctx context.Context) ([]*model.GalleryImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.GalleryImage](ctx, s.col(ColGalleryImages), bson.D{}, opts)
}
