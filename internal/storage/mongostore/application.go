package mongostore

import (
	"context"

	"club-admin/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ApplicationStore
// ============================================================================

func (s *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	return insertOne(ctx, s.col(ColApplications), app)
}

func (s *Store) GetApplicationByStudentID(ctx context.Context, studentID string) (*model.Application, error) {
	return findOne[model.Application](ctx, s.col(ColApplications), bson.D{{Key: "student_id", Value: studentID}})
}

func (s *Store) FindApplicationConflict(ctx context.Context, email, studentID, codeforcesID string) (*model.Application, error) {
	return findOne[model.Application](ctx, s.col(ColApplications), identityOr(email, studentID, codeforcesID))
}

func (s *Store) ListApplications(ctx context.Context) ([]*model.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findMany[model.Application](ctx, s.col(ColApplications), bson.D{}, opts)
}

func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColApplications), id)
}
