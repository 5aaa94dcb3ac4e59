package mongostore

import (
	"context"
	"time"

	"club-admin/internal/model"
	"club-admin/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// TeamStore
// ============================================================================

func (s *Store) CreateTeamMember(ctx context.Context, member *model.TeamMember) error {
	return insertOne(ctx, s.col(ColTeamMembers), member)
}

func (s *Store) GetTeamMember(ctx context.Context, id string) (*model.TeamMember, error) {
	return findOne[model.TeamMember](ctx, s.col(ColTeamMembers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListTeamMembers(ctx context.Context, tf storage.TeamFilter) ([]*model.TeamMember, error) {
	filter := bson.D{}
	if tf.IsEC != nil {
		filter = append(filter, bson.E{Key: "is_ec", Value: *tf.IsEC})
	}
	if tf.IsAlumni != nil {
		filter = append(filter, bson.E{Key: "is_alumni", Value: *tf.IsAlumni})
	}
	if tf.Team != "" {
		filter = append(filter, bson.E{Key: "team", Value: tf.Team})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.TeamMember](ctx, s.col(ColTeamMembers), filter, opts)
}

func (s *Store) UpdateTeamMember(ctx context.Context, member *model.TeamMember) error {
	return updateFields(ctx, s.col(ColTeamMembers), member.ID, bson.D{
		{Key: "full_name", Value: member.FullName},
		{Key: "position", Value: member.Position},
		{Key: "session", Value: member.Session},
		{Key: "is_alumni", Value: member.IsAlumni},
		{Key: "is_ec", Value: member.IsEC},
		{Key: "team", Value: member.Team},
		{Key: "updated_at", Value: time.Now()},
	})
}
