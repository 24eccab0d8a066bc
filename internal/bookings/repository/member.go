package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "upasana/internal/bookings/errors"
	"upasana/pkg/config"
	"upasana/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MemberCollectionName = "Members"
)

// MemberRepository is read-only here; member enrollment is managed by a
// separate administrative flow.
type MemberRepository interface {
	FindByID(ctx context.Context, id string) (*model.Member, error)
}

type mongoMemberRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMemberRepository(cfg *config.Config) MemberRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMemberRepository{
		cfg:        cfg,
		collection: db.Collection(MemberCollectionName),
	}
}

func (r *mongoMemberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var member model.Member
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "active": true}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	return &member, nil
}
