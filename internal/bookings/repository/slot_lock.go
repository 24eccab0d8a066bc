package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "upasana/internal/bookings/errors"
	"upasana/pkg/config"
	"upasana/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotLockCollectionName = "Slot_locks"
)

// SlotLockRepository serializes admission attempts per slot date. Acquire
// inserts a lock row keyed by the date string; the unique _id constraint
// makes exactly one concurrent insert succeed.
type SlotLockRepository interface {
	Acquire(ctx context.Context, date string, owner string) error
	Release(ctx context.Context, date string, owner string) error
	Remove(ctx context.Context, date string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, date string, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock := model.SlotLock{
		ID:        date,
		Owner:     owner,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return nil
}

// Release is scoped to the owner token minted at Acquire, so an attempt
// can only ever delete its own lock row, never one held by a competing
// attempt on the same date. It is idempotent: deleting a lock that is
// already gone is not an error, so retried reconciliations stay safe.
func (r *mongoSlotLockRepository) Release(ctx context.Context, date string, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": date, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

// Remove deletes the lock row for a date regardless of owner. It is for
// reopening a previously full date after a cancellation, where the row
// is a retained occupancy marker rather than an in-flight attempt's lock.
func (r *mongoSlotLockRepository) Remove(ctx context.Context, date string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": date})
	if err != nil {
		return fmt.Errorf("failed to remove slot lock: %w", err)
	}
	return nil
}
