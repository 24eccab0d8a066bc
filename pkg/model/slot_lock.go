package model

import "time"

// SlotLock is the advisory lock row for one slot date. The date string
// (YYYY-MM-DD) is the document id, so a second insert for the same date
// fails with a duplicate key error and the loser backs off.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
