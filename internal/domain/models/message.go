// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one entry in a team's chat log.
//
// UserName and UserPhoto are a snapshot of the sender taken when the
// message was written. They are never updated afterwards.
//
// Timestamp is assigned by the store. A nil Timestamp means the write
// has not round-tripped yet.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	TeamID    string             `bson:"team_id" json:"team_id"`
	Text      string             `bson:"text" json:"text"`
	UserID    string             `bson:"user_id" json:"user_id"`
	UserName  string             `bson:"user_name" json:"user_name"`
	UserPhoto string             `bson:"user_photo,omitempty" json:"user_photo,omitempty"`
	Timestamp *time.Time         `bson:"timestamp" json:"timestamp"`
}

// Before reports whether m sorts before o in channel order:
// timestamp ascending, ties broken by id. Pending messages sort last.
func (m Message) Before(o Message) bool {
	switch {
	case m.Timestamp == nil && o.Timestamp == nil:
		return m.ID.Hex() < o.ID.Hex()
	case m.Timestamp == nil:
		return false
	case o.Timestamp == nil:
		return true
	case m.Timestamp.Equal(*o.Timestamp):
		return m.ID.Hex() < o.ID.Hex()
	default:
		return m.Timestamp.Before(*o.Timestamp)
	}
}
