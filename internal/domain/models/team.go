// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a named group of developers with a shared chat channel.
//
// NOTE:
//   - Members and Invites are sets stored as arrays. They are only ever
//     mutated with $addToSet / $pull so duplicates never appear.
//   - A user id is never in both Members and Invites.
//   - CreatedBy and CreatedAt are written once at creation.
type Team struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	Members     []string           `bson:"members" json:"members"`
	Invites     []string           `bson:"invites" json:"invites"`
	IsPublic    bool               `bson:"is_public" json:"is_public"`
}

// HasMember reports whether userID is in the team's member set.
func (t Team) HasMember(userID string) bool {
	return containsID(t.Members, userID)
}

// HasInvite reports whether userID has a pending invite to the team.
func (t Team) HasInvite(userID string) bool {
	return containsID(t.Invites, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
