// internal/domain/models/user.go
package models

import (
	"time"
)

// User is a developer profile.
//
// NOTE:
//   - ID is the identity provider's stable user id, not an ObjectID.
//   - Team membership is not embedded on User; it lives on Team.Members.
type User struct {
	ID         string   `bson:"_id" json:"id"`
	Name       string   `bson:"name" json:"name"`
	Email      string   `bson:"email" json:"email"`
	PhotoURL   string   `bson:"photo_url" json:"photo_url"`
	University string   `bson:"university" json:"university"`
	Skills     []string `bson:"skills" json:"skills"`
	Bio        string   `bson:"bio" json:"bio"`
	GitHub     string   `bson:"github" json:"github"`
	LinkedIn   string   `bson:"linkedin" json:"linkedin"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberSummary is the slice of a User needed to render a member list.
// It is a best-effort snapshot and may be stale.
type MemberSummary struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	PhotoURL string `bson:"photo_url" json:"photo_url"`
	Email    string `bson:"email" json:"email"`
}

// UnknownUserName is shown for ids that resolve to no profile.
const UnknownUserName = "Unknown User"
