package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a GitHub-authenticated student. Hearts is the remaining question
// budget; it is only ever mutated through the hearts ledger's conditional
// updates, never with a plain read-modify-write.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GitHubID  string             `bson:"github_id" json:"github_id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Hearts    int                `bson:"hearts" json:"hearts"`
	MaxHearts int                `bson:"max_hearts" json:"max_hearts"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserInfo is the public shape returned by /api/me.
type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Hearts    int    `json:"hearts"`
}
