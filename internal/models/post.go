package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses.
const (
	PostDraft     = "draft"
	PostPublished = "published"
)

// Reaction is a single emoji reaction; a user holds at most one per post.
type Reaction struct {
	Emoji  string             `bson:"emoji" json:"emoji"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
}

// Post is a published or draft article.
// Collection: posts
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	Summary      string             `bson:"summary,omitempty" json:"summary,omitempty"`
	AuthorID     primitive.ObjectID `bson:"author_id" json:"author_id"`
	CategoryID   primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Tags         []string           `bson:"tags" json:"tags"`
	Status       string             `bson:"status" json:"status"`
	ScheduleDate string             `bson:"schedule_date,omitempty" json:"schedule_date,omitempty"`
	Reactions    []Reaction         `bson:"reactions,omitempty" json:"reactions,omitempty"`
	ReadTime     int                `bson:"read_time,omitempty" json:"read_time,omitempty"`
	Image        FeaturedImage      `bson:"image,omitempty" json:"image,omitempty"`

	// NewsSource records provenance when the post was materialized from a
	// suggestion; empty for user-authored posts.
	NewsSource string `bson:"news_source,omitempty" json:"news_source,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
