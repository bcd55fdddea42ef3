package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reader comment on a post.
// Collection: comments
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	AuthorName string             `bson:"author_name" json:"author_name"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
