package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups posts.
// Collection: categories
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}
