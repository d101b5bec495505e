package models

import "time"

type Interview struct {
	ID        string   `bson:"_id" json:"id"`
	Role      string   `bson:"role" json:"role"`
	Type      string   `bson:"type" json:"type"` // Technical|Behavioural|Mixed
	Level     string   `bson:"level" json:"level"`
	TechStack []string `bson:"tech_stack" json:"techstack"`
	Questions []string `bson:"questions" json:"questions"`
	Domain    string   `bson:"domain,omitempty" json:"domain,omitempty"`

	Finalized  bool   `bson:"finalized" json:"finalized"`
	CoverImage string `bson:"cover_image" json:"coverImage"`

	UserID    string    `bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
