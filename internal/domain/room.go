package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Room struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Price       float64            `bson:"price" json:"price"`
	MaxPeople   int                `bson:"maxPeople" json:"maxPeople"`
	Description string             `bson:"desc" json:"desc"`
	RoomNumbers []RoomNumber       `bson:"roomNumbers" json:"roomNumbers"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoomNumber is one physical room of this type with its availability calendar.
type RoomNumber struct {
	Number           int         `bson:"number" json:"number"`
	UnavailableDates []time.Time `bson:"unavailableDates" json:"unavailableDates"`
}

type RoomPatch struct {
	Title       *string       `json:"title"`
	Price       *float64      `json:"price"`
	MaxPeople   *int          `json:"maxPeople"`
	Description *string       `json:"desc"`
	RoomNumbers *[]RoomNumber `json:"roomNumbers"`
}
