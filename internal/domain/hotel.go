package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HotelType is the fixed property-type enumeration. Stored values are the
// singular forms; count-by-type responses use the plural labels the public
// API has always returned.
type HotelType string

const (
	TypeHotel     HotelType = "hotel"
	TypeApartment HotelType = "apartment"
	TypeResort    HotelType = "resort"
	TypeVilla     HotelType = "villa"
	TypeCabin     HotelType = "cabin"
)

// HotelTypes lists every type in the order count-by-type reports them.
var HotelTypes = []HotelType{TypeHotel, TypeApartment, TypeResort, TypeVilla, TypeCabin}

func (t HotelType) Valid() bool {
	switch t {
	case TypeHotel, TypeApartment, TypeResort, TypeVilla, TypeCabin:
		return true
	}
	return false
}

var typePlurals = map[HotelType]string{
	TypeHotel:     "hotel",
	TypeApartment: "apartments",
	TypeResort:    "resorts",
	TypeVilla:     "villas",
	TypeCabin:     "cabins",
}

func (t HotelType) Plural() string { return typePlurals[t] }

type Hotel struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Type          HotelType            `bson:"type" json:"type"`
	City          string               `bson:"city" json:"city"`
	Address       string               `bson:"address" json:"address"`
	Distance      string               `bson:"distance" json:"distance"`
	Photos        []string             `bson:"photos" json:"photos"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"desc" json:"desc"`
	Rooms         []primitive.ObjectID `bson:"rooms" json:"rooms"`
	CheapestPrice float64              `bson:"cheapestPrice" json:"cheapestPrice"`
	Featured      bool                 `bson:"featured" json:"featured"`
	Rating        *float64             `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HotelPatch is the whitelist of client-editable fields. Rooms is deliberately
// not here: the room list moves only through the link writes issued by room
// creation and deletion.
type HotelPatch struct {
	Name          *string    `json:"name"`
	Type          *HotelType `json:"type"`
	City          *string    `json:"city"`
	Address       *string    `json:"address"`
	Distance      *string    `json:"distance"`
	Photos        *[]string  `json:"photos"`
	Title         *string    `json:"title"`
	Description   *string    `json:"desc"`
	CheapestPrice *float64   `json:"cheapestPrice"`
	Featured      *bool      `json:"featured"`
	Rating        *float64   `json:"rating"`
}

// HotelFilter enumerates the permitted search criteria; arbitrary caller keys
// never reach the store. Nil price bounds fall back to the documented
// defaults (1 and 999) at the repository.
type HotelFilter struct {
	City     *string
	Type     *HotelType
	Featured *bool
	MinPrice *float64
	MaxPrice *float64
	Limit    int64
}

// TypeCount pairs a plural type label with its hotel count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}
