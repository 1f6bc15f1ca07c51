package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HotelRepository interface {
	Create(ctx context.Context, h Hotel) (Hotel, error)
	Get(ctx context.Context, id primitive.ObjectID) (Hotel, error)
	List(ctx context.Context, f HotelFilter) ([]Hotel, error)
	Update(ctx context.Context, id primitive.ObjectID, p HotelPatch) (Hotel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Aggregations
	CountByCity(ctx context.Context, city string) (int64, error)
	CountByType(ctx context.Context, t HotelType) (int64, error)

	// Link writes. Both are atomic on the hotel document, so concurrent
	// appends never lose an id.
	PushRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error
	PullRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error
}

type RoomRepository interface {
	Create(ctx context.Context, rm Room) (Room, error)
	Get(ctx context.Context, id primitive.ObjectID) (Room, error)
	List(ctx context.Context) ([]Room, error)
	Update(ctx context.Context, id primitive.ObjectID, p RoomPatch) (Room, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Reserve marks the given dates unavailable on one physical room number.
	Reserve(ctx context.Context, roomID primitive.ObjectID, number int, dates []time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
