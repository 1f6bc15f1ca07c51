package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookstay/internal/domain"
)

type RoomRepo struct{ col *mongo.Collection }

func NewRoomRepo(db *mongo.Database) *RoomRepo {
	return &RoomRepo{col: db.Collection("rooms")}
}

func (r *RoomRepo) Create(ctx context.Context, rm domain.Room) (domain.Room, error) {
	now := time.Now().UTC()
	rm.CreatedAt, rm.UpdatedAt = now, now
	if rm.RoomNumbers == nil {
		rm.RoomNumbers = []domain.RoomNumber{}
	}
	res, err := r.col.InsertOne(ctx, rm)
	if err != nil {
		return domain.Room{}, err
	}
	rm.ID = res.InsertedID.(primitive.ObjectID)
	return rm, nil
}

func (r *RoomRepo) Get(ctx context.Context, id primitive.ObjectID) (domain.Room, error) {
	var rm domain.Room
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Room{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return rm, nil
}

func (r *RoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out := []domain.Room{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RoomRepo) Update(ctx context.Context, id primitive.ObjectID, p domain.RoomPatch) (domain.Room, error) {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.MaxPeople != nil {
		set["maxPeople"] = *p.MaxPeople
	}
	if p.Description != nil {
		set["desc"] = *p.Description
	}
	if p.RoomNumbers != nil {
		set["roomNumbers"] = *p.RoomNumbers
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	set["updatedAt"] = time.Now().UTC()

	var rm domain.Room
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Room{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return rm, nil
}

func (r *RoomRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reserve appends dates to the availability calendar of one room number via a
// positional push, so concurrent reservations on different numbers never
// clobber each other.
func (r *RoomRepo) Reserve(ctx context.Context, roomID primitive.ObjectID, number int, dates []time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": roomID, "roomNumbers.number": number},
		bson.M{
			"$push": bson.M{"roomNumbers.$.unavailableDates": bson.M{"$each": dates}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
