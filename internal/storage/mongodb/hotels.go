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

// Price defaults applied when a search bound is absent. An explicit bound,
// including zero, always wins.
const (
	defaultMinPrice = 1
	defaultMaxPrice = 999
)

type HotelRepo struct{ col *mongo.Collection }

func NewHotelRepo(db *mongo.Database) *HotelRepo {
	return &HotelRepo{col: db.Collection("hotels")}
}

func (r *HotelRepo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	if h.Rooms == nil {
		h.Rooms = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = res.InsertedID.(primitive.ObjectID)
	return h, nil
}

func (r *HotelRepo) Get(ctx context.Context, id primitive.ObjectID) (domain.Hotel, error) {
	var h domain.Hotel
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *HotelRepo) List(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	minPrice, maxPrice := float64(defaultMinPrice), float64(defaultMaxPrice)
	if f.MinPrice != nil {
		minPrice = *f.MinPrice
	}
	if f.MaxPrice != nil {
		maxPrice = *f.MaxPrice
	}
	q := bson.M{"cheapestPrice": bson.M{"$gte": minPrice, "$lte": maxPrice}}
	if f.City != nil {
		q["city"] = *f.City
	}
	if f.Type != nil {
		q["type"] = *f.Type
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}

	opts := options.Find()
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	out := []domain.Hotel{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *HotelRepo) Update(ctx context.Context, id primitive.ObjectID, p domain.HotelPatch) (domain.Hotel, error) {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.City != nil {
		set["city"] = *p.City
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Distance != nil {
		set["distance"] = *p.Distance
	}
	if p.Photos != nil {
		set["photos"] = *p.Photos
	}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["desc"] = *p.Description
	}
	if p.CheapestPrice != nil {
		set["cheapestPrice"] = *p.CheapestPrice
	}
	if p.Featured != nil {
		set["featured"] = *p.Featured
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	// Empty patch is an identity operation: no write, return stored document.
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	set["updatedAt"] = time.Now().UTC()

	var h domain.Hotel
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

// Delete removes the hotel only. Owned rooms are not cascaded; their
// documents remain behind as dangling inventory.
func (r *HotelRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HotelRepo) CountByCity(ctx context.Context, city string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"city": city})
}

func (r *HotelRepo) CountByType(ctx context.Context, t domain.HotelType) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"type": t})
}

func (r *HotelRepo) PushRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, hotelID, bson.M{
		"$push": bson.M{"rooms": roomID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HotelRepo) PullRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, hotelID, bson.M{
		"$pull": bson.M{"rooms": roomID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
