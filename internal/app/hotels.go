// Package app holds the services sitting between the HTTP layer and the
// repositories: hotel/room commands and the search facade that composes the
// two read paths.
package app

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstay/internal/domain"
)

type HotelService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{repo: r, cache: c, cacheTTL: ttl}
}

func hotelKey(id primitive.ObjectID) string { return "hotel:" + id.Hex() }

func (s *HotelService) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if h.Name == "" || h.City == "" {
		return domain.Hotel{}, fmt.Errorf("%w: name and city are required", domain.ErrInvalid)
	}
	if !h.Type.Valid() {
		return domain.Hotel{}, fmt.Errorf("%w: unknown hotel type %q", domain.ErrInvalid, h.Type)
	}
	created, err := s.repo.Create(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	bumpListVersion(ctx, s.cache)
	return created, nil
}

func (s *HotelService) Get(ctx context.Context, id primitive.ObjectID) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, s.cacheTTL)
	return h, nil
}

func (s *HotelService) Update(ctx context.Context, id primitive.ObjectID, p domain.HotelPatch) (domain.Hotel, error) {
	if p.Type != nil && !p.Type.Valid() {
		return domain.Hotel{}, fmt.Errorf("%w: unknown hotel type %q", domain.ErrInvalid, *p.Type)
	}
	h, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Del(ctx, hotelKey(id))
	bumpListVersion(ctx, s.cache)
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, hotelKey(id))
	bumpListVersion(ctx, s.cache)
	return nil
}
