package app

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstay/internal/domain"
)

type RoomService struct {
	rooms  domain.RoomRepository
	hotels domain.HotelRepository
	cache  domain.Cache
}

func NewRoomService(rooms domain.RoomRepository, hotels domain.HotelRepository, c domain.Cache) *RoomService {
	return &RoomService{rooms: rooms, hotels: hotels, cache: c}
}

// invalidateHotel drops the cached hotel document and orphans cached listings
// after a link write touched the hotel's rooms array. Called on the failure
// path too, since a failed link leaves the cached state untrustworthy.
func (s *RoomService) invalidateHotel(ctx context.Context, hotelID primitive.ObjectID) {
	_ = s.cache.Del(ctx, hotelKey(hotelID))
	bumpListVersion(ctx, s.cache)
}

// Create persists the room, then appends its id to the owning hotel. The two
// writes are not atomic: when the append fails the room still exists and is
// returned together with a *domain.LinkError so the caller sees both outcomes.
func (s *RoomService) Create(ctx context.Context, hotelID primitive.ObjectID, rm domain.Room) (domain.Room, error) {
	if rm.Title == "" {
		return domain.Room{}, fmt.Errorf("%w: title is required", domain.ErrInvalid)
	}
	if rm.Price < 0 {
		return domain.Room{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalid)
	}
	if rm.MaxPeople <= 0 {
		return domain.Room{}, fmt.Errorf("%w: maxPeople must be positive", domain.ErrInvalid)
	}

	created, err := s.rooms.Create(ctx, rm)
	if err != nil {
		return domain.Room{}, err
	}
	err = s.hotels.PushRoom(ctx, hotelID, created.ID)
	s.invalidateHotel(ctx, hotelID)
	if err != nil {
		return created, &domain.LinkError{Op: "link", HotelID: hotelID, RoomID: created.ID, Err: err}
	}
	return created, nil
}

func (s *RoomService) Get(ctx context.Context, id primitive.ObjectID) (domain.Room, error) {
	return s.rooms.Get(ctx, id)
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.List(ctx)
}

func (s *RoomService) Update(ctx context.Context, id primitive.ObjectID, p domain.RoomPatch) (domain.Room, error) {
	if p.Price != nil && *p.Price < 0 {
		return domain.Room{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalid)
	}
	return s.rooms.Update(ctx, id, p)
}

// Delete removes the room, then pulls its id out of the owning hotel. Same
// two-phase semantics as Create: an unlink failure is reported as a
// *domain.LinkError and does not reverse the deletion.
func (s *RoomService) Delete(ctx context.Context, hotelID, id primitive.ObjectID) error {
	if err := s.rooms.Delete(ctx, id); err != nil {
		return err
	}
	err := s.hotels.PullRoom(ctx, hotelID, id)
	s.invalidateHotel(ctx, hotelID)
	if err != nil {
		return &domain.LinkError{Op: "unlink", HotelID: hotelID, RoomID: id, Err: err}
	}
	return nil
}

// Reserve marks dates unavailable on one physical room number.
func (s *RoomService) Reserve(ctx context.Context, roomID primitive.ObjectID, number int, dates []time.Time) error {
	if len(dates) == 0 {
		return fmt.Errorf("%w: at least one date is required", domain.ErrInvalid)
	}
	return s.rooms.Reserve(ctx, roomID, number, dates)
}
