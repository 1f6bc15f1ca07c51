package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstay/internal/domain"
)

// ---- fakes ----

type fakeHotelRepo struct {
	mu     sync.Mutex
	hotels map[primitive.ObjectID]domain.Hotel

	listOut    []domain.Hotel
	lastFilter domain.HotelFilter
	listCalls  int

	cityCounts map[string]int64
	typeCounts map[domain.HotelType]int64

	pushErr error
	pullErr error
}

func newFakeHotelRepo() *fakeHotelRepo {
	return &fakeHotelRepo{hotels: map[primitive.ObjectID]domain.Hotel{}}
}

func (f *fakeHotelRepo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h.ID = primitive.NewObjectID()
	if h.Rooms == nil {
		h.Rooms = []primitive.ObjectID{}
	}
	f.hotels[h.ID] = h
	return h, nil
}

func (f *fakeHotelRepo) Get(ctx context.Context, id primitive.ObjectID) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeHotelRepo) List(ctx context.Context, fl domain.HotelFilter) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = fl
	f.listCalls++
	return f.listOut, nil
}

func (f *fakeHotelRepo) Update(ctx context.Context, id primitive.ObjectID, p domain.HotelPatch) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.City != nil {
		h.City = *p.City
	}
	if p.CheapestPrice != nil {
		h.CheapestPrice = *p.CheapestPrice
	}
	f.hotels[id] = h
	return h, nil
}

func (f *fakeHotelRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.hotels, id)
	return nil
}

func (f *fakeHotelRepo) CountByCity(ctx context.Context, city string) (int64, error) {
	return f.cityCounts[city], nil
}

func (f *fakeHotelRepo) CountByType(ctx context.Context, t domain.HotelType) (int64, error) {
	return f.typeCounts[t], nil
}

func (f *fakeHotelRepo) PushRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	h, ok := f.hotels[hotelID]
	if !ok {
		return domain.ErrNotFound
	}
	h.Rooms = append(h.Rooms, roomID)
	f.hotels[hotelID] = h
	return nil
}

func (f *fakeHotelRepo) PullRoom(ctx context.Context, hotelID, roomID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pullErr != nil {
		return f.pullErr
	}
	h, ok := f.hotels[hotelID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := h.Rooms[:0]
	for _, id := range h.Rooms {
		if id != roomID {
			kept = append(kept, id)
		}
	}
	h.Rooms = kept
	f.hotels[hotelID] = h
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[primitive.ObjectID]domain.Room

	reservedRoom   primitive.ObjectID
	reservedNumber int
	reservedDates  []time.Time
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: map[primitive.ObjectID]domain.Room{}}
}

func (f *fakeRoomRepo) Create(ctx context.Context, rm domain.Room) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm.ID = primitive.NewObjectID()
	f.rooms[rm.ID] = rm
	return rm, nil
}

func (f *fakeRoomRepo) Get(ctx context.Context, id primitive.ObjectID) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, nil
}

func (f *fakeRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Room, 0, len(f.rooms))
	for _, rm := range f.rooms {
		out = append(out, rm)
	}
	return out, nil
}

func (f *fakeRoomRepo) Update(ctx context.Context, id primitive.ObjectID, p domain.RoomPatch) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	if p.Title != nil {
		rm.Title = *p.Title
	}
	if p.Price != nil {
		rm.Price = *p.Price
	}
	f.rooms[id] = rm
	return rm, nil
}

func (f *fakeRoomRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rooms, id)
	return nil
}

func (f *fakeRoomRepo) Reserve(ctx context.Context, roomID primitive.ObjectID, number int, dates []time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return domain.ErrNotFound
	}
	f.reservedRoom, f.reservedNumber, f.reservedDates = roomID, number, dates
	return nil
}

// fakeCache stores marshaled JSON so any dst type round-trips like the real
// Redis adapter.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- helpers ----

func ptr[T any](v T) *T { return &v }
