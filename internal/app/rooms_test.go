package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstay/internal/app"
	"bookstay/internal/domain"
)

func seedHotel(t *testing.T, repo *fakeHotelRepo) domain.Hotel {
	t.Helper()
	h, err := repo.Create(context.Background(), domain.Hotel{Name: "Grand", City: "Tokyo", Type: domain.TypeHotel})
	if err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	return h
}

func TestRoomCreate_LinksHotel(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	rm, err := svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rm.ID.IsZero() {
		t.Fatalf("expected generated room id")
	}

	linked, _ := hotels.Get(context.Background(), h.ID)
	if len(linked.Rooms) != 1 || linked.Rooms[0] != rm.ID {
		t.Fatalf("room id not linked on hotel: %v", linked.Rooms)
	}
}

func TestRoomCreate_LinkFailureReportsBoth(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	hotels.pushErr = errors.New("write concern timeout")

	rm, err := svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	var le *domain.LinkError
	if !errors.As(err, &le) {
		t.Fatalf("expected LinkError, got %v", err)
	}
	if le.Op != "link" || le.HotelID != h.ID || le.RoomID != rm.ID {
		t.Fatalf("unexpected link error: %+v", le)
	}
	// the room itself was persisted and must be returned
	if rm.ID.IsZero() {
		t.Fatalf("expected created room alongside the link error")
	}
	if _, err := rooms.Get(context.Background(), rm.ID); err != nil {
		t.Fatalf("room should exist despite the link failure: %v", err)
	}
}

func TestRoomCreate_Validation(t *testing.T) {
	svc := app.NewRoomService(newFakeRoomRepo(), newFakeHotelRepo(), &fakeCache{})

	cases := []domain.Room{
		{Title: "", Price: 80, MaxPeople: 2},
		{Title: "Double", Price: -1, MaxPeople: 2},
		{Title: "Double", Price: 80, MaxPeople: 0},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), primitive.NewObjectID(), in); !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", in, err)
		}
	}
}

func TestRoomDelete_UnlinksHotel(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	rm, err := svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if err := svc.Delete(context.Background(), h.ID, rm.ID); err != nil {
		t.Fatalf("err: %v", err)
	}

	if _, err := svc.Get(context.Background(), rm.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	linked, _ := hotels.Get(context.Background(), h.ID)
	if len(linked.Rooms) != 0 {
		t.Fatalf("room id still linked on hotel: %v", linked.Rooms)
	}
}

func TestRoomDelete_UnlinkFailureKeepsDeletion(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	rm, _ := svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	hotels.pullErr = errors.New("write concern timeout")

	err := svc.Delete(context.Background(), h.ID, rm.ID)
	var le *domain.LinkError
	if !errors.As(err, &le) || le.Op != "unlink" {
		t.Fatalf("expected unlink LinkError, got %v", err)
	}
	// the deletion is not reversed
	if _, err := rooms.Get(context.Background(), rm.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("room should be gone despite the unlink failure, got %v", err)
	}
}

func TestRoomCreate_ConcurrentAppendsKeepAllIDs(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	linked, _ := hotels.Get(context.Background(), h.ID)
	if len(linked.Rooms) != n {
		t.Fatalf("lost appends: want %d linked ids, got %d", n, len(linked.Rooms))
	}
}

func TestRoomCreate_InvalidatesCachedHotel(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	cache := &fakeCache{}
	hotelSvc := app.NewHotelService(hotels, cache, 10*time.Minute)
	roomSvc := app.NewRoomService(rooms, hotels, cache)
	h := seedHotel(t, hotels)

	// populate the hotel cache before the link write
	if _, err := hotelSvc.Get(context.Background(), h.ID); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	rm, err := roomSvc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	got, err := hotelSvc.Get(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("get after link: %v", err)
	}
	if len(got.Rooms) != 1 || got.Rooms[0] != rm.ID {
		t.Fatalf("hotel read after room create misses room id %s (rooms=%v)", rm.ID.Hex(), got.Rooms)
	}
}

func TestRoomDelete_InvalidatesCachedHotel(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	cache := &fakeCache{}
	hotelSvc := app.NewHotelService(hotels, cache, 10*time.Minute)
	roomSvc := app.NewRoomService(rooms, hotels, cache)
	h := seedHotel(t, hotels)

	rm, err := roomSvc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := hotelSvc.Get(context.Background(), h.ID); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	if err := roomSvc.Delete(context.Background(), h.ID, rm.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}

	got, err := hotelSvc.Get(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("get after unlink: %v", err)
	}
	if len(got.Rooms) != 0 {
		t.Fatalf("hotel read after room delete still lists %v", got.Rooms)
	}
}

func TestRoomCreate_LinkFailureStillDropsCachedHotel(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	cache := &fakeCache{}
	hotelSvc := app.NewHotelService(hotels, cache, 10*time.Minute)
	roomSvc := app.NewRoomService(rooms, hotels, cache)
	h := seedHotel(t, hotels)

	if _, err := hotelSvc.Get(context.Background(), h.ID); err != nil {
		t.Fatalf("warm get: %v", err)
	}
	hotels.pushErr = errors.New("write concern timeout")

	_, err := roomSvc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2})
	var le *domain.LinkError
	if !errors.As(err, &le) {
		t.Fatalf("expected LinkError, got %v", err)
	}

	// the cached copy must be gone even though the link write failed
	var cached domain.Hotel
	if ok, _ := cache.Get(context.Background(), "hotel:"+h.ID.Hex(), &cached); ok {
		t.Fatalf("hotel still cached after failed link write")
	}
}

func TestRoomReserve(t *testing.T) {
	hotels := newFakeHotelRepo()
	rooms := newFakeRoomRepo()
	svc := app.NewRoomService(rooms, hotels, &fakeCache{})
	h := seedHotel(t, hotels)

	rm, _ := svc.Create(context.Background(), h.ID, domain.Room{Title: "Double", Price: 80, MaxPeople: 2,
		RoomNumbers: []domain.RoomNumber{{Number: 101}}})

	if err := svc.Reserve(context.Background(), rm.ID, 101, nil); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty dates, got %v", err)
	}

	dates := []time.Time{time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)}
	if err := svc.Reserve(context.Background(), rm.ID, 101, dates); err != nil {
		t.Fatalf("err: %v", err)
	}
	if rooms.reservedRoom != rm.ID || rooms.reservedNumber != 101 || len(rooms.reservedDates) != 2 {
		t.Fatalf("reserve not forwarded: %+v %d %v", rooms.reservedRoom, rooms.reservedNumber, rooms.reservedDates)
	}
}
