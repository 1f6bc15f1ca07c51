package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"bookstay/internal/domain"
)

// SearchService is the read-side facade over the hotel and room repositories:
// hotel search, hotel-to-rooms expansion and the aggregate counts. It holds
// no state of its own beyond the list cache.
type SearchService struct {
	hotels   domain.HotelRepository
	rooms    domain.RoomRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSearchService(h domain.HotelRepository, r domain.RoomRepository, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{hotels: h, rooms: r, cache: c, cacheTTL: ttl}
}

// listVerKey holds the generation number stamped into every search cache
// key. Filter keys are not enumerable, so writes invalidate cached listings
// by bumping the generation, which orphans all of them at once.
const listVerKey = "hotels:ver"

func listVersion(ctx context.Context, c domain.Cache) int64 {
	var v int64
	_, _ = c.Get(ctx, listVerKey, &v)
	return v
}

// bumpListVersion is called after any write that can change search results.
// The version entry never expires; orphaned listing entries still age out on
// their own TTL.
func bumpListVersion(ctx context.Context, c domain.Cache) {
	_ = c.Set(ctx, listVerKey, listVersion(ctx, c)+1, 0)
}

// searchKey builds a canonical cache key for a filter; "-" stands for an
// absent criterion.
func searchKey(ver int64, f domain.HotelFilter) string {
	part := func(p any) string {
		switch v := p.(type) {
		case *string:
			if v != nil {
				return *v
			}
		case *domain.HotelType:
			if v != nil {
				return string(*v)
			}
		case *bool:
			if v != nil {
				return fmt.Sprint(*v)
			}
		case *float64:
			if v != nil {
				return fmt.Sprint(*v)
			}
		}
		return "-"
	}
	return fmt.Sprintf("hotels:%d:%s:%s:%s:%s:%s:%d",
		ver, part(f.City), part(f.Type), part(f.Featured), part(f.MinPrice), part(f.MaxPrice), f.Limit)
}

func (s *SearchService) Search(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	key := searchKey(listVersion(ctx, s.cache), f)
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.hotels.List(ctx, f)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}

// HotelRooms resolves the hotel's room-id list to full room documents,
// fetching siblings in parallel while keeping the list order. A dangling id
// (room deleted outside the facade) is logged and skipped rather than failing
// the whole expansion.
func (s *SearchService) HotelRooms(ctx context.Context, hotelID primitive.ObjectID) ([]domain.Room, error) {
	h, err := s.hotels.Get(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	slots := make([]*domain.Room, len(h.Rooms))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range h.Rooms {
		g.Go(func() error {
			rm, err := s.rooms.Get(gctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					log.Warn().
						Str("hotel", hotelID.Hex()).
						Str("room", id.Hex()).
						Msg("dangling room reference")
					return nil
				}
				return err
			}
			slots[i] = &rm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Room, 0, len(slots))
	for _, rm := range slots {
		if rm != nil {
			out = append(out, *rm)
		}
	}
	return out, nil
}

// CountByCity counts hotels per city name, one result per input in input
// order; duplicate names yield duplicate counts. The counts run in parallel.
func (s *SearchService) CountByCity(ctx context.Context, cities []string) ([]int64, error) {
	out := make([]int64, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	for i, city := range cities {
		g.Go(func() error {
			n, err := s.hotels.CountByCity(gctx, city)
			if err != nil {
				return err
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByType counts hotels across the five fixed types; types with no
// documents report zero.
func (s *SearchService) CountByType(ctx context.Context) ([]domain.TypeCount, error) {
	out := make([]domain.TypeCount, 0, len(domain.HotelTypes))
	for _, t := range domain.HotelTypes {
		n, err := s.hotels.CountByType(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TypeCount{Type: t.Plural(), Count: n})
	}
	return out, nil
}
