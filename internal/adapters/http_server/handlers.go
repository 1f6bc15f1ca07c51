package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstay/internal/adapters/observability"
	"bookstay/internal/app"
	"bookstay/internal/domain"
)

type Handlers struct {
	Hotels *app.HotelService
	Rooms  *app.RoomService
	Search *app.SearchService
	Users  domain.UserRepository

	JWTSecret string
	TokenTTL  time.Duration
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Get("/hotels", h.searchHotels)
		r.Get("/hotels/count-by-city", h.countByCity)
		r.Get("/hotels/count-by-type", h.countByType)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/rooms", h.hotelRooms)
		r.Get("/rooms", h.listRooms)
		r.Get("/rooms/{id}", h.getRoom)

		r.Group(func(r chi.Router) {
			r.Use(JWTAuth(h.JWTSecret))
			r.Put("/rooms/{id}/availability", h.reserveRoom)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/hotels", h.createHotel)
				r.Put("/hotels/{id}", h.updateHotel)
				r.Delete("/hotels/{id}", h.deleteHotel)
				r.Post("/hotels/{id}/rooms", h.createRoom)
				r.Delete("/hotels/{id}/rooms/{roomID}", h.deleteRoom)
				r.Put("/rooms/{id}", h.updateRoom)
			})
		})
	})
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps domain errors onto the status taxonomy.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- hotel handlers ----

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	in.ID = primitive.NilObjectID
	out, err := h.Hotels.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	resp, err := h.Hotels.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	var p domain.HotelPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	out, err := h.Hotels.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	if err := h.Hotels.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.HotelFilter

	if v := q.Get("city"); v != "" {
		f.City = &v
	}
	if v := q.Get("type"); v != "" {
		t := domain.HotelType(v)
		if !t.Valid() {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "unknown hotel type "+strconv.Quote(v))
			return
		}
		f.Type = &t
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "featured must be a boolean")
			return
		}
		f.Featured = &b
	}
	// Price bounds default downstream only when absent; an explicit value,
	// including zero, is passed through. Non-numeric input is rejected.
	if v := q.Get("min"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "min must be a number")
			return
		}
		f.MinPrice = &p
	}
	if v := q.Get("max"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "max must be a number")
			return
		}
		f.MaxPrice = &p
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	out, err := h.Search.Search(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) countByCity(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("cities")
	if raw == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Query", "cities is required (comma-separated)")
		return
	}
	cities := strings.Split(raw, ",")
	out, err := h.Search.CountByCity(r.Context(), cities)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) countByType(w http.ResponseWriter, r *http.Request) {
	out, err := h.Search.CountByType(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) hotelRooms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	out, err := h.Search.HotelRooms(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- room handlers ----

// roomResponse carries the created/deleted outcome plus a warning when the
// hotel link write failed after the primary write succeeded.
type roomResponse struct {
	Room    *domain.Room `json:"room,omitempty"`
	Deleted bool         `json:"deleted,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel id must be a hex object id")
		return
	}
	var in domain.Room
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	in.ID = primitive.NilObjectID

	room, err := h.Rooms.Create(r.Context(), hotelID, in)
	var le *domain.LinkError
	if err != nil && !errors.As(err, &le) {
		writeError(w, err)
		return
	}
	resp := roomResponse{Room: &room}
	if le != nil {
		// the room exists; report the inconsistency instead of masking it
		observability.ObserveLinkFailure(le.Op)
		log.Warn().Err(le).Msg("room created without hotel link")
		resp.Warning = le.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	out, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.Rooms.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	var p domain.RoomPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	out, err := h.Rooms.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel id must be a hex object id")
		return
	}
	roomID, err := pathID(r, "roomID")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "room id must be a hex object id")
		return
	}

	err = h.Rooms.Delete(r.Context(), hotelID, roomID)
	var le *domain.LinkError
	if err != nil && !errors.As(err, &le) {
		writeError(w, err)
		return
	}
	resp := roomResponse{Deleted: true}
	if le != nil {
		observability.ObserveLinkFailure(le.Op)
		log.Warn().Err(le).Msg("room deleted without hotel unlink")
		resp.Warning = le.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type reserveRequest struct {
	Number int         `json:"number"`
	Dates  []time.Time `json:"dates"`
}

func (h *Handlers) reserveRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a hex object id")
		return
	}
	var in reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.Rooms.Reserve(r.Context(), id, in.Number, in.Dates); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reserved": true})
}
