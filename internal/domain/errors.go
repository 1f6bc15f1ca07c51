// Package domain defines the booking entities, the repository ports and the
// error taxonomy shared by every layer. Sentinel values let handlers map
// failures to HTTP statuses without knowing anything about the store.
package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a referenced Hotel, Room or User id does not
// exist. Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")

// ErrInvalid is returned for malformed attribute payloads. Handlers translate
// it into a 400.
var ErrInvalid = errors.New("invalid input")

// ErrDuplicate is returned when a unique constraint (username, email) is
// violated. Handlers translate it into a 409.
var ErrDuplicate = errors.New("already exists")

// LinkError reports a failed Hotel.rooms write after the primary Room write
// already succeeded. The primary outcome stands; callers must surface both
// rather than masking one with the other.
type LinkError struct {
	Op      string // "link" or "unlink"
	HotelID primitive.ObjectID
	RoomID  primitive.ObjectID
	Err     error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s room %s on hotel %s: %v", e.Op, e.RoomID.Hex(), e.HotelID.Hex(), e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }
