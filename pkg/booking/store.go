package booking

import "context"

// RoomRegistry stores rooms keyed by number.
type RoomRegistry interface {
	// GetRoom returns ErrNotFound when the room is absent.
	GetRoom(ctx context.Context, number RoomNumber) (Room, error)
	// InsertRoom returns ErrAlreadyExists when the number is taken.
	InsertRoom(ctx context.Context, room Room) error
	// UpdateRoom replaces category and price; ErrNotFound when absent.
	UpdateRoom(ctx context.Context, room Room) error
	// ListRooms returns rooms newest first.
	ListRooms(ctx context.Context) ([]Room, error)
}

// AccountRegistry stores accounts keyed by id.
type AccountRegistry interface {
	GetAccount(ctx context.Context, id AccountID) (Account, error)
	InsertAccount(ctx context.Context, account Account) error
	UpdateAccountBalance(ctx context.Context, id AccountID, balance Balance) error
	// ListAccounts returns accounts in creation order.
	ListAccounts(ctx context.Context) ([]Account, error)
}

// ReservationLedger is the ordered collection of reservations.
type ReservationLedger interface {
	GetReservation(ctx context.Context, id ReservationID) (Reservation, error)
	// ListReservationsByRoom returns every reservation on a room, in no particular order.
	ListReservationsByRoom(ctx context.Context, number RoomNumber) ([]Reservation, error)
	// ListReservations returns every reservation, highest id first.
	ListReservations(ctx context.Context) ([]Reservation, error)
	// NextReservationID returns the highest id ever stored plus one, or 1 when empty.
	NextReservationID(ctx context.Context) (ReservationID, error)
	InsertReservation(ctx context.Context, reservation Reservation) error
	// UpdateReservationStay moves a reservation in place without changing its position.
	UpdateReservationStay(ctx context.Context, id ReservationID, stay Stay) error
}

// Store is the persistence contract used by Service.
// WithTx runs fn as a single critical section: no other write interleaves with it,
// and a non-nil error from fn leaves the store exactly as it was.
type Store interface {
	RoomRegistry
	AccountRegistry
	ReservationLedger
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
}
