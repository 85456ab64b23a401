// Package memstore keeps the room registry, account registry, and reservation
// ledger in process memory.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

const (
	errorOperationStore     = "store"
	errorSubjectRoom        = "room"
	errorSubjectAccount     = "account"
	errorSubjectReservation = "reservation"
	errorCodeGet            = "get"
	errorCodeDuplicate      = "duplicate"
	errorCodeUpdate         = "update"
)

type state struct {
	rooms        map[booking.RoomNumber]booking.Room
	roomOrder    []booking.RoomNumber
	accounts     map[booking.AccountID]booking.Account
	accountOrder []booking.AccountID
	reservations []booking.Reservation
}

func newState() *state {
	return &state{
		rooms:    make(map[booking.RoomNumber]booking.Room),
		accounts: make(map[booking.AccountID]booking.Account),
	}
}

func (current *state) clone() *state {
	copied := &state{
		rooms:        make(map[booking.RoomNumber]booking.Room, len(current.rooms)),
		roomOrder:    append([]booking.RoomNumber(nil), current.roomOrder...),
		accounts:     make(map[booking.AccountID]booking.Account, len(current.accounts)),
		accountOrder: append([]booking.AccountID(nil), current.accountOrder...),
		reservations: append([]booking.Reservation(nil), current.reservations...),
	}
	for number, room := range current.rooms {
		copied.rooms[number] = room
	}
	for id, account := range current.accounts {
		copied.accounts[id] = account
	}
	return copied
}

// Store implements booking.Store in memory. Transactions are serialized by a
// single lock and roll back by restoring a snapshot.
type Store struct {
	mutex *sync.RWMutex
	state *state
	inTx  bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{mutex: &sync.RWMutex{}, state: newState()}
}

// WithTx executes fn while holding the write lock.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore booking.Store) error) error {
	if store.inTx {
		return fn(ctx, store)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	snapshot := store.state.clone()
	transactionStore := &Store{mutex: store.mutex, state: store.state, inTx: true}
	if err := fn(ctx, transactionStore); err != nil {
		*store.state = *snapshot
		return err
	}
	return nil
}

func (store *Store) readLock() func() {
	if store.inTx {
		return func() {}
	}
	store.mutex.RLock()
	return store.mutex.RUnlock
}

func (store *Store) writeLock() func() {
	if store.inTx {
		return func() {}
	}
	store.mutex.Lock()
	return store.mutex.Unlock
}

func (store *Store) GetRoom(ctx context.Context, number booking.RoomNumber) (booking.Room, error) {
	defer store.readLock()()
	room, ok := store.state.rooms[number]
	if !ok {
		return booking.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, booking.ErrNotFound)
	}
	return room, nil
}

func (store *Store) InsertRoom(ctx context.Context, room booking.Room) error {
	defer store.writeLock()()
	if _, exists := store.state.rooms[room.Number()]; exists {
		return wrapStoreError(errorSubjectRoom, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	store.state.rooms[room.Number()] = room
	store.state.roomOrder = append(store.state.roomOrder, room.Number())
	return nil
}

func (store *Store) UpdateRoom(ctx context.Context, room booking.Room) error {
	defer store.writeLock()()
	if _, exists := store.state.rooms[room.Number()]; !exists {
		return wrapStoreError(errorSubjectRoom, errorCodeUpdate, booking.ErrNotFound)
	}
	store.state.rooms[room.Number()] = room
	return nil
}

func (store *Store) ListRooms(ctx context.Context) ([]booking.Room, error) {
	defer store.readLock()()
	rooms := make([]booking.Room, 0, len(store.state.roomOrder))
	for index := len(store.state.roomOrder) - 1; index >= 0; index-- {
		rooms = append(rooms, store.state.rooms[store.state.roomOrder[index]])
	}
	return rooms, nil
}

func (store *Store) GetAccount(ctx context.Context, id booking.AccountID) (booking.Account, error) {
	defer store.readLock()()
	account, ok := store.state.accounts[id]
	if !ok {
		return booking.Account{}, wrapStoreError(errorSubjectAccount, errorCodeGet, booking.ErrNotFound)
	}
	return account, nil
}

func (store *Store) InsertAccount(ctx context.Context, account booking.Account) error {
	defer store.writeLock()()
	if _, exists := store.state.accounts[account.ID()]; exists {
		return wrapStoreError(errorSubjectAccount, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	store.state.accounts[account.ID()] = account
	store.state.accountOrder = append(store.state.accountOrder, account.ID())
	return nil
}

func (store *Store) UpdateAccountBalance(ctx context.Context, id booking.AccountID, balance booking.Balance) error {
	defer store.writeLock()()
	if _, exists := store.state.accounts[id]; !exists {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, booking.ErrNotFound)
	}
	updated, err := booking.NewAccount(id, balance)
	if err != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, err)
	}
	store.state.accounts[id] = updated
	return nil
}

func (store *Store) ListAccounts(ctx context.Context) ([]booking.Account, error) {
	defer store.readLock()()
	accounts := make([]booking.Account, 0, len(store.state.accountOrder))
	for _, id := range store.state.accountOrder {
		accounts = append(accounts, store.state.accounts[id])
	}
	return accounts, nil
}

func (store *Store) GetReservation(ctx context.Context, id booking.ReservationID) (booking.Reservation, error) {
	defer store.readLock()()
	if index := store.reservationIndex(id); index >= 0 {
		return store.state.reservations[index], nil
	}
	return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, booking.ErrNotFound)
}

func (store *Store) ListReservationsByRoom(ctx context.Context, number booking.RoomNumber) ([]booking.Reservation, error) {
	defer store.readLock()()
	var matching []booking.Reservation
	for _, reservation := range store.state.reservations {
		if reservation.RoomNumber() == number {
			matching = append(matching, reservation)
		}
	}
	return matching, nil
}

func (store *Store) ListReservations(ctx context.Context) ([]booking.Reservation, error) {
	defer store.readLock()()
	listed := append([]booking.Reservation(nil), store.state.reservations...)
	sort.SliceStable(listed, func(left, right int) bool {
		return listed[left].ID() > listed[right].ID()
	})
	return listed, nil
}

func (store *Store) NextReservationID(ctx context.Context) (booking.ReservationID, error) {
	defer store.readLock()()
	var highest booking.ReservationID
	for _, reservation := range store.state.reservations {
		if reservation.ID() > highest {
			highest = reservation.ID()
		}
	}
	return highest + 1, nil
}

func (store *Store) InsertReservation(ctx context.Context, reservation booking.Reservation) error {
	defer store.writeLock()()
	if store.reservationIndex(reservation.ID()) >= 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	store.state.reservations = append(store.state.reservations, reservation)
	return nil
}

func (store *Store) UpdateReservationStay(ctx context.Context, id booking.ReservationID, stay booking.Stay) error {
	defer store.writeLock()()
	index := store.reservationIndex(id)
	if index < 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, booking.ErrNotFound)
	}
	store.state.reservations[index] = store.state.reservations[index].WithStay(stay)
	return nil
}

func (store *Store) reservationIndex(id booking.ReservationID) int {
	for index, reservation := range store.state.reservations {
		if reservation.ID() == id {
			return index
		}
	}
	return -1
}

func wrapStoreError(subject string, code string, err error) error {
	return booking.WrapError(errorOperationStore, subject, code, err)
}
