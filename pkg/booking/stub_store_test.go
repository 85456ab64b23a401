package booking

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubStore struct {
	rooms        map[RoomNumber]Room
	roomOrder    []RoomNumber
	accounts     map[AccountID]Account
	accountOrder []AccountID
	reservations []Reservation

	getRoomError       error
	listByRoomError    error
	insertReservError  error
	updateBalanceError error
	transactions       int
}

func newStubStore() *stubStore {
	return &stubStore{
		rooms:    make(map[RoomNumber]Room),
		accounts: make(map[AccountID]Account),
	}
}

func (store *stubStore) clone() *stubStore {
	copied := *store
	copied.rooms = make(map[RoomNumber]Room, len(store.rooms))
	for key, value := range store.rooms {
		copied.rooms[key] = value
	}
	copied.accounts = make(map[AccountID]Account, len(store.accounts))
	for key, value := range store.accounts {
		copied.accounts[key] = value
	}
	copied.roomOrder = append([]RoomNumber(nil), store.roomOrder...)
	copied.accountOrder = append([]AccountID(nil), store.accountOrder...)
	copied.reservations = append([]Reservation(nil), store.reservations...)
	return &copied
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	store.transactions++
	snapshot := store.clone()
	if err := fn(ctx, store); err != nil {
		store.rooms = snapshot.rooms
		store.roomOrder = snapshot.roomOrder
		store.accounts = snapshot.accounts
		store.accountOrder = snapshot.accountOrder
		store.reservations = snapshot.reservations
		return err
	}
	return nil
}

func (store *stubStore) GetRoom(ctx context.Context, number RoomNumber) (Room, error) {
	if store.getRoomError != nil {
		return Room{}, store.getRoomError
	}
	room, ok := store.rooms[number]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

func (store *stubStore) InsertRoom(ctx context.Context, room Room) error {
	if _, exists := store.rooms[room.Number()]; exists {
		return ErrAlreadyExists
	}
	store.rooms[room.Number()] = room
	store.roomOrder = append(store.roomOrder, room.Number())
	return nil
}

func (store *stubStore) UpdateRoom(ctx context.Context, room Room) error {
	if _, exists := store.rooms[room.Number()]; !exists {
		return ErrNotFound
	}
	store.rooms[room.Number()] = room
	return nil
}

func (store *stubStore) ListRooms(ctx context.Context) ([]Room, error) {
	rooms := make([]Room, 0, len(store.roomOrder))
	for index := len(store.roomOrder) - 1; index >= 0; index-- {
		rooms = append(rooms, store.rooms[store.roomOrder[index]])
	}
	return rooms, nil
}

func (store *stubStore) GetAccount(ctx context.Context, id AccountID) (Account, error) {
	account, ok := store.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (store *stubStore) InsertAccount(ctx context.Context, account Account) error {
	if _, exists := store.accounts[account.ID()]; exists {
		return ErrAlreadyExists
	}
	store.accounts[account.ID()] = account
	store.accountOrder = append(store.accountOrder, account.ID())
	return nil
}

func (store *stubStore) UpdateAccountBalance(ctx context.Context, id AccountID, balance Balance) error {
	if store.updateBalanceError != nil {
		return store.updateBalanceError
	}
	account, ok := store.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.balance = balance
	store.accounts[id] = account
	return nil
}

func (store *stubStore) ListAccounts(ctx context.Context) ([]Account, error) {
	accounts := make([]Account, 0, len(store.accountOrder))
	for _, id := range store.accountOrder {
		accounts = append(accounts, store.accounts[id])
	}
	return accounts, nil
}

func (store *stubStore) GetReservation(ctx context.Context, id ReservationID) (Reservation, error) {
	for _, reservation := range store.reservations {
		if reservation.ID() == id {
			return reservation, nil
		}
	}
	return Reservation{}, ErrNotFound
}

func (store *stubStore) ListReservationsByRoom(ctx context.Context, number RoomNumber) ([]Reservation, error) {
	if store.listByRoomError != nil {
		return nil, store.listByRoomError
	}
	var matching []Reservation
	for _, reservation := range store.reservations {
		if reservation.RoomNumber() == number {
			matching = append(matching, reservation)
		}
	}
	return matching, nil
}

func (store *stubStore) ListReservations(ctx context.Context) ([]Reservation, error) {
	listed := append([]Reservation(nil), store.reservations...)
	sort.Slice(listed, func(left, right int) bool { return listed[left].ID() > listed[right].ID() })
	return listed, nil
}

func (store *stubStore) NextReservationID(ctx context.Context) (ReservationID, error) {
	var highest ReservationID
	for _, reservation := range store.reservations {
		if reservation.ID() > highest {
			highest = reservation.ID()
		}
	}
	return highest + 1, nil
}

func (store *stubStore) InsertReservation(ctx context.Context, reservation Reservation) error {
	if store.insertReservError != nil {
		return store.insertReservError
	}
	store.reservations = append(store.reservations, reservation)
	return nil
}

func (store *stubStore) UpdateReservationStay(ctx context.Context, id ReservationID, stay Stay) error {
	for index, reservation := range store.reservations {
		if reservation.ID() == id {
			store.reservations[index] = reservation.WithStay(stay)
			return nil
		}
	}
	return ErrNotFound
}

func (store *stubStore) mustAccount(test *testing.T, id AccountID) Account {
	test.Helper()
	account, ok := store.accounts[id]
	if !ok {
		test.Fatalf("account %s not found", id)
	}
	return account
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustDate(test *testing.T, raw string) Date {
	test.Helper()
	value, err := ParseDate(raw)
	if err != nil {
		test.Fatalf("date: %v", err)
	}
	return value
}

func mustStay(test *testing.T, checkIn string, checkOut string) Stay {
	test.Helper()
	value, err := NewStay(mustDate(test, checkIn), mustDate(test, checkOut))
	if err != nil {
		test.Fatalf("stay: %v", err)
	}
	return value
}

func mustPrice(test *testing.T, raw string) NightlyPrice {
	test.Helper()
	value, err := ParseNightlyPrice(raw)
	if err != nil {
		test.Fatalf("price: %v", err)
	}
	return value
}

func mustAccountID(test *testing.T, raw string) AccountID {
	test.Helper()
	value, err := NewAccountID(raw)
	if err != nil {
		test.Fatalf("account id: %v", err)
	}
	return value
}

func mustRoom(test *testing.T, service *Service, number int64, category RoomCategory, price string) Room {
	test.Helper()
	room, err := service.CreateRoom(context.Background(), RoomNumber(number), category, mustPrice(test, price))
	if err != nil {
		test.Fatalf("create room %d: %v", number, err)
	}
	return room
}

func mustSeedAccount(test *testing.T, service *Service, id string, balance int64) AccountID {
	test.Helper()
	account, err := service.CreateAccountWithID(context.Background(), mustAccountID(test, id), Balance(balance))
	if err != nil {
		test.Fatalf("create account %s: %v", id, err)
	}
	return account.ID()
}

func mustBook(test *testing.T, service *Service, accountID AccountID, room int64, checkIn string, checkOut string) Reservation {
	test.Helper()
	reservation, err := service.Book(context.Background(), accountID, RoomNumber(room), mustDate(test, checkIn), mustDate(test, checkOut))
	if err != nil {
		test.Fatalf("book room %d %s..%s: %v", room, checkIn, checkOut, err)
	}
	return reservation
}

func mustReservationRecord(test *testing.T, id int64, accountID AccountID, room int64, stay Stay, price string, cost int64) Reservation {
	test.Helper()
	reservation, err := NewReservation(ReservationID(id), accountID, RoomNumber(room), stay, mustPrice(test, price), Amount(cost))
	if err != nil {
		test.Fatalf("reservation: %v", err)
	}
	return reservation
}

func decimalFromInt(raw int64) decimal.Decimal {
	return decimal.NewFromInt(raw)
}

func mustCivilDate(test *testing.T, year int, month time.Month, day int) Date {
	test.Helper()
	value, err := NewDate(year, month, day)
	if err != nil {
		test.Fatalf("date: %v", err)
	}
	return value
}
