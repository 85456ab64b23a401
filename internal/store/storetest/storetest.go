// Package storetest holds behavior checks shared by every booking.Store implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

// Factory returns a fresh, empty store for one test.
type Factory func(test *testing.T) booking.Store

// Run exercises the store contract through booking.Service.
func Run(test *testing.T, newStore Factory) {
	test.Helper()
	testCases := []struct {
		name string
		run  func(test *testing.T, newStore Factory)
	}{
		{name: "rooms newest first", run: testRoomsNewestFirst},
		{name: "room lifecycle", run: testRoomLifecycle},
		{name: "accounts in creation order", run: testAccountsInCreationOrder},
		{name: "book debits and records", run: testBookDebitsAndRecords},
		{name: "failed transaction rolls back", run: testFailedTransactionRollsBack},
		{name: "rebook moves in place", run: testRebookMovesInPlace},
		{name: "concurrent bookings", run: testConcurrentBookings},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			testCase.run(test, newStore)
		})
	}
}

func testRoomsNewestFirst(test *testing.T, newStore Factory) {
	service := newService(test, newStore(test))
	for _, number := range []int64{3, 1, 2} {
		createRoom(test, service, number, booking.RoomCategoryStandard, "1000")
	}
	rooms, err := service.ListRooms(context.Background())
	if err != nil {
		test.Fatalf("list rooms: %v", err)
	}
	got := make([]booking.RoomNumber, 0, len(rooms))
	for _, room := range rooms {
		got = append(got, room.Number())
	}
	if fmt.Sprint(got) != "[2 1 3]" {
		test.Fatalf("expected [2 1 3], got %v", got)
	}
}

func testRoomLifecycle(test *testing.T, newStore Factory) {
	ctx := context.Background()
	service := newService(test, newStore(test))
	createRoom(test, service, 1, booking.RoomCategoryStandard, "1499.90")

	_, err := service.CreateRoom(ctx, 1, booking.RoomCategoryJunior, price(test, "10"))
	if !errors.Is(err, booking.ErrAlreadyExists) {
		test.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := service.UpdateRoom(ctx, 1, booking.RoomCategoryMaster, price(test, "10000")); err != nil {
		test.Fatalf("update room: %v", err)
	}
	room, ok, err := service.FindRoom(ctx, 1)
	if err != nil || !ok {
		test.Fatalf("find room: ok=%v err=%v", ok, err)
	}
	if room.Category() != booking.RoomCategoryMaster || room.Price().String() != "10000.00" {
		test.Fatalf("unexpected room %s %s", room.Category(), room.Price())
	}
	if _, err := service.UpdateRoom(ctx, 2, booking.RoomCategoryMaster, price(test, "10")); !errors.Is(err, booking.ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok, err := service.FindRoom(ctx, 2); err != nil || ok {
		test.Fatalf("expected missing room, got ok=%v err=%v", ok, err)
	}
}

func testAccountsInCreationOrder(test *testing.T, newStore Factory) {
	ctx := context.Background()
	service := newService(test, newStore(test))
	seedAccount(test, service, "zulu", 1)
	seedAccount(test, service, "alpha", 2)
	if _, err := service.CreateAccountWithID(ctx, accountID(test, "alpha"), 3); !errors.Is(err, booking.ErrAlreadyExists) {
		test.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	accounts, err := service.ListAccounts(ctx)
	if err != nil {
		test.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID().String() != "zulu" || accounts[1].Balance() != 2 {
		test.Fatalf("unexpected accounts %+v", accounts)
	}
}

func testBookDebitsAndRecords(test *testing.T, newStore Factory) {
	ctx := context.Background()
	service := newService(test, newStore(test))
	createRoom(test, service, 1, booking.RoomCategoryStandard, "1000")
	guest := seedAccount(test, service, "1", 5000)

	first := book(test, service, guest, 1, "2026-07-07", "2026-07-08")
	second := book(test, service, guest, 1, "2026-07-08", "2026-07-10")
	if first.ID() != 1 || second.ID() != 2 {
		test.Fatalf("expected ids 1 and 2, got %d and %d", first.ID(), second.ID())
	}
	account, _, err := service.FindAccount(ctx, guest)
	if err != nil {
		test.Fatalf("find account: %v", err)
	}
	if account.Balance() != 2000 {
		test.Fatalf("expected 2000 left, got %d", account.Balance())
	}
	reservations, err := service.ListReservations(ctx)
	if err != nil {
		test.Fatalf("list reservations: %v", err)
	}
	if len(reservations) != 2 || reservations[0].ID() != 2 {
		test.Fatalf("expected newest reservation first, got %+v", reservations)
	}
	stored, ok, err := service.FindReservation(ctx, 1)
	if err != nil || !ok {
		test.Fatalf("find reservation: ok=%v err=%v", ok, err)
	}
	if stored.CheckIn().String() != "2026-07-07" || stored.PricePerNight().String() != "1000.00" || stored.TotalCost() != 1000 {
		test.Fatalf("unexpected stored reservation %+v", stored)
	}
}

func testFailedTransactionRollsBack(test *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(test)
	service := newService(test, store)
	createRoom(test, service, 1, booking.RoomCategoryStandard, "1000")
	guest := seedAccount(test, service, "1", 5000)

	abort := errors.New("abort")
	err := store.WithTx(ctx, func(ctx context.Context, transactionStore booking.Store) error {
		if err := transactionStore.UpdateAccountBalance(ctx, guest, 1); err != nil {
			return err
		}
		room, err := booking.NewRoom(9, booking.RoomCategoryJunior, price(test, "5"))
		if err != nil {
			return err
		}
		if err := transactionStore.InsertRoom(ctx, room); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		test.Fatalf("expected abort, got %v", err)
	}
	account, _, err := service.FindAccount(ctx, guest)
	if err != nil || account.Balance() != 5000 {
		test.Fatalf("expected balance 5000 after rollback, got %d (%v)", account.Balance(), err)
	}
	if _, ok, _ := service.FindRoom(ctx, 9); ok {
		test.Fatalf("expected room 9 to be rolled back")
	}
}

func testRebookMovesInPlace(test *testing.T, newStore Factory) {
	ctx := context.Background()
	service := newService(test, newStore(test))
	createRoom(test, service, 1, booking.RoomCategoryStandard, "1000")
	guest := seedAccount(test, service, "1", 50000)
	first := book(test, service, guest, 1, "2026-07-07", "2026-07-09")
	book(test, service, guest, 1, "2026-07-12", "2026-07-14")

	moved, err := service.Rebook(ctx, first.ID(), date(test, "2026-07-08"), date(test, "2026-07-12"))
	if err != nil {
		test.Fatalf("rebook: %v", err)
	}
	if moved.TotalCost() != first.TotalCost() {
		test.Fatalf("expected cost %d to be kept, got %d", first.TotalCost(), moved.TotalCost())
	}
	_, err = service.Rebook(ctx, first.ID(), date(test, "2026-07-13"), date(test, "2026-07-15"))
	if !errors.Is(err, booking.ErrRoomOccupied) {
		test.Fatalf("expected ErrRoomOccupied, got %v", err)
	}
	stored, _, err := service.FindReservation(ctx, first.ID())
	if err != nil {
		test.Fatalf("find reservation: %v", err)
	}
	if stored.Stay().String() != "2026-07-08..2026-07-12" {
		test.Fatalf("expected stay from successful rebook, got %s", stored.Stay())
	}
	reservations, err := service.ListReservations(ctx)
	if err != nil {
		test.Fatalf("list reservations: %v", err)
	}
	if len(reservations) != 2 || reservations[1].ID() != first.ID() {
		test.Fatalf("expected reservation to keep its position, got %+v", reservations)
	}
}

func testConcurrentBookings(test *testing.T, newStore Factory) {
	ctx := context.Background()
	service := newService(test, newStore(test))
	createRoom(test, service, 1, booking.RoomCategoryStandard, "100")
	const guests = 8
	ids := make([]booking.AccountID, 0, guests)
	for index := 0; index < guests; index++ {
		ids = append(ids, seedAccount(test, service, fmt.Sprintf("guest-%d", index), 1000))
	}

	checkIn, checkOut := date(test, "2026-07-07"), date(test, "2026-07-09")
	var waitGroup sync.WaitGroup
	results := make(chan error, guests)
	for _, id := range ids {
		waitGroup.Add(1)
		go func(id booking.AccountID) {
			defer waitGroup.Done()
			_, err := service.Book(ctx, id, 1, checkIn, checkOut)
			results <- err
		}(id)
	}
	waitGroup.Wait()
	close(results)

	var booked, occupied int
	for err := range results {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, booking.ErrRoomOccupied):
			occupied++
		default:
			test.Fatalf("unexpected error: %v", err)
		}
	}
	if booked != 1 || occupied != guests-1 {
		test.Fatalf("expected one booking and %d conflicts, got %d and %d", guests-1, booked, occupied)
	}
}

func newService(test *testing.T, store booking.Store) *booking.Service {
	test.Helper()
	service, err := booking.NewService(store)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func price(test *testing.T, raw string) booking.NightlyPrice {
	test.Helper()
	value, err := booking.ParseNightlyPrice(raw)
	if err != nil {
		test.Fatalf("price: %v", err)
	}
	return value
}

func date(test *testing.T, raw string) booking.Date {
	test.Helper()
	value, err := booking.ParseDate(raw)
	if err != nil {
		test.Fatalf("date: %v", err)
	}
	return value
}

func accountID(test *testing.T, raw string) booking.AccountID {
	test.Helper()
	value, err := booking.NewAccountID(raw)
	if err != nil {
		test.Fatalf("account id: %v", err)
	}
	return value
}

func createRoom(test *testing.T, service *booking.Service, number int64, category booking.RoomCategory, rate string) {
	test.Helper()
	if _, err := service.CreateRoom(context.Background(), booking.RoomNumber(number), category, price(test, rate)); err != nil {
		test.Fatalf("create room %d: %v", number, err)
	}
}

func seedAccount(test *testing.T, service *booking.Service, id string, balance int64) booking.AccountID {
	test.Helper()
	account, err := service.CreateAccountWithID(context.Background(), accountID(test, id), booking.Balance(balance))
	if err != nil {
		test.Fatalf("create account %s: %v", id, err)
	}
	return account.ID()
}

func book(test *testing.T, service *booking.Service, guest booking.AccountID, room int64, checkIn string, checkOut string) booking.Reservation {
	test.Helper()
	reservation, err := service.Book(context.Background(), guest, booking.RoomNumber(room), date(test, checkIn), date(test, checkOut))
	if err != nil {
		test.Fatalf("book room %d: %v", room, err)
	}
	return reservation
}
