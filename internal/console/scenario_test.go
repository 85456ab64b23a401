package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MarkoPoloResearchLab/hotel/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

func TestRunScenarioOutcomes(test *testing.T) {
	test.Parallel()
	ctx := context.Background()
	service := newTestService(test)
	var output bytes.Buffer

	attempts, err := RunScenario(ctx, service, &output)
	if err != nil {
		test.Fatalf("run scenario: %v", err)
	}
	expected := []error{
		booking.ErrInsufficientBalance,
		booking.ErrInvalidDateRange,
		nil,
		booking.ErrRoomOccupied,
		nil,
	}
	if len(attempts) != len(expected) {
		test.Fatalf("expected %d attempts, got %d", len(expected), len(attempts))
	}
	for index, want := range expected {
		got := attempts[index].Err
		if want == nil && got != nil {
			test.Fatalf("attempt %d: unexpected error %v", index, got)
		}
		if want != nil && !errors.Is(got, want) {
			test.Fatalf("attempt %d: expected %v, got %v", index, want, got)
		}
	}
	if attempts[2].Reservation.ID() != 1 || attempts[2].Reservation.TotalCost() != 1000 {
		test.Fatalf("unexpected third attempt %+v", attempts[2].Reservation)
	}
	if attempts[4].Reservation.ID() != 2 || attempts[4].Reservation.TotalCost() != 3000 {
		test.Fatalf("unexpected fifth attempt %+v", attempts[4].Reservation)
	}

	assertBalance(test, service, "1", 4000)
	assertBalance(test, service, "2", 7000)
	room, ok, err := service.FindRoom(ctx, 1)
	if err != nil || !ok {
		test.Fatalf("find room: ok=%v err=%v", ok, err)
	}
	if room.Category() != booking.RoomCategoryMaster || room.Price().String() != "10000.00" {
		test.Fatalf("expected room 1 repriced, got %s %s", room.Category(), room.Price())
	}
	reservation, _, err := service.FindReservation(ctx, 1)
	if err != nil || reservation.TotalCost() != 1000 || reservation.PricePerNight().String() != "1000.00" {
		test.Fatalf("expected booked price to survive the update, got %+v (%v)", reservation, err)
	}

	printed := output.String()
	for _, fragment := range []string{
		"| 1      | MASTER   | 10000.00 |",
		"| 1       | 4000    |",
		"| 2       | 7000    |",
		"| 2  | 2       | 3    | 2026-07-07 | 2026-07-08 | 3000 |",
		"FAILED: ",
	} {
		if !strings.Contains(printed, fragment) {
			test.Fatalf("expected output to contain %q:\n%s", fragment, printed)
		}
	}
}

func TestRunScenarioRequiresEmptyService(test *testing.T) {
	test.Parallel()
	service := newTestService(test)
	if err := Seed(context.Background(), service); err != nil {
		test.Fatalf("seed: %v", err)
	}
	_, err := RunScenario(context.Background(), service, &bytes.Buffer{})
	if !errors.Is(err, booking.ErrAlreadyExists) {
		test.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func newTestService(test *testing.T) *booking.Service {
	test.Helper()
	service, err := booking.NewService(memstore.New())
	if err != nil {
		test.Fatalf("service: %v", err)
	}
	return service
}

func assertBalance(test *testing.T, service *booking.Service, rawID string, want booking.Balance) {
	test.Helper()
	id, err := booking.NewAccountID(rawID)
	if err != nil {
		test.Fatalf("account id: %v", err)
	}
	account, ok, err := service.FindAccount(context.Background(), id)
	if err != nil || !ok {
		test.Fatalf("find account %s: ok=%v err=%v", rawID, ok, err)
	}
	if account.Balance() != want {
		test.Fatalf("account %s: expected %d, got %d", rawID, want, account.Balance())
	}
}
