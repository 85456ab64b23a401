package console

import (
	"context"
	"fmt"
	"io"

	"github.com/MarkoPoloResearchLab/hotel/internal/report"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"github.com/shopspring/decimal"
)

type seedRoom struct {
	number   booking.RoomNumber
	category booking.RoomCategory
	price    int64
}

type seedAccount struct {
	id      string
	balance booking.Balance
}

var (
	seedRooms = []seedRoom{
		{number: 1, category: booking.RoomCategoryStandard, price: 1000},
		{number: 2, category: booking.RoomCategoryJunior, price: 2000},
		{number: 3, category: booking.RoomCategoryMaster, price: 3000},
	}
	seedAccounts = []seedAccount{
		{id: "1", balance: 5000},
		{id: "2", balance: 10000},
	}
	scenarioAttempts = []Attempt{
		{AccountID: "1", RoomNumber: 2, CheckIn: "30/06/2026", CheckOut: "07/07/2026"},
		{AccountID: "1", RoomNumber: 2, CheckIn: "07/07/2026", CheckOut: "30/06/2026"},
		{AccountID: "1", RoomNumber: 1, CheckIn: "07/07/2026", CheckOut: "08/07/2026"},
		{AccountID: "2", RoomNumber: 1, CheckIn: "07/07/2026", CheckOut: "09/07/2026"},
		{AccountID: "2", RoomNumber: 3, CheckIn: "07/07/2026", CheckOut: "08/07/2026"},
	}
)

const (
	scenarioUpdatedRoom     booking.RoomNumber = 1
	scenarioUpdatedCategory                    = booking.RoomCategoryMaster
	scenarioUpdatedPrice    int64              = 10000
)

// Attempt is one booking tried by the demonstration scenario. Dates use the
// dd/mm/yyyy menu format. Reservation is set on success, Err on failure.
type Attempt struct {
	AccountID   string
	RoomNumber  booking.RoomNumber
	CheckIn     string
	CheckOut    string
	Reservation booking.Reservation
	Err         error
}

// Seed registers the demonstration rooms and accounts.
func Seed(ctx context.Context, service *booking.Service) error {
	for _, room := range seedRooms {
		price, err := booking.NewNightlyPrice(decimal.NewFromInt(room.price))
		if err != nil {
			return err
		}
		if _, err := service.CreateRoom(ctx, room.number, room.category, price); err != nil {
			return fmt.Errorf("seed room %d: %w", room.number, err)
		}
	}
	for _, account := range seedAccounts {
		id, err := booking.NewAccountID(account.id)
		if err != nil {
			return err
		}
		if _, err := service.CreateAccountWithID(ctx, id, account.balance); err != nil {
			return fmt.Errorf("seed account %s: %w", account.id, err)
		}
	}
	return nil
}

// RunScenario seeds an empty service, tries the demonstration bookings, reprices
// room 1, and prints the final reports. Individual booking failures are part of
// the scenario and are returned in the attempts rather than as an error.
func RunScenario(ctx context.Context, service *booking.Service, output io.Writer) ([]Attempt, error) {
	printer := func(format string, arguments ...any) {
		_, _ = fmt.Fprintf(output, format, arguments...)
	}
	printer("--- Seeding rooms and accounts ---\n")
	if err := Seed(ctx, service); err != nil {
		return nil, err
	}

	printer("--- Booking attempts ---\n")
	attempts := make([]Attempt, 0, len(scenarioAttempts))
	for _, attempt := range scenarioAttempts {
		printer("Account %s books room %d (%s to %s)... ", attempt.AccountID, attempt.RoomNumber, attempt.CheckIn, attempt.CheckOut)
		attempt.Reservation, attempt.Err = bookAttempt(ctx, service, attempt)
		if attempt.Err != nil {
			printer("FAILED: %v\n", attempt.Err)
		} else {
			printer("OK: reservation %d, cost %d\n", attempt.Reservation.ID(), attempt.Reservation.TotalCost())
		}
		attempts = append(attempts, attempt)
	}

	printer("--- Updating room %d ---\n", scenarioUpdatedRoom)
	price, err := booking.NewNightlyPrice(decimal.NewFromInt(scenarioUpdatedPrice))
	if err != nil {
		return attempts, err
	}
	if _, err := service.UpdateRoom(ctx, scenarioUpdatedRoom, scenarioUpdatedCategory, price); err != nil {
		return attempts, err
	}

	printer("--- Final state ---\n")
	if err := report.All(ctx, output, service); err != nil {
		return attempts, err
	}
	return attempts, nil
}

func bookAttempt(ctx context.Context, service *booking.Service, attempt Attempt) (booking.Reservation, error) {
	accountID, err := booking.NewAccountID(attempt.AccountID)
	if err != nil {
		return booking.Reservation{}, err
	}
	checkIn, err := booking.ParseDayFirstDate(attempt.CheckIn)
	if err != nil {
		return booking.Reservation{}, err
	}
	checkOut, err := booking.ParseDayFirstDate(attempt.CheckOut)
	if err != nil {
		return booking.Reservation{}, err
	}
	return service.Book(ctx, accountID, attempt.RoomNumber, checkIn, checkOut)
}
