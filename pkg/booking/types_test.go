package booking

import (
	"errors"
	"testing"
)

func TestParseRoomCategory(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		input   string
		want    RoomCategory
		wantErr error
	}{
		{name: "upper", input: "STANDARD", want: RoomCategoryStandard},
		{name: "lower with spaces", input: "  junior ", want: RoomCategoryJunior},
		{name: "suite alias", input: "master_suite", want: RoomCategoryMaster},
		{name: "empty", input: "", wantErr: ErrInvalidInput},
		{name: "unknown", input: "suite", wantErr: ErrInvalidInput},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			result, err := ParseRoomCategory(testCase.input)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					test.Fatalf("expected error %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				test.Fatalf("unexpected error: %v", err)
			}
			if result != testCase.want {
				test.Fatalf("expected %q, got %q", testCase.want, result)
			}
		})
	}
}

func TestParseNightlyPrice(test *testing.T) {
	test.Parallel()
	price, err := ParseNightlyPrice(" 1499.90 ")
	if err != nil {
		test.Fatalf("unexpected error: %v", err)
	}
	if price.String() != "1499.90" || price.WholeUnits() != 1499 {
		test.Fatalf("unexpected price %s (%d whole units)", price, price.WholeUnits())
	}
	for _, raw := range []string{"0", "-5", "abc", ""} {
		if _, err := ParseNightlyPrice(raw); !errors.Is(err, ErrInvalidInput) {
			test.Fatalf("%q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestNewAccountID(test *testing.T) {
	test.Parallel()
	id, err := NewAccountID(" guest-1 ")
	if err != nil {
		test.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "guest-1" {
		test.Fatalf("expected trimmed id, got %q", id)
	}
	if _, err := NewAccountID("   "); !errors.Is(err, ErrInvalidInput) {
		test.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNumericConstructors(test *testing.T) {
	test.Parallel()
	if _, err := NewRoomNumber(0); !errors.Is(err, ErrInvalidInput) {
		test.Fatalf("room number: expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewReservationID(-1); !errors.Is(err, ErrInvalidInput) {
		test.Fatalf("reservation id: expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewBalance(-1); !errors.Is(err, ErrInvalidInput) {
		test.Fatalf("balance: expected ErrInvalidInput, got %v", err)
	}
	if balance, err := NewBalance(0); err != nil || balance != 0 {
		test.Fatalf("balance: expected zero to be accepted, got %d %v", balance, err)
	}
	if _, err := NewAmount(-1); !errors.Is(err, ErrInvalidInput) {
		test.Fatalf("amount: expected ErrInvalidInput, got %v", err)
	}
}

func TestBalanceDebit(test *testing.T) {
	test.Parallel()
	remaining, err := Balance(5000).Debit(1000)
	if err != nil || remaining != 4000 {
		test.Fatalf("expected 4000, got %d %v", remaining, err)
	}
	remaining, err = Balance(5000).Debit(14000)
	if !errors.Is(err, ErrInsufficientBalance) {
		test.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if remaining != 5000 {
		test.Fatalf("expected balance to be returned unchanged, got %d", remaining)
	}
}

func TestNewReservationValidation(test *testing.T) {
	test.Parallel()
	accountID := mustAccountID(test, "guest")
	stay := mustStay(test, "2026-07-07", "2026-07-08")
	price := mustPrice(test, "100")

	testCases := []struct {
		name      string
		id        ReservationID
		accountID AccountID
		room      RoomNumber
		stay      Stay
		price     NightlyPrice
		cost      Amount
	}{
		{name: "invalid id", id: 0, accountID: accountID, room: 1, stay: stay, price: price, cost: 100},
		{name: "missing account", id: 1, room: 1, stay: stay, price: price, cost: 100},
		{name: "invalid room", id: 1, accountID: accountID, room: 0, stay: stay, price: price, cost: 100},
		{name: "unset stay", id: 1, accountID: accountID, room: 1, price: price, cost: 100},
		{name: "unset price", id: 1, accountID: accountID, room: 1, stay: stay, cost: 100},
		{name: "negative cost", id: 1, accountID: accountID, room: 1, stay: stay, price: price, cost: -1},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			_, err := NewReservation(testCase.id, testCase.accountID, testCase.room, testCase.stay, testCase.price, testCase.cost)
			if !errors.Is(err, ErrInvalidInput) {
				test.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestReservationWithStayKeepsPricing(test *testing.T) {
	test.Parallel()
	booked := mustReservationRecord(test, 4, mustAccountID(test, "guest"), 2, mustStay(test, "2026-07-07", "2026-07-08"), "2000", 2000)
	moved := booked.WithStay(mustStay(test, "2026-08-01", "2026-08-05"))
	if moved.TotalCost() != 2000 || moved.PricePerNight().String() != "2000.00" {
		test.Fatalf("expected pricing to be kept, got %d at %s", moved.TotalCost(), moved.PricePerNight())
	}
	if moved.Stay().Nights() != 4 {
		test.Fatalf("expected 4 nights, got %d", moved.Stay().Nights())
	}
	if booked.Stay().Nights() != 1 {
		test.Fatalf("expected booked to be untouched")
	}
}
