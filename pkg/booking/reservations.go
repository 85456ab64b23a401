package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Book reserves a room for an account over [checkIn, checkOut), debiting the
// stay's cost from the account. Validation, pricing, the balance check, the
// availability scan, the debit, and the ledger append all run in one store
// transaction, so a failed booking changes nothing.
func (service *Service) Book(ctx context.Context, accountID AccountID, roomNumber RoomNumber, checkIn Date, checkOut Date) (Reservation, error) {
	var booked Reservation
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if accountID.IsZero() {
			return fmt.Errorf("%w: account is required", ErrInvalidInput)
		}
		if _, err := NewRoomNumber(roomNumber.Int64()); err != nil {
			return err
		}
		if checkIn.IsZero() || checkOut.IsZero() {
			return fmt.Errorf("%w: check-in and check-out dates are required", ErrInvalidInput)
		}
		account, err := transactionStore.GetAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("account %s: %w", accountID, err)
		}
		room, err := transactionStore.GetRoom(ctx, roomNumber)
		if err != nil {
			return fmt.Errorf("room %d: %w", roomNumber, err)
		}
		stay, err := NewStay(checkIn, checkOut)
		if err != nil {
			return err
		}
		cost, err := QuoteStay(room.Price(), stay)
		if err != nil {
			return err
		}
		remaining, err := account.Balance().Debit(cost)
		if err != nil {
			return err
		}
		if err := ensureAvailable(ctx, transactionStore, roomNumber, stay, 0); err != nil {
			return err
		}
		reservationID, err := transactionStore.NextReservationID(ctx)
		if err != nil {
			return err
		}
		reservation, err := NewReservation(reservationID, accountID, roomNumber, stay, room.Price(), cost)
		if err != nil {
			return err
		}
		if err := transactionStore.UpdateAccountBalance(ctx, accountID, remaining); err != nil {
			return err
		}
		if err := transactionStore.InsertReservation(ctx, reservation); err != nil {
			return err
		}
		booked = reservation
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation:     operationBook,
		AccountID:     accountID,
		RoomNumber:    roomNumber,
		ReservationID: booked.ID(),
		Amount:        booked.TotalCost(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return booked, nil
}

// Rebook moves an existing reservation to new dates on the same room. The
// reservation is checked against every other reservation on the room; when the
// new stay is not free the ledger is left untouched. The booked price and total
// cost are not recomputed.
func (service *Service) Rebook(ctx context.Context, reservationID ReservationID, checkIn Date, checkOut Date) (Reservation, error) {
	var rebooked Reservation
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := NewReservationID(reservationID.Int64()); err != nil {
			return err
		}
		reservation, err := transactionStore.GetReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		stay, err := NewStay(checkIn, checkOut)
		if err != nil {
			return err
		}
		if err := ensureAvailable(ctx, transactionStore, reservation.RoomNumber(), stay, reservationID); err != nil {
			return err
		}
		if err := transactionStore.UpdateReservationStay(ctx, reservationID, stay); err != nil {
			return err
		}
		rebooked = reservation.WithStay(stay)
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation:     operationRebook,
		AccountID:     rebooked.AccountID(),
		RoomNumber:    rebooked.RoomNumber(),
		ReservationID: reservationID,
		Amount:        rebooked.TotalCost(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return rebooked, nil
}

// FindReservation looks a reservation up by id; found is false when it does not exist.
func (service *Service) FindReservation(ctx context.Context, id ReservationID) (Reservation, bool, error) {
	reservation, err := service.store.GetReservation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Reservation{}, false, nil
	}
	if err != nil {
		return Reservation{}, false, err
	}
	return reservation, true, nil
}

// ListReservations returns every reservation, newest first.
func (service *Service) ListReservations(ctx context.Context) ([]Reservation, error) {
	return service.store.ListReservations(ctx)
}

// QuoteStay prices a stay as nights times the whole-unit nightly rate; any
// fractional part of the rate is discarded before multiplying.
func QuoteStay(price NightlyPrice, stay Stay) (Amount, error) {
	if _, err := NewNightlyPrice(price.Decimal()); err != nil {
		return 0, err
	}
	nights := stay.Nights()
	if nights <= 0 {
		return 0, fmt.Errorf("%w: stay %s has no nights", ErrInvalidDateRange, stay)
	}
	total := decimal.NewFromInt(nights).Mul(decimal.NewFromInt(price.WholeUnits()))
	if total.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, WrapError(errorOperationService, errorSubjectCost, errorCodeOverflow, fmt.Errorf("%w: cost of %d nights at %s overflows", ErrInvalidInput, nights, price))
	}
	return NewAmount(total.IntPart())
}

// FindConflict returns the first reservation whose stay overlaps stay, ignoring
// the reservation with id exclude (pass 0 to consider all).
func FindConflict(reservations []Reservation, stay Stay, exclude ReservationID) (Reservation, bool) {
	for _, existing := range reservations {
		if exclude != 0 && existing.ID() == exclude {
			continue
		}
		if stay.Overlaps(existing.Stay()) {
			return existing, true
		}
	}
	return Reservation{}, false
}

func ensureAvailable(ctx context.Context, transactionStore Store, roomNumber RoomNumber, stay Stay, exclude ReservationID) error {
	existing, err := transactionStore.ListReservationsByRoom(ctx, roomNumber)
	if err != nil {
		return err
	}
	if conflict, found := FindConflict(existing, stay, exclude); found {
		return fmt.Errorf("%w: room %d is booked %s by reservation %d", ErrRoomOccupied, roomNumber, conflict.Stay(), conflict.ID())
	}
	return nil
}
