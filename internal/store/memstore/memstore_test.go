package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/hotel/internal/store/storetest"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

func TestStoreContract(test *testing.T) {
	storetest.Run(test, func(test *testing.T) booking.Store {
		return New()
	})
}

func TestNestedTransactionSharesLock(test *testing.T) {
	store := New()
	ctx := context.Background()
	err := store.WithTx(ctx, func(ctx context.Context, outer booking.Store) error {
		return outer.WithTx(ctx, func(ctx context.Context, inner booking.Store) error {
			_, err := inner.ListRooms(ctx)
			return err
		})
	})
	if err != nil {
		test.Fatalf("nested transaction: %v", err)
	}
}

func TestWithTxHonorsCanceledContext(test *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.WithTx(ctx, func(context.Context, booking.Store) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		test.Fatalf("expected canceled transaction to be skipped, got called=%v err=%v", called, err)
	}
}

func TestStoreErrorsCarryOperationCodes(test *testing.T) {
	store := New()
	_, err := store.GetReservation(context.Background(), 4)
	if !errors.Is(err, booking.ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	var operationError booking.OperationError
	if !errors.As(err, &operationError) {
		test.Fatalf("expected OperationError, got %T", err)
	}
	if operationError.Operation() != errorOperationStore || operationError.Subject() != errorSubjectReservation || operationError.Code() != errorCodeGet {
		test.Fatalf("unexpected error code %q", operationError.Error())
	}
}

func TestNextReservationIDStartsAtOne(test *testing.T) {
	store := New()
	next, err := store.NextReservationID(context.Background())
	if err != nil || next != 1 {
		test.Fatalf("expected 1, got %d (%v)", next, err)
	}
}
