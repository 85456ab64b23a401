package oplog

import (
	"context"
	"fmt"
	"testing"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogOperationSuccess(test *testing.T) {
	test.Parallel()
	core, recorded := observer.New(zapcore.InfoLevel)
	accountID, err := booking.NewAccountID("guest-1")
	if err != nil {
		test.Fatalf("account id: %v", err)
	}
	New(zap.New(core)).LogOperation(context.Background(), booking.OperationLog{
		Operation:     "book",
		AccountID:     accountID,
		RoomNumber:    3,
		ReservationID: 7,
		Amount:        3000,
		Status:        "ok",
	})

	entries := recorded.All()
	if len(entries) != 1 {
		test.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != messageOperation {
		test.Fatalf("unexpected entry %+v", entries[0].Entry)
	}
	fields := entries[0].ContextMap()
	if fields["account_id"] != "guest-1" || fields["room_number"] != int64(3) || fields["reservation_id"] != int64(7) || fields["amount"] != int64(3000) {
		test.Fatalf("unexpected fields %+v", fields)
	}
}

func TestLogOperationFailure(test *testing.T) {
	test.Parallel()
	core, recorded := observer.New(zapcore.InfoLevel)
	New(zap.New(core)).LogOperation(context.Background(), booking.OperationLog{
		Operation:  "book",
		RoomNumber: 1,
		Status:     "error",
		Error:      fmt.Errorf("room 1: %w", booking.ErrRoomOccupied),
	})

	entries := recorded.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		test.Fatalf("expected one warn entry, got %+v", entries)
	}
	fields := entries[0].ContextMap()
	if fields["kind"] != booking.ErrRoomOccupied.Error() {
		test.Fatalf("expected kind field, got %+v", fields)
	}
	if _, ok := fields["account_id"]; ok {
		test.Fatalf("expected unset account to be omitted")
	}
}

func TestNilLoggerDiscards(test *testing.T) {
	test.Parallel()
	New(nil).LogOperation(context.Background(), booking.OperationLog{Operation: "book", Status: "ok"})
}
