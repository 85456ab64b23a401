package booking

import (
	"context"
	"errors"
	"testing"
)

type recorderLogger struct {
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.entries = append(logger.entries, entry)
}

func TestServiceLogsBookOperation(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	service := mustNewService(test, newStubStore(), WithOperationLogger(logger))
	mustRoom(test, service, 1, RoomCategoryStandard, "1000")
	accountID := mustSeedAccount(test, service, "1", 5000)
	logger.entries = nil

	reservation := mustBook(test, service, accountID, 1, "2026-07-07", "2026-07-08")
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Operation != operationBook || entry.AccountID != accountID || entry.RoomNumber != 1 || entry.ReservationID != reservation.ID() || entry.Amount != 1000 {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.Error != nil || entry.Status != operationStatusOK {
		test.Fatalf("expected successful log entry, got %+v", entry)
	}
}

func TestServiceLogsErrorStatus(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	service := mustNewService(test, newStubStore(), WithOperationLogger(logger))

	_, err := service.Rebook(context.Background(), 9, mustDate(test, "2026-07-07"), mustDate(test, "2026-07-08"))
	if !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	if logger.entries[0].Status != operationStatusError || logger.entries[0].Error == nil {
		test.Fatalf("expected error log entry, got %+v", logger.entries[0])
	}
	if logger.entries[0].Operation != operationRebook || logger.entries[0].ReservationID != 9 {
		test.Fatalf("unexpected log entry: %+v", logger.entries[0])
	}
}
