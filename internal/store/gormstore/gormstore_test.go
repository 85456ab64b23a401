package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/hotel/internal/store/storetest"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestStoreContract(test *testing.T) {
	storetest.Run(test, func(test *testing.T) booking.Store {
		return New(openTestDB(test))
	})
}

func TestInMemoryDatabasesAreIsolated(test *testing.T) {
	ctx := context.Background()
	first := New(openTestDB(test))
	second := New(openTestDB(test))
	room, err := booking.NewRoom(1, booking.RoomCategoryStandard, mustPrice(test, "1000"))
	if err != nil {
		test.Fatalf("new room: %v", err)
	}
	if err := first.InsertRoom(ctx, room); err != nil {
		test.Fatalf("insert room: %v", err)
	}
	if _, err := second.GetRoom(ctx, 1); !errors.Is(err, booking.ErrNotFound) {
		test.Fatalf("expected ErrNotFound in second database, got %v", err)
	}
}

func TestPriceKeepsFractionalDigits(test *testing.T) {
	ctx := context.Background()
	store := New(openTestDB(test))
	room, err := booking.NewRoom(7, booking.RoomCategoryJunior, mustPrice(test, "1499.95"))
	if err != nil {
		test.Fatalf("new room: %v", err)
	}
	if err := store.InsertRoom(ctx, room); err != nil {
		test.Fatalf("insert room: %v", err)
	}
	stored, err := store.GetRoom(ctx, 7)
	if err != nil {
		test.Fatalf("get room: %v", err)
	}
	if !stored.Price().Decimal().Equal(decimal.RequireFromString("1499.95")) {
		test.Fatalf("expected 1499.95, got %s", stored.Price().Decimal())
	}
}

func TestCorruptRowsAreRejected(test *testing.T) {
	ctx := context.Background()
	db := openTestDB(test)
	row := Room{RoomNumber: 3, Category: "PENTHOUSE", PricePerNight: decimal.NewFromInt(10), Sequence: 1}
	if err := db.Create(&row).Error; err != nil {
		test.Fatalf("seed row: %v", err)
	}
	_, err := New(db).GetRoom(ctx, 3)
	var operationError booking.OperationError
	if !errors.As(err, &operationError) || operationError.Code() != errorCodeInvalid {
		test.Fatalf("expected invalid row error, got %v", err)
	}
}

func TestReservationDatesRoundTrip(test *testing.T) {
	ctx := context.Background()
	db := openTestDB(test)
	store := New(db)
	checkIn, err := booking.ParseDate("2026-12-31")
	if err != nil {
		test.Fatalf("parse: %v", err)
	}
	stay, err := booking.NewStay(checkIn, checkIn.AddDays(2))
	if err != nil {
		test.Fatalf("stay: %v", err)
	}
	accountID, err := booking.NewAccountID("guest")
	if err != nil {
		test.Fatalf("account id: %v", err)
	}
	reservation, err := booking.NewReservation(1, accountID, 4, stay, mustPrice(test, "100"), 200)
	if err != nil {
		test.Fatalf("reservation: %v", err)
	}
	if err := store.InsertReservation(ctx, reservation); err != nil {
		test.Fatalf("insert reservation: %v", err)
	}
	if err := store.InsertReservation(ctx, reservation); !errors.Is(err, booking.ErrAlreadyExists) {
		test.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	stored, err := store.GetReservation(ctx, 1)
	if err != nil {
		test.Fatalf("get reservation: %v", err)
	}
	if stored.Stay().String() != "2026-12-31..2027-01-02" {
		test.Fatalf("unexpected stay %s", stored.Stay())
	}
	var row Reservation
	if err := db.Take(&row, "reservation_id = ?", 1).Error; err != nil {
		test.Fatalf("read row: %v", err)
	}
	if got := time.Time(row.CheckOut).Format("2006-01-02"); got != "2027-01-02" {
		test.Fatalf("unexpected stored check-out %s", got)
	}
}

func openTestDB(test *testing.T) *gorm.DB {
	test.Helper()
	db, err := OpenInMemory(context.Background())
	if err != nil {
		test.Fatalf("open database: %v", err)
	}
	test.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustPrice(test *testing.T, raw string) booking.NightlyPrice {
	test.Helper()
	price, err := booking.ParseNightlyPrice(raw)
	if err != nil {
		test.Fatalf("price: %v", err)
	}
	return price
}
