// Package gormstore keeps the booking registries in SQLite through GORM.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	inMemoryDSN             = ":memory:"
	sqliteConstraintCode    = 19
	errorOperationStore     = "store"
	errorSubjectRoom        = "room"
	errorSubjectAccount     = "account"
	errorSubjectReservation = "reservation"
	errorCodeOpen           = "open"
	errorCodeMigrate        = "migrate"
	errorCodeGet            = "get"
	errorCodeInsert         = "insert"
	errorCodeDuplicate      = "duplicate"
	errorCodeUpdate         = "update"
	errorCodeList           = "list"
	errorCodeSequence       = "sequence"
	errorCodeInvalid        = "invalid"
)

// Store implements booking.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db. Call Migrate before first use.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OpenInMemory opens a private in-memory SQLite database and migrates it.
// The pool is pinned to one connection so the database lives as long as the
// returned handle and transactions run one at a time.
func OpenInMemory(ctx context.Context) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(inMemoryDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, wrapStoreError("database", errorCodeOpen, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, wrapStoreError("database", errorCodeOpen, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	if err := Migrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the booking tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return wrapStoreError("database", errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore booking.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) GetRoom(ctx context.Context, number booking.RoomNumber) (booking.Room, error) {
	var model Room
	err := store.db.WithContext(ctx).Where("room_number = ?", number.Int64()).Take(&model).Error
	if err != nil {
		return booking.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, notFoundOr(err))
	}
	room, err := mapRoom(model)
	if err != nil {
		return booking.Room{}, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
	}
	return room, nil
}

func (store *Store) InsertRoom(ctx context.Context, room booking.Room) error {
	sequence, err := store.nextSequence(ctx, &Room{})
	if err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeSequence, err)
	}
	model := Room{
		RoomNumber:    room.Number().Int64(),
		Category:      room.Category().String(),
		PricePerNight: room.Price().Decimal(),
		Sequence:      sequence,
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isConflict(err) {
		return wrapStoreError(errorSubjectRoom, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) UpdateRoom(ctx context.Context, room booking.Room) error {
	result := store.db.WithContext(ctx).
		Model(&Room{}).
		Where("room_number = ?", room.Number().Int64()).
		Updates(map[string]any{
			"category":        room.Category().String(),
			"price_per_night": room.Price().Decimal(),
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectRoom, errorCodeUpdate, booking.ErrNotFound)
	}
	return nil
}

func (store *Store) ListRooms(ctx context.Context) ([]booking.Room, error) {
	var rows []Room
	if err := store.db.WithContext(ctx).Order("sequence DESC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeList, err)
	}
	rooms := make([]booking.Room, 0, len(rows))
	for _, row := range rows {
		room, err := mapRoom(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (store *Store) GetAccount(ctx context.Context, id booking.AccountID) (booking.Account, error) {
	var model Account
	err := store.db.WithContext(ctx).Where("account_id = ?", id.String()).Take(&model).Error
	if err != nil {
		return booking.Account{}, wrapStoreError(errorSubjectAccount, errorCodeGet, notFoundOr(err))
	}
	account, err := mapAccount(model)
	if err != nil {
		return booking.Account{}, wrapStoreError(errorSubjectAccount, errorCodeInvalid, err)
	}
	return account, nil
}

func (store *Store) InsertAccount(ctx context.Context, account booking.Account) error {
	sequence, err := store.nextSequence(ctx, &Account{})
	if err != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeSequence, err)
	}
	model := Account{
		AccountID: account.ID().String(),
		Balance:   account.Balance().Int64(),
		Sequence:  sequence,
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isConflict(err) {
		return wrapStoreError(errorSubjectAccount, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) UpdateAccountBalance(ctx context.Context, id booking.AccountID, balance booking.Balance) error {
	if _, err := booking.NewBalance(balance.Int64()); err != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, err)
	}
	result := store.db.WithContext(ctx).
		Model(&Account{}).
		Where("account_id = ?", id.String()).
		Update("balance", balance.Int64())
	if result.Error != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, booking.ErrNotFound)
	}
	return nil
}

func (store *Store) ListAccounts(ctx context.Context) ([]booking.Account, error) {
	var rows []Account
	if err := store.db.WithContext(ctx).Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectAccount, errorCodeList, err)
	}
	accounts := make([]booking.Account, 0, len(rows))
	for _, row := range rows {
		account, err := mapAccount(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectAccount, errorCodeInvalid, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (store *Store) GetReservation(ctx context.Context, id booking.ReservationID) (booking.Reservation, error) {
	var model Reservation
	err := store.db.WithContext(ctx).Where("reservation_id = ?", id.Int64()).Take(&model).Error
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, notFoundOr(err))
	}
	reservation, err := mapReservation(model)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	return reservation, nil
}

func (store *Store) ListReservationsByRoom(ctx context.Context, number booking.RoomNumber) ([]booking.Reservation, error) {
	return store.listReservations(ctx, store.db.WithContext(ctx).Where("room_number = ?", number.Int64()))
}

func (store *Store) ListReservations(ctx context.Context) ([]booking.Reservation, error) {
	return store.listReservations(ctx, store.db.WithContext(ctx).Order("reservation_id DESC"))
}

func (store *Store) NextReservationID(ctx context.Context) (booking.ReservationID, error) {
	var highest maxValue
	err := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Select("coalesce(max(reservation_id),0) as value").
		Scan(&highest).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectReservation, errorCodeSequence, err)
	}
	return booking.NewReservationID(highest.Value + 1)
}

func (store *Store) InsertReservation(ctx context.Context, reservation booking.Reservation) error {
	now := time.Now().UTC()
	model := Reservation{
		ReservationID: reservation.ID().Int64(),
		AccountID:     reservation.AccountID().String(),
		RoomNumber:    reservation.RoomNumber().Int64(),
		CheckIn:       datatypes.Date(reservation.CheckIn().Time()),
		CheckOut:      datatypes.Date(reservation.CheckOut().Time()),
		PricePerNight: reservation.PricePerNight().Decimal(),
		TotalCost:     reservation.TotalCost().Int64(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isConflict(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeDuplicate, booking.ErrAlreadyExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) UpdateReservationStay(ctx context.Context, id booking.ReservationID, stay booking.Stay) error {
	result := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("reservation_id = ?", id.Int64()).
		Updates(map[string]any{
			"check_in":   datatypes.Date(stay.CheckIn().Time()),
			"check_out":  datatypes.Date(stay.CheckOut().Time()),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, booking.ErrNotFound)
	}
	return nil
}

func (store *Store) listReservations(ctx context.Context, query *gorm.DB) ([]booking.Reservation, error) {
	var rows []Reservation
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	reservations := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := mapReservation(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (store *Store) nextSequence(ctx context.Context, model any) (int64, error) {
	var highest maxValue
	err := store.db.WithContext(ctx).
		Model(model).
		Select("coalesce(max(sequence),0) as value").
		Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	return highest.Value + 1, nil
}

type maxValue struct {
	Value int64
}

func mapRoom(row Room) (booking.Room, error) {
	number, err := booking.NewRoomNumber(row.RoomNumber)
	if err != nil {
		return booking.Room{}, err
	}
	category, err := booking.ParseRoomCategory(row.Category)
	if err != nil {
		return booking.Room{}, err
	}
	price, err := booking.NewNightlyPrice(row.PricePerNight)
	if err != nil {
		return booking.Room{}, err
	}
	return booking.NewRoom(number, category, price)
}

func mapAccount(row Account) (booking.Account, error) {
	id, err := booking.NewAccountID(row.AccountID)
	if err != nil {
		return booking.Account{}, err
	}
	balance, err := booking.NewBalance(row.Balance)
	if err != nil {
		return booking.Account{}, err
	}
	return booking.NewAccount(id, balance)
}

func mapReservation(row Reservation) (booking.Reservation, error) {
	id, err := booking.NewReservationID(row.ReservationID)
	if err != nil {
		return booking.Reservation{}, err
	}
	accountID, err := booking.NewAccountID(row.AccountID)
	if err != nil {
		return booking.Reservation{}, err
	}
	roomNumber, err := booking.NewRoomNumber(row.RoomNumber)
	if err != nil {
		return booking.Reservation{}, err
	}
	stay, err := booking.NewStay(booking.DateOf(time.Time(row.CheckIn)), booking.DateOf(time.Time(row.CheckOut)))
	if err != nil {
		return booking.Reservation{}, err
	}
	price, err := booking.NewNightlyPrice(row.PricePerNight)
	if err != nil {
		return booking.Reservation{}, err
	}
	totalCost, err := booking.NewAmount(row.TotalCost)
	if err != nil {
		return booking.Reservation{}, err
	}
	return booking.NewReservation(id, accountID, roomNumber, stay, price, totalCost)
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.ErrNotFound
	}
	return err
}

func wrapStoreError(subject string, code string, err error) error {
	return booking.WrapError(errorOperationStore, subject, code, err)
}

func isConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
