package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Room mirrors the rooms table.
type Room struct {
	RoomNumber    int64           `gorm:"primaryKey;autoIncrement:false"`
	Category      string          `gorm:"not null"`
	PricePerNight decimal.Decimal `gorm:"type:text;not null"`
	Sequence      int64           `gorm:"not null;uniqueIndex"`
}

func (Room) TableName() string { return "rooms" }

// Account mirrors the accounts table.
type Account struct {
	AccountID string `gorm:"primaryKey"`
	Balance   int64  `gorm:"not null"`
	Sequence  int64  `gorm:"not null;uniqueIndex"`
}

func (Account) TableName() string { return "accounts" }

// Reservation mirrors the reservations table.
type Reservation struct {
	ReservationID int64           `gorm:"primaryKey;autoIncrement:false"`
	AccountID     string          `gorm:"not null;index"`
	RoomNumber    int64           `gorm:"not null;index:idx_reservations_room_stay,priority:1"`
	CheckIn       datatypes.Date  `gorm:"not null;index:idx_reservations_room_stay,priority:2"`
	CheckOut      datatypes.Date  `gorm:"not null"`
	PricePerNight decimal.Decimal `gorm:"type:text;not null"`
	TotalCost     int64           `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

func (Reservation) TableName() string { return "reservations" }

func allModels() []any {
	return []any{&Room{}, &Account{}, &Reservation{}}
}
