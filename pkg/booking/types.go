package booking

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoomNumber is the unique key of a room.
type RoomNumber int64

// NewRoomNumber validates that the number is strictly positive.
func NewRoomNumber(raw int64) (RoomNumber, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: room number must be greater than zero", ErrInvalidInput)
	}
	return RoomNumber(raw), nil
}

// Int64 exposes the raw number.
func (number RoomNumber) Int64() int64 {
	return int64(number)
}

// RoomCategory enumerates the room classes.
type RoomCategory string

const (
	RoomCategoryStandard RoomCategory = "STANDARD"
	RoomCategoryJunior   RoomCategory = "JUNIOR"
	RoomCategoryMaster   RoomCategory = "MASTER"
)

// RoomCategories lists every category in display order.
func RoomCategories() []RoomCategory {
	return []RoomCategory{RoomCategoryStandard, RoomCategoryJunior, RoomCategoryMaster}
}

// ParseRoomCategory accepts a category name in any case. The "_SUITE"
// spellings (STANDARD_SUITE, ...) are accepted as aliases.
func ParseRoomCategory(raw string) (RoomCategory, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.TrimSuffix(normalized, legacySuiteSuffix)
	category := RoomCategory(normalized)
	if !category.Valid() {
		return "", fmt.Errorf("%w: unknown room category %q", ErrInvalidInput, raw)
	}
	return category, nil
}

// Valid reports whether the category is one of the known values.
func (category RoomCategory) Valid() bool {
	switch category {
	case RoomCategoryStandard, RoomCategoryJunior, RoomCategoryMaster:
		return true
	default:
		return false
	}
}

// String returns the category name.
func (category RoomCategory) String() string {
	return string(category)
}

// NightlyPrice is a strictly positive decimal rate per night.
type NightlyPrice struct {
	value decimal.Decimal
}

// NewNightlyPrice validates that the price is strictly positive.
func NewNightlyPrice(value decimal.Decimal) (NightlyPrice, error) {
	if !value.IsPositive() {
		return NightlyPrice{}, fmt.Errorf("%w: price per night must be greater than zero", ErrInvalidInput)
	}
	return NightlyPrice{value: value}, nil
}

// ParseNightlyPrice parses a decimal string such as "1000" or "1499.90".
func ParseNightlyPrice(raw string) (NightlyPrice, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return NightlyPrice{}, fmt.Errorf("%w: price %q is not a number", ErrInvalidInput, raw)
	}
	return NewNightlyPrice(value)
}

// Decimal exposes the exact rate.
func (price NightlyPrice) Decimal() decimal.Decimal {
	return price.value
}

// WholeUnits returns the rate with any fractional part discarded.
func (price NightlyPrice) WholeUnits() int64 {
	return price.value.Floor().IntPart()
}

// IsZero reports whether the price is unset.
func (price NightlyPrice) IsZero() bool {
	return price.value.IsZero()
}

// String renders the rate with two decimals.
func (price NightlyPrice) String() string {
	return price.value.StringFixed(2)
}

// AccountID identifies a guest account.
type AccountID struct {
	value string
}

// NewAccountID validates and normalizes an account id.
func NewAccountID(raw string) (AccountID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AccountID{}, fmt.Errorf("%w: empty account id", ErrInvalidInput)
	}
	return AccountID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id AccountID) String() string {
	return id.value
}

// IsZero reports whether the id is unset.
func (id AccountID) IsZero() bool {
	return id.value == ""
}

// Balance is a non-negative amount held by an account.
type Balance int64

// NewBalance rejects negative balances.
func NewBalance(raw int64) (Balance, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: balance must not be negative", ErrInvalidInput)
	}
	return Balance(raw), nil
}

// Int64 exposes the raw balance.
func (balance Balance) Int64() int64 {
	return int64(balance)
}

// Covers reports whether the balance can pay amount.
func (balance Balance) Covers(amount Amount) bool {
	return balance.Int64() >= amount.Int64()
}

// Debit subtracts amount, failing rather than going negative.
func (balance Balance) Debit(amount Amount) (Balance, error) {
	if !balance.Covers(amount) {
		return balance, fmt.Errorf("%w: cost %d exceeds balance %d", ErrInsufficientBalance, amount, balance)
	}
	return Balance(balance.Int64() - amount.Int64()), nil
}

// Amount is a non-negative cost charged for a stay.
type Amount int64

// NewAmount rejects negative amounts.
func NewAmount(raw int64) (Amount, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	return Amount(raw), nil
}

// Int64 exposes the raw amount.
func (amount Amount) Int64() int64 {
	return int64(amount)
}

// ReservationID is the sequential identifier of a reservation.
type ReservationID int64

// NewReservationID validates that the id is strictly positive.
func NewReservationID(raw int64) (ReservationID, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: reservation id must be greater than zero", ErrInvalidInput)
	}
	return ReservationID(raw), nil
}

// Int64 exposes the raw id.
func (id ReservationID) Int64() int64 {
	return int64(id)
}

// Room is a bookable room and its current rate.
type Room struct {
	number   RoomNumber
	category RoomCategory
	price    NightlyPrice
}

// NewRoom validates every attribute of a room.
func NewRoom(number RoomNumber, category RoomCategory, price NightlyPrice) (Room, error) {
	if _, err := NewRoomNumber(number.Int64()); err != nil {
		return Room{}, err
	}
	if !category.Valid() {
		return Room{}, fmt.Errorf("%w: room category is required", ErrInvalidInput)
	}
	if _, err := NewNightlyPrice(price.Decimal()); err != nil {
		return Room{}, err
	}
	return Room{number: number, category: category, price: price}, nil
}

func (room Room) Number() RoomNumber {
	return room.number
}

func (room Room) Category() RoomCategory {
	return room.category
}

func (room Room) Price() NightlyPrice {
	return room.price
}

// Account is a guest account and its spendable balance.
type Account struct {
	id      AccountID
	balance Balance
}

// NewAccount validates the id and balance.
func NewAccount(id AccountID, balance Balance) (Account, error) {
	if id.IsZero() {
		return Account{}, fmt.Errorf("%w: empty account id", ErrInvalidInput)
	}
	if _, err := NewBalance(balance.Int64()); err != nil {
		return Account{}, err
	}
	return Account{id: id, balance: balance}, nil
}

func (account Account) ID() AccountID {
	return account.id
}

func (account Account) Balance() Balance {
	return account.balance
}

// Reservation is a booked stay. Its price and cost are fixed at booking time.
type Reservation struct {
	id            ReservationID
	accountID     AccountID
	roomNumber    RoomNumber
	stay          Stay
	pricePerNight NightlyPrice
	totalCost     Amount
}

// NewReservation validates a reservation record.
func NewReservation(id ReservationID, accountID AccountID, roomNumber RoomNumber, stay Stay, pricePerNight NightlyPrice, totalCost Amount) (Reservation, error) {
	if _, err := NewReservationID(id.Int64()); err != nil {
		return Reservation{}, err
	}
	if accountID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: empty account id", ErrInvalidInput)
	}
	if _, err := NewRoomNumber(roomNumber.Int64()); err != nil {
		return Reservation{}, err
	}
	if _, err := NewStay(stay.CheckIn(), stay.CheckOut()); err != nil {
		return Reservation{}, err
	}
	if _, err := NewNightlyPrice(pricePerNight.Decimal()); err != nil {
		return Reservation{}, err
	}
	if _, err := NewAmount(totalCost.Int64()); err != nil {
		return Reservation{}, err
	}
	return Reservation{
		id:            id,
		accountID:     accountID,
		roomNumber:    roomNumber,
		stay:          stay,
		pricePerNight: pricePerNight,
		totalCost:     totalCost,
	}, nil
}

func (reservation Reservation) ID() ReservationID {
	return reservation.id
}

func (reservation Reservation) AccountID() AccountID {
	return reservation.accountID
}

func (reservation Reservation) RoomNumber() RoomNumber {
	return reservation.roomNumber
}

func (reservation Reservation) Stay() Stay {
	return reservation.stay
}

func (reservation Reservation) CheckIn() Date {
	return reservation.stay.CheckIn()
}

func (reservation Reservation) CheckOut() Date {
	return reservation.stay.CheckOut()
}

// PricePerNight returns the rate captured when the reservation was booked.
func (reservation Reservation) PricePerNight() NightlyPrice {
	return reservation.pricePerNight
}

func (reservation Reservation) TotalCost() Amount {
	return reservation.totalCost
}

// WithStay returns a copy moved to another stay; price and cost are kept.
func (reservation Reservation) WithStay(stay Stay) Reservation {
	reservation.stay = stay
	return reservation
}
