// Package console drives the booking service from a line-oriented text menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MarkoPoloResearchLab/hotel/internal/report"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

const (
	optionCreateAccount    = "1"
	optionSetRoom          = "2"
	optionBook             = "3"
	optionRebook           = "4"
	optionListAccounts     = "5"
	optionListRooms        = "6"
	optionListReservations = "7"
	optionExit             = "0"
)

var menuLines = []string{
	"",
	"======== HOTEL MENU ========",
	optionCreateAccount + ". Create account",
	optionSetRoom + ". Set room (create or update)",
	optionBook + ". Book a room",
	optionRebook + ". Rebook a reservation",
	optionListAccounts + ". List accounts",
	optionListRooms + ". List rooms",
	optionListReservations + ". List reservations",
	optionExit + ". Exit",
	"============================",
}

// Console reads menu choices from input and writes prompts, results, and
// reports to output. Failed actions are reported and the loop continues.
type Console struct {
	service *booking.Service
	scanner *bufio.Scanner
	output  io.Writer
}

// New returns a Console over service.
func New(service *booking.Service, input io.Reader, output io.Writer) *Console {
	return &Console{
		service: service,
		scanner: bufio.NewScanner(input),
		output:  output,
	}
}

// Run loops until the exit option is chosen, input ends, or ctx is done.
func (console *Console) Run(ctx context.Context) error {
	actions := map[string]func(context.Context) error{
		optionCreateAccount:    console.createAccount,
		optionSetRoom:          console.setRoom,
		optionBook:             console.book,
		optionRebook:           console.rebook,
		optionListAccounts:     console.listAccounts,
		optionListRooms:        console.listRooms,
		optionListReservations: console.listReservations,
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		console.printf("%s\n", strings.Join(menuLines, "\n"))
		choice, err := console.prompt("Choose an option: ")
		if err != nil {
			return endOfInput(err)
		}
		if choice == optionExit {
			console.printf("Goodbye!\n")
			return nil
		}
		action, known := actions[choice]
		if !known {
			console.printf("Invalid option %q.\n", choice)
			continue
		}
		if err := action(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			console.printf("Error: %v\n", err)
		}
	}
}

func (console *Console) createAccount(ctx context.Context) error {
	balance, err := console.promptInt("Initial balance: ", "balance")
	if err != nil {
		return err
	}
	accountID, err := console.service.CreateAccount(ctx, booking.Balance(balance))
	if err != nil {
		return err
	}
	console.printf("Account %s created with balance %d.\n", accountID, balance)
	return nil
}

func (console *Console) setRoom(ctx context.Context) error {
	number, err := console.promptInt("Room number: ", "room number")
	if err != nil {
		return err
	}
	rawCategory, err := console.prompt("Category (STANDARD, JUNIOR, MASTER): ")
	if err != nil {
		return err
	}
	category, err := booking.ParseRoomCategory(rawCategory)
	if err != nil {
		return err
	}
	rawPrice, err := console.prompt("Price per night: ")
	if err != nil {
		return err
	}
	price, err := booking.ParseNightlyPrice(rawPrice)
	if err != nil {
		return err
	}
	room, err := console.service.SetRoom(ctx, booking.RoomNumber(number), category, price)
	if err != nil {
		return err
	}
	console.printf("Room %d set to %s at %s per night.\n", room.Number(), room.Category(), room.Price())
	return nil
}

func (console *Console) book(ctx context.Context) error {
	rawAccountID, err := console.prompt("Account id: ")
	if err != nil {
		return err
	}
	accountID, err := booking.NewAccountID(rawAccountID)
	if err != nil {
		return err
	}
	number, err := console.promptInt("Room number: ", "room number")
	if err != nil {
		return err
	}
	checkIn, checkOut, err := console.promptStay()
	if err != nil {
		return err
	}
	reservation, err := console.service.Book(ctx, accountID, booking.RoomNumber(number), checkIn, checkOut)
	if err != nil {
		return err
	}
	console.printf("Reservation %d booked for %d.\n", reservation.ID(), reservation.TotalCost())
	return nil
}

func (console *Console) rebook(ctx context.Context) error {
	id, err := console.promptInt("Reservation id: ", "reservation id")
	if err != nil {
		return err
	}
	checkIn, checkOut, err := console.promptStay()
	if err != nil {
		return err
	}
	reservation, err := console.service.Rebook(ctx, booking.ReservationID(id), checkIn, checkOut)
	if err != nil {
		return err
	}
	console.printf("Reservation %d moved to %s.\n", reservation.ID(), reservation.Stay())
	return nil
}

func (console *Console) listAccounts(ctx context.Context) error {
	accounts, err := console.service.ListAccounts(ctx)
	if err != nil {
		return err
	}
	return report.Accounts(console.output, accounts)
}

func (console *Console) listRooms(ctx context.Context) error {
	rooms, err := console.service.ListRooms(ctx)
	if err != nil {
		return err
	}
	return report.Rooms(console.output, rooms)
}

func (console *Console) listReservations(ctx context.Context) error {
	reservations, err := console.service.ListReservations(ctx)
	if err != nil {
		return err
	}
	return report.Reservations(console.output, reservations)
}

func (console *Console) promptStay() (booking.Date, booking.Date, error) {
	checkIn, err := console.promptDate("Check-in (dd/mm/yyyy): ")
	if err != nil {
		return booking.Date{}, booking.Date{}, err
	}
	checkOut, err := console.promptDate("Check-out (dd/mm/yyyy): ")
	if err != nil {
		return booking.Date{}, booking.Date{}, err
	}
	return checkIn, checkOut, nil
}

func (console *Console) promptDate(label string) (booking.Date, error) {
	raw, err := console.prompt(label)
	if err != nil {
		return booking.Date{}, err
	}
	return booking.ParseDayFirstDate(raw)
}

func (console *Console) promptInt(label string, field string) (int64, error) {
	raw, err := console.prompt(label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a whole number", booking.ErrInvalidInput, field, raw)
	}
	return value, nil
}

func (console *Console) prompt(label string) (string, error) {
	console.printf("%s", label)
	if !console.scanner.Scan() {
		if err := console.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(console.scanner.Text()), nil
}

func (console *Console) printf(format string, arguments ...any) {
	_, _ = fmt.Fprintf(console.output, format, arguments...)
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
