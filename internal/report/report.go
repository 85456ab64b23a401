// Package report renders the room registry, account registry, and reservation
// ledger as boxed text tables.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
)

const (
	titleRooms          = "ROOMS"
	titleAccounts       = "ACCOUNTS"
	titleReservations   = "RESERVATIONS"
	emptyRow            = "no records"
	accountIDColumnSize = 14
)

// Source supplies the listings a report renders.
type Source interface {
	ListRooms(ctx context.Context) ([]booking.Room, error)
	ListAccounts(ctx context.Context) ([]booking.Account, error)
	ListReservations(ctx context.Context) ([]booking.Reservation, error)
}

// All writes the rooms, accounts, and reservations tables in that order.
func All(ctx context.Context, writer io.Writer, source Source) error {
	rooms, err := source.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	accounts, err := source.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	reservations, err := source.ListReservations(ctx)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	for _, render := range []func() error{
		func() error { return Rooms(writer, rooms) },
		func() error { return Accounts(writer, accounts) },
		func() error { return Reservations(writer, reservations) },
	} {
		if err := render(); err != nil {
			return err
		}
	}
	return nil
}

// Rooms renders rooms in the order given.
func Rooms(writer io.Writer, rooms []booking.Room) error {
	rendered := table{title: titleRooms, headers: []string{"Number", "Category", "Price"}}
	for _, room := range rooms {
		rendered.rows = append(rendered.rows, []string{
			strconv.FormatInt(room.Number().Int64(), 10),
			room.Category().String(),
			room.Price().String(),
		})
	}
	return rendered.write(writer)
}

// Accounts renders accounts in the order given.
func Accounts(writer io.Writer, accounts []booking.Account) error {
	rendered := table{title: titleAccounts, headers: []string{"Account", "Balance"}}
	for _, account := range accounts {
		rendered.rows = append(rendered.rows, []string{
			account.ID().String(),
			strconv.FormatInt(account.Balance().Int64(), 10),
		})
	}
	return rendered.write(writer)
}

// Reservations renders reservations in the order given. Account ids longer
// than the column are cut.
func Reservations(writer io.Writer, reservations []booking.Reservation) error {
	rendered := table{title: titleReservations, headers: []string{"Id", "Account", "Room", "Check-in", "Check-out", "Cost"}}
	for _, reservation := range reservations {
		rendered.rows = append(rendered.rows, []string{
			strconv.FormatInt(reservation.ID().Int64(), 10),
			truncate(reservation.AccountID().String(), accountIDColumnSize),
			strconv.FormatInt(reservation.RoomNumber().Int64(), 10),
			reservation.CheckIn().String(),
			reservation.CheckOut().String(),
			strconv.FormatInt(reservation.TotalCost().Int64(), 10),
		})
	}
	return rendered.write(writer)
}

type table struct {
	title   string
	headers []string
	rows    [][]string
}

func (rendered table) write(writer io.Writer) error {
	widths := make([]int, len(rendered.headers))
	for index, header := range rendered.headers {
		widths[index] = utf8.RuneCountInString(header)
	}
	for _, row := range rendered.rows {
		for index, cell := range row {
			if width := utf8.RuneCountInString(cell); width > widths[index] {
				widths[index] = width
			}
		}
	}
	inner := len(widths)*3 - 1
	for _, width := range widths {
		inner += width
	}
	if minimum := utf8.RuneCountInString(emptyRow) + 2; len(rendered.rows) == 0 && inner < minimum {
		widths[len(widths)-1] += minimum - inner
		inner = minimum
	}

	border := separator(widths)
	var builder strings.Builder
	builder.WriteString(rendered.title)
	builder.WriteString("\n")
	builder.WriteString(border)
	builder.WriteString(line(rendered.headers, widths))
	builder.WriteString(border)
	if len(rendered.rows) == 0 {
		builder.WriteString("| " + pad(emptyRow, inner-2) + " |\n")
	}
	for _, row := range rendered.rows {
		builder.WriteString(line(row, widths))
	}
	builder.WriteString(border)
	_, err := io.WriteString(writer, builder.String())
	return err
}

func separator(widths []int) string {
	var builder strings.Builder
	builder.WriteString("+")
	for _, width := range widths {
		builder.WriteString(strings.Repeat("-", width+2))
		builder.WriteString("+")
	}
	builder.WriteString("\n")
	return builder.String()
}

func line(cells []string, widths []int) string {
	var builder strings.Builder
	builder.WriteString("|")
	for index, width := range widths {
		builder.WriteString(" ")
		builder.WriteString(pad(cells[index], width))
		builder.WriteString(" |")
	}
	builder.WriteString("\n")
	return builder.String()
}

func pad(value string, width int) string {
	if gap := width - utf8.RuneCountInString(value); gap > 0 {
		return value + strings.Repeat(" ", gap)
	}
	return value
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}
