package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Service owns the room registry, account registry, and reservation ledger
// behind a Store, and is the only writer of their state.
type Service struct {
	store        Store
	logger       OperationLogger
	newAccountID func() string
}

// NewService wires a Service.
func NewService(store Store, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, newAccountID: uuid.NewString}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateRoom registers a new room.
func (service *Service) CreateRoom(ctx context.Context, number RoomNumber, category RoomCategory, price NightlyPrice) (Room, error) {
	room, operationError := NewRoom(number, category, price)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if err := transactionStore.InsertRoom(ctx, room); err != nil {
				return fmt.Errorf("room %d: %w", number, err)
			}
			return nil
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateRoom,
		RoomNumber: number,
		Error:      operationError,
	})
	if operationError != nil {
		return Room{}, operationError
	}
	return room, nil
}

// UpdateRoom changes the category and price of an existing room. Reservations
// already booked keep the price they were booked at.
func (service *Service) UpdateRoom(ctx context.Context, number RoomNumber, category RoomCategory, price NightlyPrice) (Room, error) {
	room, operationError := NewRoom(number, category, price)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if err := transactionStore.UpdateRoom(ctx, room); err != nil {
				return fmt.Errorf("room %d: %w", number, err)
			}
			return nil
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationUpdateRoom,
		RoomNumber: number,
		Error:      operationError,
	})
	if operationError != nil {
		return Room{}, operationError
	}
	return room, nil
}

// SetRoom updates the room when it exists and creates it otherwise.
func (service *Service) SetRoom(ctx context.Context, number RoomNumber, category RoomCategory, price NightlyPrice) (Room, error) {
	room, operationError := NewRoom(number, category, price)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			_, err := transactionStore.GetRoom(ctx, number)
			switch {
			case err == nil:
				err = transactionStore.UpdateRoom(ctx, room)
			case errors.Is(err, ErrNotFound):
				err = transactionStore.InsertRoom(ctx, room)
			}
			if err != nil {
				return fmt.Errorf("room %d: %w", number, err)
			}
			return nil
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation:  operationSetRoom,
		RoomNumber: number,
		Error:      operationError,
	})
	if operationError != nil {
		return Room{}, operationError
	}
	return room, nil
}

// FindRoom looks a room up by number; found is false when it does not exist.
func (service *Service) FindRoom(ctx context.Context, number RoomNumber) (Room, bool, error) {
	room, err := service.store.GetRoom(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return Room{}, false, nil
	}
	if err != nil {
		return Room{}, false, err
	}
	return room, true, nil
}

// ListRooms returns every room, newest first.
func (service *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return service.store.ListRooms(ctx)
}

// CreateAccount opens an account under a freshly generated random id.
func (service *Service) CreateAccount(ctx context.Context, initialBalance Balance) (AccountID, error) {
	var accountID AccountID
	account, operationError := service.newGeneratedAccount(initialBalance)
	if operationError == nil {
		accountID = account.ID()
		operationError = service.insertAccount(ctx, account)
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateAccount,
		AccountID: accountID,
		Amount:    Amount(initialBalance),
		Error:     operationError,
	})
	if operationError != nil {
		return AccountID{}, operationError
	}
	return accountID, nil
}

// CreateAccountWithID opens an account under a caller-chosen id. It exists for
// seeding fixtures and bootstrap data; regular callers use CreateAccount.
func (service *Service) CreateAccountWithID(ctx context.Context, id AccountID, balance Balance) (Account, error) {
	account, operationError := NewAccount(id, balance)
	if operationError == nil {
		operationError = service.insertAccount(ctx, account)
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateAccount,
		AccountID: id,
		Amount:    Amount(balance),
		Error:     operationError,
	})
	if operationError != nil {
		return Account{}, operationError
	}
	return account, nil
}

// UpdateAccountBalance overwrites an account balance. It is an administrative
// reset, not a debit.
func (service *Service) UpdateAccountBalance(ctx context.Context, id AccountID, balance Balance) error {
	_, operationError := NewAccount(id, balance)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.GetAccount(ctx, id); err != nil {
				return fmt.Errorf("account %s: %w", id, err)
			}
			return transactionStore.UpdateAccountBalance(ctx, id, balance)
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationUpdateAccountBalance,
		AccountID: id,
		Amount:    Amount(balance),
		Error:     operationError,
	})
	return operationError
}

// FindAccount looks an account up by id; found is false when it does not exist.
func (service *Service) FindAccount(ctx context.Context, id AccountID) (Account, bool, error) {
	if id.IsZero() {
		return Account{}, false, nil
	}
	account, err := service.store.GetAccount(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, err
	}
	return account, true, nil
}

// ListAccounts returns every account in creation order.
func (service *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return service.store.ListAccounts(ctx)
}

func (service *Service) newGeneratedAccount(initialBalance Balance) (Account, error) {
	if _, err := NewBalance(initialBalance.Int64()); err != nil {
		return Account{}, err
	}
	accountID, err := NewAccountID(service.newAccountID())
	if err != nil {
		return Account{}, fmt.Errorf("%w: generated account id", err)
	}
	return NewAccount(accountID, initialBalance)
}

func (service *Service) insertAccount(ctx context.Context, account Account) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if err := transactionStore.InsertAccount(ctx, account); err != nil {
			return fmt.Errorf("account %s: %w", account.ID(), err)
		}
		return nil
	})
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
