package booking

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing booking operation.
type OperationLog struct {
	Operation     string
	AccountID     AccountID
	RoomNumber    RoomNumber
	ReservationID ReservationID
	Amount        Amount
	Status        string
	Error         error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithAccountIDGenerator replaces the random account id source.
func WithAccountIDGenerator(generate func() string) ServiceOption {
	return func(service *Service) {
		if generate != nil {
			service.newAccountID = generate
		}
	}
}
