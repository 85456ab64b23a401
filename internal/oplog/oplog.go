// Package oplog writes booking operation logs through zap.
package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"go.uber.org/zap"
)

const messageOperation = "booking operation"

// ZapLogger implements booking.OperationLogger.
type ZapLogger struct {
	logger *zap.Logger
}

// New returns a ZapLogger; a nil logger discards every entry.
func New(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// LogOperation records successful operations at Info and failed ones at Warn.
func (zapLogger *ZapLogger) LogOperation(_ context.Context, entry booking.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if !entry.AccountID.IsZero() {
		fields = append(fields, zap.String("account_id", entry.AccountID.String()))
	}
	if entry.RoomNumber != 0 {
		fields = append(fields, zap.Int64("room_number", entry.RoomNumber.Int64()))
	}
	if entry.ReservationID != 0 {
		fields = append(fields, zap.Int64("reservation_id", entry.ReservationID.Int64()))
	}
	if entry.Amount != 0 {
		fields = append(fields, zap.Int64("amount", entry.Amount.Int64()))
	}
	if entry.Error == nil {
		zapLogger.logger.Info(messageOperation, fields...)
		return
	}
	if kind := booking.ErrorKind(entry.Error); kind != nil {
		fields = append(fields, zap.String("kind", kind.Error()))
	}
	fields = append(fields, zap.Error(entry.Error))
	zapLogger.logger.Warn(messageOperation, fields...)
}
