// Package httpapi exposes the booking service as a JSON HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MarkoPoloResearchLab/hotel/internal/report"
	"github.com/MarkoPoloResearchLab/hotel/pkg/booking"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	errorCodeInvalidPayload      = "invalid_payload"
	errorCodeInvalidInput        = "invalid_input"
	errorCodeInvalidDateRange    = "invalid_date_range"
	errorCodeNotFound            = "not_found"
	errorCodeAlreadyExists       = "already_exists"
	errorCodeInsufficientBalance = "insufficient_balance"
	errorCodeRoomOccupied        = "room_occupied"
	errorCodeInternal            = "internal_error"
	allOrigins                   = "*"
)

// Run serves the API until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, service *booking.Service, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(cfg, service, logger),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWindow)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewRouter builds the gin engine. cfg must already be validated.
func NewRouter(cfg Config, service *booking.Service, logger *zap.Logger) *gin.Engine {
	handler := &httpHandler{service: service, logger: logger, cfg: cfg}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/rooms", handler.handleListRooms)
	api.POST("/rooms", handler.handleCreateRoom)
	api.GET("/rooms/:number", handler.handleGetRoom)
	api.PUT("/rooms/:number", handler.handleSetRoom)

	api.GET("/accounts", handler.handleListAccounts)
	api.POST("/accounts", handler.handleCreateAccount)
	api.GET("/accounts/:id", handler.handleGetAccount)
	api.PUT("/accounts/:id/balance", handler.handleUpdateBalance)

	api.GET("/reservations", handler.handleListReservations)
	api.POST("/reservations", handler.handleBook)
	api.GET("/reservations/:id", handler.handleGetReservation)
	api.PUT("/reservations/:id/stay", handler.handleRebook)

	api.GET("/report", handler.handleReport)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Origin", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == allOrigins {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()
		logger.Info("http request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("duration", time.Since(started)),
		)
	}
}

type httpHandler struct {
	service *booking.Service
	logger  *zap.Logger
	cfg     Config
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
}

func (handler *httpHandler) handleListRooms(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	rooms, err := handler.service.ListRooms(requestCtx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, newRoomPayload(room))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": payload})
}

func (handler *httpHandler) handleCreateRoom(ctx *gin.Context) {
	var request createRoomRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected room number, category, and price_per_night"))
		return
	}
	handler.writeRoom(ctx, http.StatusCreated, request.Number, roomRequest{Category: request.Category, PricePerNight: request.PricePerNight}, handler.service.CreateRoom)
}

func (handler *httpHandler) handleSetRoom(ctx *gin.Context) {
	number, ok := parseIDParam(ctx, "number")
	if !ok {
		return
	}
	var request roomRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected category and price_per_night"))
		return
	}
	handler.writeRoom(ctx, http.StatusOK, number, request, handler.service.SetRoom)
}

type roomWriter func(ctx context.Context, number booking.RoomNumber, category booking.RoomCategory, price booking.NightlyPrice) (booking.Room, error)

func (handler *httpHandler) writeRoom(ctx *gin.Context, status int, number int64, request roomRequest, write roomWriter) {
	category, err := booking.ParseRoomCategory(request.Category)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	price, err := booking.NewNightlyPrice(request.PricePerNight)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, err := write(requestCtx, booking.RoomNumber(number), category, price)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(status, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleGetRoom(ctx *gin.Context) {
	number, ok := parseIDParam(ctx, "number")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, found, err := handler.service.FindRoom(requestCtx, booking.RoomNumber(number))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if !found {
		ctx.JSON(http.StatusNotFound, errorResponse(errorCodeNotFound, fmt.Sprintf("room %d not found", number)))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleListAccounts(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	accounts, err := handler.service.ListAccounts(requestCtx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]accountPayload, 0, len(accounts))
	for _, account := range accounts {
		payload = append(payload, newAccountPayload(account))
	}
	ctx.JSON(http.StatusOK, gin.H{"accounts": payload})
}

func (handler *httpHandler) handleCreateAccount(ctx *gin.Context) {
	var request createAccountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected balance"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	accountID, err := handler.service.CreateAccount(requestCtx, booking.Balance(*request.Balance))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	account, _, err := handler.service.FindAccount(requestCtx, accountID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"account": newAccountPayload(account)})
}

func (handler *httpHandler) handleGetAccount(ctx *gin.Context) {
	accountID, err := booking.NewAccountID(ctx.Param("id"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	account, found, err := handler.service.FindAccount(requestCtx, accountID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if !found {
		ctx.JSON(http.StatusNotFound, errorResponse(errorCodeNotFound, fmt.Sprintf("account %s not found", accountID)))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"account": newAccountPayload(account)})
}

func (handler *httpHandler) handleUpdateBalance(ctx *gin.Context) {
	accountID, err := booking.NewAccountID(ctx.Param("id"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	var request createAccountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected balance"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.UpdateAccountBalance(requestCtx, accountID, booking.Balance(*request.Balance)); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"account": accountPayload{ID: accountID.String(), Balance: *request.Balance}})
}

func (handler *httpHandler) handleListReservations(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservations, err := handler.service.ListReservations(requestCtx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]reservationPayload, 0, len(reservations))
	for _, reservation := range reservations {
		payload = append(payload, newReservationPayload(reservation))
	}
	ctx.JSON(http.StatusOK, gin.H{"reservations": payload})
}

func (handler *httpHandler) handleBook(ctx *gin.Context) {
	var request bookRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected account_id, room_number, check_in, and check_out"))
		return
	}
	accountID, err := booking.NewAccountID(request.AccountID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.Book(requestCtx, accountID, booking.RoomNumber(request.RoomNumber), request.CheckIn, request.CheckOut)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleGetReservation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, found, err := handler.service.FindReservation(requestCtx, booking.ReservationID(id))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if !found {
		ctx.JSON(http.StatusNotFound, errorResponse(errorCodeNotFound, fmt.Sprintf("reservation %d not found", id)))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleRebook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var request stayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidPayload, "expected check_in and check_out"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.Rebook(requestCtx, booking.ReservationID(id), request.CheckIn, request.CheckOut)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleReport(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	var buffer bytes.Buffer
	if err := report.All(requestCtx, &buffer, handler.service); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", buffer.Bytes())
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	status, code := statusForError(err)
	if status == http.StatusInternalServerError {
		handler.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(status, errorResponse(code, "internal error"))
		return
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func statusForError(err error) (int, string) {
	switch booking.ErrorKind(err) {
	case booking.ErrInvalidInput:
		return http.StatusBadRequest, errorCodeInvalidInput
	case booking.ErrInvalidDateRange:
		return http.StatusBadRequest, errorCodeInvalidDateRange
	case booking.ErrNotFound:
		return http.StatusNotFound, errorCodeNotFound
	case booking.ErrAlreadyExists:
		return http.StatusConflict, errorCodeAlreadyExists
	case booking.ErrRoomOccupied:
		return http.StatusConflict, errorCodeRoomOccupied
	case booking.ErrInsufficientBalance:
		return http.StatusUnprocessableEntity, errorCodeInsufficientBalance
	default:
		return http.StatusInternalServerError, errorCodeInternal
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(errorCodeInvalidInput, fmt.Sprintf("%s must be a whole number", name)))
		return 0, false
	}
	return value, true
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

type roomRequest struct {
	Category      string          `json:"category" binding:"required"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

type createRoomRequest struct {
	Number        int64           `json:"number"`
	Category      string          `json:"category" binding:"required"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

type createAccountRequest struct {
	Balance *int64 `json:"balance" binding:"required"`
}

type bookRequest struct {
	AccountID  string       `json:"account_id" binding:"required"`
	RoomNumber int64        `json:"room_number" binding:"required"`
	CheckIn    booking.Date `json:"check_in"`
	CheckOut   booking.Date `json:"check_out"`
}

type stayRequest struct {
	CheckIn  booking.Date `json:"check_in"`
	CheckOut booking.Date `json:"check_out"`
}

type roomPayload struct {
	Number        int64  `json:"number"`
	Category      string `json:"category"`
	PricePerNight string `json:"price_per_night"`
}

func newRoomPayload(room booking.Room) roomPayload {
	return roomPayload{
		Number:        room.Number().Int64(),
		Category:      room.Category().String(),
		PricePerNight: room.Price().String(),
	}
}

type accountPayload struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}

func newAccountPayload(account booking.Account) accountPayload {
	return accountPayload{ID: account.ID().String(), Balance: account.Balance().Int64()}
}

type reservationPayload struct {
	ID            int64        `json:"id"`
	AccountID     string       `json:"account_id"`
	RoomNumber    int64        `json:"room_number"`
	CheckIn       booking.Date `json:"check_in"`
	CheckOut      booking.Date `json:"check_out"`
	Nights        int64        `json:"nights"`
	PricePerNight string       `json:"price_per_night"`
	TotalCost     int64        `json:"total_cost"`
}

func newReservationPayload(reservation booking.Reservation) reservationPayload {
	return reservationPayload{
		ID:            reservation.ID().Int64(),
		AccountID:     reservation.AccountID().String(),
		RoomNumber:    reservation.RoomNumber().Int64(),
		CheckIn:       reservation.CheckIn(),
		CheckOut:      reservation.CheckOut(),
		Nights:        reservation.Stay().Nights(),
		PricePerNight: reservation.PricePerNight().String(),
		TotalCost:     reservation.TotalCost().Int64(),
	}
}
