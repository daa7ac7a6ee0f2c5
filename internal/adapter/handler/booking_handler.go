package handler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/srgjo27/meeting_room/internal/adapter/handler/response"
	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/services"
	"github.com/srgjo27/meeting_room/internal/platform/logger/sl"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingService
type BookingService interface {
	ListBookings(ctx context.Context, filter domain.ListFilter) (*domain.BookingPage, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*domain.Booking, error)
	Approve(ctx context.Context, bookingID int64) (*domain.Booking, error)
	Reject(ctx context.Context, bookingID int64) (*domain.Booking, error)
	Release(ctx context.Context, bookingID int64) (*domain.Booking, error)
	Escalate(ctx context.Context, bookingID int64) error
}

type BookingHandler struct {
	svc      BookingService
	log      *slog.Logger
	validate *validator.Validate
}

func NewBookingHandler(svc BookingService, log *slog.Logger) *BookingHandler {
	return &BookingHandler{
		svc:      svc,
		log:      log,
		validate: validator.New(),
	}
}

type RoomResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
	Equipment   string `json:"equipment"`
	Description string `json:"description"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	NickName string `json:"nickName"`
}

type BookingResponse struct {
	ID         int64         `json:"id"`
	RoomID     int64         `json:"meetingRoomId"`
	UserID     int64         `json:"userId"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    time.Time     `json:"endTime"`
	Status     string        `json:"status"`
	CreateTime time.Time     `json:"createTime"`
	UpdateTime time.Time     `json:"updateTime"`
	Room       *RoomResponse `json:"room,omitempty"`
	User       *UserResponse `json:"user,omitempty"`
}

type ListBookingsResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"totalCount"`
}

type StatusResponse struct {
	response.Response
	Booking BookingResponse `json:"booking"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		RoomID:     b.RoomID,
		UserID:     b.UserID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		CreateTime: b.CreatedAt,
		UpdateTime: b.UpdatedAt,
	}
}

func toDetailResponse(d domain.BookingDetail) BookingResponse {
	resp := toBookingResponse(&d.Booking)
	resp.Room = &RoomResponse{
		ID:          d.Room.ID,
		Name:        d.Room.Name,
		Capacity:    d.Room.Capacity,
		Location:    d.Room.Location,
		Equipment:   d.Room.Equipment,
		Description: d.Room.Description,
	}
	resp.User = &UserResponse{
		ID:       d.User.ID,
		Username: d.User.Username,
		NickName: d.User.NickName,
	}
	return resp
}

func (h *BookingHandler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handler.BookingHandler.List"
	log := h.logger(r, op)

	filter, err := parseListFilter(r)
	if err != nil {
		log.Info("invalid list query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	page, err := h.svc.ListBookings(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, log, err)
		return
	}

	resp := ListBookingsResponse{
		Bookings:   make([]BookingResponse, 0, len(page.Bookings)),
		TotalCount: page.TotalCount,
	}
	for _, d := range page.Bookings {
		resp.Bookings = append(resp.Bookings, toDetailResponse(d))
	}

	render.JSON(w, r, resp)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.BookingHandler.Get"
	log := h.logger(r, op)

	id, ok := h.bookingID(w, r, log)
	if !ok {
		return
	}

	booking, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, log, err)
		return
	}

	render.JSON(w, r, toBookingResponse(booking))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.BookingHandler.Create"
	log := h.logger(r, op)

	var req services.CreateBookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			log.Info("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		h.writeError(w, r, log, err)
		return
	}

	booking, err := h.svc.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toBookingResponse(booking))
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "handler.BookingHandler.Approve", h.svc.Approve)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "handler.BookingHandler.Reject", h.svc.Reject)
}

func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "handler.BookingHandler.Release", h.svc.Release)
}

func (h *BookingHandler) changeStatus(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	apply func(ctx context.Context, bookingID int64) (*domain.Booking, error),
) {
	log := h.logger(r, op)

	id, ok := h.bookingID(w, r, log)
	if !ok {
		return
	}

	booking, err := apply(r.Context(), id)
	if err != nil {
		h.writeError(w, r, log, err)
		return
	}

	render.JSON(w, r, StatusResponse{
		Response: response.OK(),
		Booking:  toBookingResponse(booking),
	})
}

func (h *BookingHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	const op = "handler.BookingHandler.Escalate"
	log := h.logger(r, op)

	id, ok := h.bookingID(w, r, log)
	if !ok {
		return
	}

	if err := h.svc.Escalate(r.Context(), id); err != nil {
		h.writeError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.OK())
}

func (h *BookingHandler) bookingID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("booking id is required"))
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Info("invalid booking id", slog.String("id", raw))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid booking id format"))
		return 0, false
	}

	return id, true
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without their text.
func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var throttled *domain.ThrottledError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotPending):
		render.Status(r, http.StatusConflict)
	case errors.As(err, &throttled):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(throttled.Remaining.Seconds()))))
		render.Status(r, http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrNoAdminConfigured):
		render.Status(r, http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrCacheUnavailable), errors.Is(err, domain.ErrNotifyFailed):
		log.Error("dependency unavailable", sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("service temporarily unavailable"))
		return
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("request timed out", sl.Err(err))
		render.Status(r, http.StatusGatewayTimeout)
		render.JSON(w, r, response.Error("request timed out"))
		return
	default:
		log.Error("request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.Error(err.Error()))
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()

	filter := domain.ListFilter{
		Username:     q.Get("username"),
		RoomName:     q.Get("meetingRoomName"),
		RoomLocation: q.Get("meetingRoomPosition"),
	}

	var err error

	if filter.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return filter, err
	}

	size := q.Get("size")
	if size == "" {
		size = q.Get("pageSize")
	}
	if filter.PageSize, err = intParam(size, "size"); err != nil {
		return filter, err
	}

	if filter.RangeStart, err = millisParam(q.Get("bookingTimeRangeStart"), "bookingTimeRangeStart"); err != nil {
		return filter, err
	}

	if filter.RangeEnd, err = millisParam(q.Get("bookingTimeRangeEnd"), "bookingTimeRangeEnd"); err != nil {
		return filter, err
	}

	return filter.Normalize(), nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}

	return v, nil
}

func millisParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, errors.New(name + " must be epoch milliseconds")
	}

	if v == 0 {
		return time.Time{}, nil
	}

	return time.UnixMilli(v).UTC(), nil
}
