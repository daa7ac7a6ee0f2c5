package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/meeting_room/internal/adapter/handler/mocks"
	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/services"
	"github.com/srgjo27/meeting_room/internal/platform/logger/slogdiscard"
)

var (
	start = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	end   = start.Add(time.Hour)
)

func pendingBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		RoomID:    30,
		UserID:    5,
		StartTime: start,
		EndTime:   end,
		Status:    domain.BookingPending,
		CreatedAt: start,
		UpdatedAt: start,
	}
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.BookingService) {
	t.Helper()

	logger := slogdiscard.NewDiscardLogger()
	svc := mocks.NewBookingService(t)

	return NewRouter(logger, NewBookingHandler(svc, logger)), svc
}

func serve(router http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func TestCreateBookingHandler(t *testing.T) {
	t.Parallel()

	validBody := fmt.Sprintf(`{"meetingRoomId": 30, "userId": 5, "startTime": %d, "endTime": %d}`,
		start.UnixMilli(), end.UnixMilli())
	validReq := services.CreateBookingRequest{RoomID: 30, UserID: 5, StartTime: start.UnixMilli(), EndTime: end.UnixMilli()}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(svc *mocks.BookingService)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: validBody,
			mockSetup: func(svc *mocks.BookingService) {
				svc.On("CreateBooking", mock.Anything, validReq).Return(pendingBooking(1), nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				var resp BookingResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, int64(1), resp.ID)
				assert.Equal(t, "PENDING", resp.Status)
				assert.True(t, resp.StartTime.Equal(start))
			},
		},
		{
			name:           "Invalid JSON",
			requestBody:    `invalid json`,
			mockSetup:      func(svc *mocks.BookingService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "Missing fields",
			requestBody:    `{"meetingRoomId": 30}`,
			mockSetup:      func(svc *mocks.BookingService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field UserID is a required field")
				assert.Contains(t, body, "field StartTime is a required field")
			},
		},
		{
			name: "End before start",
			requestBody: fmt.Sprintf(`{"meetingRoomId": 30, "userId": 5, "startTime": %d, "endTime": %d}`,
				end.UnixMilli(), start.UnixMilli()),
			mockSetup:      func(svc *mocks.BookingService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field EndTime must be greater than StartTime"}`,
		},
		{
			name:        "Conflict",
			requestBody: validBody,
			mockSetup: func(svc *mocks.BookingService) {
				svc.On("CreateBooking", mock.Anything, validReq).Return(nil, domain.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"time slot already booked for this room"}`,
		},
		{
			name:        "Room not found",
			requestBody: validBody,
			mockSetup: func(svc *mocks.BookingService) {
				svc.On("CreateBooking", mock.Anything, validReq).Return(nil, domain.ErrRoomNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"meeting room not found"}`,
		},
		{
			name:        "Internal error",
			requestBody: validBody,
			mockSetup: func(svc *mocks.BookingService) {
				svc.On("CreateBooking", mock.Anything, validReq).Return(nil, errors.New("pq: connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, svc := newTestRouter(t)
			tc.mockSetup(svc)

			rr := serve(router, http.MethodPost, "/booking/add", tc.requestBody)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}

func TestStatusChangeHandlers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		path           string
		method         string
		mockErr        error
		result         domain.BookingStatus
		expectedStatus int
	}{
		{name: "approve", path: "/booking/apply/7", method: "Approve", result: domain.BookingApproved, expectedStatus: http.StatusOK},
		{name: "reject", path: "/booking/reject/7", method: "Reject", result: domain.BookingRejected, expectedStatus: http.StatusOK},
		{name: "release", path: "/booking/unbind/7", method: "Release", result: domain.BookingReleased, expectedStatus: http.StatusOK},
		{name: "approve missing", path: "/booking/apply/7", method: "Approve", mockErr: domain.ErrBookingNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "approve released",
			path:           "/booking/apply/7",
			method:         "Approve",
			mockErr:        &domain.TransitionError{BookingID: 7, From: domain.BookingReleased, To: domain.BookingApproved},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, svc := newTestRouter(t)

			if tc.mockErr != nil {
				svc.On(tc.method, mock.Anything, int64(7)).Return(nil, tc.mockErr)
			} else {
				b := pendingBooking(7)
				b.Status = tc.result
				svc.On(tc.method, mock.Anything, int64(7)).Return(b, nil)
			}

			rr := serve(router, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.mockErr == nil {
				var resp StatusResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "OK", resp.Status)
				assert.Equal(t, string(tc.result), resp.Booking.Status)
			} else {
				assert.Contains(t, rr.Body.String(), `"status":"Error"`)
			}
		})
	}
}

func TestInvalidBookingID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	for _, path := range []string{"/booking/apply/abc", "/booking/urge/-1", "/booking/0"} {
		rr := serve(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.JSONEq(t, `{"status":"Error","error":"invalid booking id format"}`, rr.Body.String())
	}
}

func TestEscalateHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		mockErr        error
		expectedStatus int
		retryAfter     string
	}{
		{name: "Acknowledged", expectedStatus: http.StatusOK},
		{
			name:           "Throttled",
			mockErr:        &domain.ThrottledError{BookingID: 3, Remaining: 9*time.Minute + 59500*time.Millisecond},
			expectedStatus: http.StatusTooManyRequests,
			retryAfter:     "600",
		},
		{name: "No admin", mockErr: domain.ErrNoAdminConfigured, expectedStatus: http.StatusUnprocessableEntity},
		{name: "Cache down", mockErr: fmt.Errorf("op: %w", domain.ErrCacheUnavailable), expectedStatus: http.StatusServiceUnavailable},
		{name: "Mail down", mockErr: fmt.Errorf("%w: dial tcp", domain.ErrNotifyFailed), expectedStatus: http.StatusServiceUnavailable},
		{name: "Unknown booking", mockErr: domain.ErrBookingNotFound, expectedStatus: http.StatusNotFound},
		{name: "Already decided", mockErr: fmt.Errorf("%w: booking 3 is APPROVED", domain.ErrNotPending), expectedStatus: http.StatusConflict},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, svc := newTestRouter(t)
			svc.On("Escalate", mock.Anything, int64(3)).Return(tc.mockErr)

			rr := serve(router, http.MethodGet, "/booking/urge/3", "")
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.retryAfter, rr.Header().Get("Retry-After"))

			if tc.mockErr == nil {
				assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	t.Parallel()

	router, svc := newTestRouter(t)

	want := domain.ListFilter{
		Page:         2,
		PageSize:     5,
		Username:     "tay",
		RoomName:     "Berna",
		RoomLocation: "1F",
		RangeStart:   start,
		RangeEnd:     start.Add(time.Hour),
	}

	page := &domain.BookingPage{
		Bookings: []domain.BookingDetail{{
			Booking: *pendingBooking(11),
			Room:    domain.Room{ID: 30, Name: "Bernabeu", Location: "1F West", Capacity: 10},
			User:    domain.User{ID: 5, Username: "taylor", Email: "taylor@example.com"},
		}},
		TotalCount: 6,
	}

	svc.On("ListBookings", mock.Anything, want).Return(page, nil)

	url := fmt.Sprintf("/booking/list?page=2&size=5&username=tay&meetingRoomName=Berna&meetingRoomPosition=1F&bookingTimeRangeStart=%d",
		start.UnixMilli())
	rr := serve(router, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ListBookingsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(6), resp.TotalCount)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "Bernabeu", resp.Bookings[0].Room.Name)
	assert.Equal(t, "taylor", resp.Bookings[0].User.Username)
	assert.NotContains(t, rr.Body.String(), "taylor@example.com")
}

func TestListHandler_Defaults(t *testing.T) {
	t.Parallel()

	router, svc := newTestRouter(t)

	svc.On("ListBookings", mock.Anything, domain.ListFilter{Page: 1, PageSize: 10}).
		Return(&domain.BookingPage{Bookings: []domain.BookingDetail{}}, nil)

	rr := serve(router, http.MethodGet, "/booking/list", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"bookings":[],"totalCount":0}`, rr.Body.String())
}

func TestListHandler_BadQuery(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rr := serve(router, http.MethodGet, "/booking/list?page=one", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"page must be an integer"}`, rr.Body.String())

	rr = serve(router, http.MethodGet, "/booking/list?bookingTimeRangeStart=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rr := serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
}
