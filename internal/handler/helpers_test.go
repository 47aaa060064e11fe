package handler

import (
    "context"
    "encoding/json"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/repository"
)

// stubCoordinator implements ReservationCoordinator with pluggable
// behavior per test.
type stubCoordinator struct {
    requestFn  func(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) ([]*model.Booking, error)
    initiateFn func(ctx context.Context, bookingID uint64) (*booking.PaymentIntent, error)
    finalizeFn func(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error
    releaseFn  func(ctx context.Context, bookingID uint64) error
}

func (s *stubCoordinator) RequestBooking(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) ([]*model.Booking, error) {
    return s.requestFn(ctx, userID, theaterID, seatIDs)
}

func (s *stubCoordinator) InitiatePayment(ctx context.Context, bookingID uint64) (*booking.PaymentIntent, error) {
    return s.initiateFn(ctx, bookingID)
}

func (s *stubCoordinator) FinalizePayment(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error {
    return s.finalizeFn(ctx, bookingID, orderRef, paymentRef, signature)
}

func (s *stubCoordinator) ReleaseBooking(ctx context.Context, bookingID uint64) error {
    return s.releaseFn(ctx, bookingID)
}

// stubBookings implements BookingReader from fixed data.
type stubBookings struct {
    details   map[uint64]*model.BookingDetail
    byUser    map[uint64][]model.BookingDetail
    dashboard *repository.DashboardStats
}

func (s *stubBookings) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
    return s.byUser[userID], nil
}

func (s *stubBookings) DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
    d, ok := s.details[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    return d, nil
}

func (s *stubBookings) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
    return s.dashboard, nil
}

// stubPayments implements PaymentReader from fixed data.
type stubPayments struct {
    byBooking map[uint64][]model.Payment
}

func (s *stubPayments) ByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error) {
    return s.byBooking[bookingID], nil
}

// doJSON fires a request through a fresh Echo context and returns the
// recorder plus the decoded response body.
func doJSON(t *testing.T, method, target, body string, userID uint64, param string, fn echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if param != "" {
        c.SetParamNames("id")
        c.SetParamValues(param)
    }
    if userID != 0 {
        c.Set("user_id", userID)
    }
    require.NoError(t, fn(c))

    var decoded map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
    return rec, decoded
}
