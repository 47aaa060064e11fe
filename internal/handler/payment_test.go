package handler

import (
    "context"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/repository"
)

func TestInitiatePaymentReturnsOrder(t *testing.T) {
    coord := &stubCoordinator{
        initiateFn: func(ctx context.Context, bookingID uint64) (*booking.PaymentIntent, error) {
            return &booking.PaymentIntent{
                BookingID:   bookingID,
                OrderRef:    "order_abc",
                AmountCents: 15000,
                Currency:    "INR",
            }, nil
        },
    }
    h := NewPaymentHandler(coord, "rzp_test_key")

    rec, body := doJSON(t, http.MethodPost, "/v1/bookings/5/payment", "", 42, "5", h.InitiatePayment)

    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "order_abc", body["order_ref"])
    assert.Equal(t, float64(15000), body["amount_cents"])
    assert.Equal(t, "INR", body["currency"])
    assert.Equal(t, "rzp_test_key", body["key_id"])
}

func TestInitiatePaymentMapping(t *testing.T) {
    cases := []struct {
        name string
        err  error
        code int
    }{
        {"not found", repository.ErrBookingNotFound, http.StatusNotFound},
        {"finalized", repository.ErrBookingFinalized, http.StatusConflict},
        {"gateway down", context.DeadlineExceeded, http.StatusInternalServerError},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            coord := &stubCoordinator{
                initiateFn: func(ctx context.Context, bookingID uint64) (*booking.PaymentIntent, error) {
                    return nil, tc.err
                },
            }
            h := NewPaymentHandler(coord, "rzp_test_key")
            rec, _ := doJSON(t, http.MethodPost, "/v1/bookings/5/payment", "", 42, "5", h.InitiatePayment)
            assert.Equal(t, tc.code, rec.Code)
        })
    }
}

func TestPaymentCallbackConfirms(t *testing.T) {
    var gotOrder, gotPayment, gotSig string
    coord := &stubCoordinator{
        finalizeFn: func(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error {
            gotOrder, gotPayment, gotSig = orderRef, paymentRef, signature
            return nil
        },
    }
    h := NewPaymentHandler(coord, "rzp_test_key")

    rec, body := doJSON(t, http.MethodPost, "/v1/bookings/5/payment/callback",
        `{"order_ref":"order_abc","payment_ref":"pay_xyz","signature":"sig"}`, 42, "5", h.PaymentCallback)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "CONFIRMED", body["status"])
    assert.Equal(t, "order_abc", gotOrder)
    assert.Equal(t, "pay_xyz", gotPayment)
    assert.Equal(t, "sig", gotSig)
}

func TestPaymentCallbackMapping(t *testing.T) {
    cases := []struct {
        name string
        err  error
        code int
    }{
        {"verification failed", booking.ErrPaymentVerification, http.StatusPaymentRequired},
        {"finalized", repository.ErrBookingFinalized, http.StatusConflict},
        {"not found", repository.ErrBookingNotFound, http.StatusNotFound},
        {"storage failure", context.DeadlineExceeded, http.StatusInternalServerError},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            coord := &stubCoordinator{
                finalizeFn: func(ctx context.Context, bookingID uint64, orderRef, paymentRef, signature string) error {
                    return tc.err
                },
            }
            h := NewPaymentHandler(coord, "rzp_test_key")
            rec, _ := doJSON(t, http.MethodPost, "/v1/bookings/5/payment/callback",
                `{"order_ref":"order_abc","payment_ref":"pay_xyz","signature":"sig"}`, 42, "5", h.PaymentCallback)
            assert.Equal(t, tc.code, rec.Code)
        })
    }
}

func TestPaymentCallbackRequiresAllFields(t *testing.T) {
    h := NewPaymentHandler(&stubCoordinator{}, "rzp_test_key")
    rec, _ := doJSON(t, http.MethodPost, "/v1/bookings/5/payment/callback",
        `{"order_ref":"order_abc"}`, 42, "5", h.PaymentCallback)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
