package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/repository"
)

// PaymentHandler drives the two-step payment flow: creating a gateway
// order for a provisional booking and settling the booking from the
// signed gateway callback.
type PaymentHandler struct {
    Coordinator ReservationCoordinator
    // KeyID is the public Razorpay key id the browser checkout widget
    // needs; the secret never leaves the server.
    KeyID string
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(coord ReservationCoordinator, keyID string) *PaymentHandler {
    if coord == nil {
        panic("nil coordinator passed to NewPaymentHandler")
    }
    return &PaymentHandler{Coordinator: coord, KeyID: keyID}
}

// InitiatePayment handles POST /v1/bookings/:id/payment.  It creates a
// gateway order for the booking amount and answers 201 with the order
// reference the client completes checkout against.  Finalized bookings
// answer 409.
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    intent, err := h.Coordinator.InitiatePayment(c.Request().Context(), id)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case errors.Is(err, repository.ErrBookingFinalized):
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking already finalized"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to initiate payment"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "booking_id":   intent.BookingID,
        "order_ref":    intent.OrderRef,
        "amount_cents": intent.AmountCents,
        "currency":     intent.Currency,
        "key_id":       h.KeyID,
    })
}

// PaymentCallback handles POST /v1/bookings/:id/payment/callback with
// the gateway's order reference, payment reference and signature.  A
// valid signature confirms the booking; an invalid one releases the
// booking and its seat and answers 402.  Replaying the callback for a
// booking that already left the provisional state answers 409.
func (h *PaymentHandler) PaymentCallback(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        OrderRef   string `json:"order_ref"`
        PaymentRef string `json:"payment_ref"`
        Signature  string `json:"signature"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.OrderRef == "" || body.PaymentRef == "" || body.Signature == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_ref, payment_ref and signature are required"})
    }

    err = h.Coordinator.FinalizePayment(c.Request().Context(), id, body.OrderRef, body.PaymentRef, body.Signature)
    if err != nil {
        switch {
        case errors.Is(err, booking.ErrPaymentVerification):
            return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment verification failed, booking released"})
        case errors.Is(err, repository.ErrBookingFinalized):
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking already finalized"})
        case errors.Is(err, repository.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm payment"})
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": "CONFIRMED"})
}
