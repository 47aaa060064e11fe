package payment

import (
    "context"
    "fmt"

    razorpay "github.com/razorpay/razorpay-go"
    "github.com/razorpay/razorpay-go/utils"
)

// RazorpayGateway implements Gateway on top of the official Razorpay
// client.  Credentials are the key id/secret pair issued by the
// gateway; the secret is also the HMAC key for callback signatures.
type RazorpayGateway struct {
    client    *razorpay.Client
    keySecret string
}

// NewRazorpayGateway constructs a gateway adapter from API credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
    return &RazorpayGateway{
        client:    razorpay.NewClient(keyID, keySecret),
        keySecret: keySecret,
    }
}

// CreateOrder registers an order with Razorpay and returns its id.
// The Razorpay client has no context support, so the call runs in a
// goroutine and the result is discarded if the caller's deadline fires
// first; a timed-out order is an error, never a success.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor uint32, currency, receipt string) (string, error) {
    type orderResult struct {
        id  string
        err error
    }
    ch := make(chan orderResult, 1)
    go func() {
        body, err := g.client.Order.Create(map[string]interface{}{
            "amount":          amountMinor,
            "currency":        currency,
            "receipt":         receipt,
            "payment_capture": 1,
        }, nil)
        if err != nil {
            ch <- orderResult{err: fmt.Errorf("razorpay order create: %w", err)}
            return
        }
        id, ok := body["id"].(string)
        if !ok || id == "" {
            ch <- orderResult{err: fmt.Errorf("razorpay order create: response missing id")}
            return
        }
        ch <- orderResult{id: id}
    }()
    select {
    case <-ctx.Done():
        return "", fmt.Errorf("razorpay order create: %w", ctx.Err())
    case res := <-ch:
        return res.id, res.err
    }
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay sends with
// a payment callback against the order and payment ids.
func (g *RazorpayGateway) VerifySignature(orderRef, paymentRef, signature string) error {
    params := map[string]interface{}{
        "razorpay_order_id":   orderRef,
        "razorpay_payment_id": paymentRef,
    }
    if !utils.VerifyPaymentSignature(params, signature, g.keySecret) {
        return ErrSignatureInvalid
    }
    return nil
}
