package booking

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/bookmyseat/booking/internal/model"
    "github.com/bookmyseat/booking/internal/payment"
    "github.com/bookmyseat/booking/internal/queue"
    "github.com/bookmyseat/booking/internal/repository"
)

// memTx collects undo closures for every write made through it so a
// rollback restores the store to its pre-transaction state, mirroring
// what the SQL transaction gives the production repositories.
type memTx struct {
    store *memStore
    undo  []func()
    done  bool
}

func (t *memTx) Commit() error {
    t.done = true
    return nil
}

func (t *memTx) Rollback() error {
    if t.done {
        return nil
    }
    t.done = true
    t.store.mu.Lock()
    defer t.store.mu.Unlock()
    for i := len(t.undo) - 1; i >= 0; i-- {
        t.undo[i]()
    }
    return nil
}

// memStore is an in-memory stand-in for the MySQL repositories.  It
// implements SeatLedger, BookingStore, PaymentStore, TheaterStore and
// repository.TxManager.  Seat reservation is an atomic check-and-set
// under the store mutex, matching the conditional UPDATE the real
// ledger relies on.
type memStore struct {
    mu         sync.Mutex
    seats      map[uint64]*model.Seat
    bookings   map[uint64]*model.Booking
    payments   []*model.Payment
    theaters   map[uint64]*model.Theater
    nextID     uint64
    detailErr  error
}

func newMemStore() *memStore {
    return &memStore{
        seats:    make(map[uint64]*model.Seat),
        bookings: make(map[uint64]*model.Booking),
        theaters: make(map[uint64]*model.Theater),
    }
}

func (s *memStore) Begin(ctx context.Context) (repository.Tx, error) {
    return &memTx{store: s}, nil
}

func (s *memStore) addTheater(id, movieID uint64, name string) {
    s.theaters[id] = &model.Theater{ID: id, MovieID: movieID, Name: name, ShowTime: time.Now().Add(24 * time.Hour)}
}

func (s *memStore) addSeat(id, theaterID uint64, number string, priceCents uint32) {
    s.seats[id] = &model.Seat{ID: id, TheaterID: theaterID, SeatNumber: number, PriceCents: priceCents}
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.theaters[id]
    if !ok {
        return nil, repository.ErrTheaterNotFound
    }
    cp := *t
    return &cp, nil
}

func (s *memStore) GetTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    seat, ok := s.seats[seatID]
    if !ok || seat.TheaterID != theaterID {
        return nil, repository.ErrSeatNotFound
    }
    cp := *seat
    return &cp, nil
}

func (s *memStore) TryReserveTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    seat, ok := s.seats[seatID]
    if !ok || seat.TheaterID != theaterID {
        return nil, repository.ErrSeatNotFound
    }
    if seat.IsBooked {
        cp := *seat
        return &cp, repository.ErrSeatConflict
    }
    seat.IsBooked = true
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { seat.IsBooked = false })
    cp := *seat
    return &cp, nil
}

func (s *memStore) ReleaseSeatTx(ctx context.Context, tx repository.Tx, seatID uint64) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    seat, ok := s.seats[seatID]
    if !ok {
        return repository.ErrSeatNotFound
    }
    prev := seat.IsBooked
    seat.IsBooked = false
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { seat.IsBooked = prev })
    return nil
}

func (s *memStore) CreateTx(ctx context.Context, tx repository.Tx, b *model.Booking) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID++
    b.ID = s.nextID
    if b.BookedAt.IsZero() {
        b.BookedAt = time.Now().UTC()
    }
    b.UpdatedAt = b.BookedAt
    cp := *b
    s.bookings[b.ID] = &cp
    id := b.ID
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { delete(s.bookings, id) })
    return nil
}

func (s *memStore) GetBookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    return &cp, nil
}

func (s *memStore) GetByIDTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Booking, error) {
    return s.GetBookingByID(ctx, id)
}

func (s *memStore) SetOrderRefTx(ctx context.Context, tx repository.Tx, id uint64, orderRef string) error {
    return s.mutateProvisional(tx, id, func(b *model.Booking) {
        ref := orderRef
        b.RazorpayOrderID = &ref
    })
}

func (s *memStore) ConfirmTx(ctx context.Context, tx repository.Tx, id uint64, paymentRef string) error {
    return s.mutateProvisional(tx, id, func(b *model.Booking) {
        ref := paymentRef
        b.Status = model.BookingConfirmed
        b.PaymentRef = &ref
    })
}

func (s *memStore) ReleaseBookingTx(ctx context.Context, tx repository.Tx, id uint64) error {
    return s.mutateProvisional(tx, id, func(b *model.Booking) {
        b.Status = model.BookingReleased
    })
}

// mutateProvisional applies fn to a provisional booking under the
// status guard the SQL repository enforces with its conditional UPDATE.
func (s *memStore) mutateProvisional(tx repository.Tx, id uint64, fn func(*model.Booking)) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return repository.ErrBookingNotFound
    }
    if b.Status != model.BookingProvisional {
        return repository.ErrBookingFinalized
    }
    prev := *b
    fn(b)
    b.UpdatedAt = time.Now().UTC()
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { *b = prev })
    return nil
}

func (s *memStore) ExpiredProvisionalTx(ctx context.Context, tx repository.Tx, theaterID uint64, cutoff time.Time) ([]model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Booking
    for _, b := range s.bookings {
        if b.Status != model.BookingProvisional {
            continue
        }
        if theaterID != 0 && b.TheaterID != theaterID {
            continue
        }
        if b.BookedAt.Before(cutoff) {
            out = append(out, *b)
        }
    }
    return out, nil
}

func (s *memStore) DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
    if s.detailErr != nil {
        return nil, s.detailErr
    }
    b, err := s.GetBookingByID(ctx, id)
    if err != nil {
        return nil, err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    seat := s.seats[b.SeatID]
    theater := s.theaters[b.TheaterID]
    d := &model.BookingDetail{
        Booking:   *b,
        Username:  "alice",
        UserEmail: "alice@example.com",
        MovieName: "Interstellar",
    }
    if seat != nil {
        d.SeatNumber = seat.SeatNumber
    }
    if theater != nil {
        d.TheaterName = theater.Name
        d.ShowTime = theater.ShowTime
    }
    return d, nil
}

func (s *memStore) CreatePaymentTx(ctx context.Context, tx repository.Tx, p *model.Payment) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cp := *p
    cp.ID = uint64(len(s.payments) + 1)
    cp.CreatedAt = time.Now().UTC()
    s.payments = append(s.payments, &cp)
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { s.payments = s.payments[:len(s.payments)-1] })
    return nil
}

func (s *memStore) ResolvePendingTx(ctx context.Context, tx repository.Tx, bookingID uint64, amountCents uint32, paymentID, status string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for i := len(s.payments) - 1; i >= 0; i-- {
        p := s.payments[i]
        if p.BookingID == bookingID && p.Status == model.PaymentPending {
            prev := *p
            p.PaymentID = paymentID
            p.Status = status
            tx.(*memTx).undo = append(tx.(*memTx).undo, func() { *p = prev })
            return nil
        }
    }
    settled := &model.Payment{
        ID:          uint64(len(s.payments) + 1),
        BookingID:   bookingID,
        AmountCents: amountCents,
        PaymentID:   paymentID,
        Status:      status,
        CreatedAt:   time.Now().UTC(),
    }
    s.payments = append(s.payments, settled)
    tx.(*memTx).undo = append(tx.(*memTx).undo, func() { s.payments = s.payments[:len(s.payments)-1] })
    return nil
}

// seatAdapter and bookingAdapter split memStore's seat/booking methods
// whose names would otherwise collide (ReleaseTx, GetByID).
type seatAdapter struct{ s *memStore }

func (a seatAdapter) GetTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error) {
    return a.s.GetTx(ctx, tx, seatID, theaterID)
}

func (a seatAdapter) TryReserveTx(ctx context.Context, tx repository.Tx, seatID, theaterID uint64) (*model.Seat, error) {
    return a.s.TryReserveTx(ctx, tx, seatID, theaterID)
}

func (a seatAdapter) ReleaseTx(ctx context.Context, tx repository.Tx, seatID uint64) error {
    return a.s.ReleaseSeatTx(ctx, tx, seatID)
}

type bookingAdapter struct{ s *memStore }

func (a bookingAdapter) CreateTx(ctx context.Context, tx repository.Tx, b *model.Booking) error {
    return a.s.CreateTx(ctx, tx, b)
}

func (a bookingAdapter) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return a.s.GetBookingByID(ctx, id)
}

func (a bookingAdapter) GetByIDTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Booking, error) {
    return a.s.GetByIDTx(ctx, tx, id)
}

func (a bookingAdapter) SetOrderRefTx(ctx context.Context, tx repository.Tx, id uint64, orderRef string) error {
    return a.s.SetOrderRefTx(ctx, tx, id, orderRef)
}

func (a bookingAdapter) ConfirmTx(ctx context.Context, tx repository.Tx, id uint64, paymentRef string) error {
    return a.s.ConfirmTx(ctx, tx, id, paymentRef)
}

func (a bookingAdapter) ReleaseTx(ctx context.Context, tx repository.Tx, id uint64) error {
    return a.s.ReleaseBookingTx(ctx, tx, id)
}

func (a bookingAdapter) ExpiredProvisionalTx(ctx context.Context, tx repository.Tx, theaterID uint64, cutoff time.Time) ([]model.Booking, error) {
    return a.s.ExpiredProvisionalTx(ctx, tx, theaterID, cutoff)
}

func (a bookingAdapter) DetailByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
    return a.s.DetailByID(ctx, id)
}

type paymentAdapter struct{ s *memStore }

func (a paymentAdapter) CreateTx(ctx context.Context, tx repository.Tx, p *model.Payment) error {
    return a.s.CreatePaymentTx(ctx, tx, p)
}

func (a paymentAdapter) ResolvePendingTx(ctx context.Context, tx repository.Tx, bookingID uint64, amountCents uint32, paymentID, status string) error {
    return a.s.ResolvePendingTx(ctx, tx, bookingID, amountCents, paymentID, status)
}

// fakeGateway returns sequential order references and accepts only the
// signature "valid-signature".
type fakeGateway struct {
    mu        sync.Mutex
    orders    int
    amounts   []uint32
    currency  string
    createErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor uint32, currency, receipt string) (string, error) {
    g.mu.Lock()
    defer g.mu.Unlock()
    if g.createErr != nil {
        return "", g.createErr
    }
    g.orders++
    g.amounts = append(g.amounts, amountMinor)
    g.currency = currency
    return fmt.Sprintf("order_%d", g.orders), nil
}

func (g *fakeGateway) VerifySignature(orderRef, paymentRef, signature string) error {
    if signature != "valid-signature" {
        return payment.ErrSignatureInvalid
    }
    return nil
}

type fakeNotifier struct {
    mu     sync.Mutex
    events []queue.BookingConfirmedEvent
    err    error
}

func (n *fakeNotifier) SendConfirmation(ctx context.Context, ev queue.BookingConfirmedEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    if n.err != nil {
        return n.err
    }
    n.events = append(n.events, ev)
    return nil
}

type fixture struct {
    store    *memStore
    gateway  *fakeGateway
    notifier *fakeNotifier
    coord    *Coordinator
}

func newFixture(t *testing.T, holdTTL time.Duration) *fixture {
    t.Helper()
    store := newMemStore()
    gw := &fakeGateway{}
    nt := &fakeNotifier{}
    coord := NewCoordinator(
        store,
        seatAdapter{store},
        bookingAdapter{store},
        paymentAdapter{store},
        store,
        gw, nt, holdTTL,
    )
    return &fixture{store: store, gateway: gw, notifier: nt, coord: coord}
}

// seedShowing creates one theater with the given seats, priced at
// 15000 paise (150.00 INR) each.
func (f *fixture) seedShowing(theaterID uint64, seatIDs ...uint64) {
    f.store.addTheater(theaterID, 7, "Grand Hall")
    for i, id := range seatIDs {
        f.store.addSeat(id, theaterID, fmt.Sprintf("A%d", i+1), 15000)
    }
}

func TestRequestBookingCreatesProvisionalHold(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10, 11)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    require.Len(t, created, 1)

    b := created[0]
    assert.Equal(t, model.BookingProvisional, b.Status)
    assert.Equal(t, uint64(42), b.UserID)
    assert.Equal(t, uint64(10), b.SeatID)
    assert.Equal(t, uint64(7), b.MovieID)
    assert.Equal(t, uint32(15000), b.PriceCents, "price must be snapshotted from the seat")
    assert.True(t, f.store.seats[10].IsBooked)
    assert.False(t, f.store.seats[11].IsBooked)
}

func TestRequestBookingRejectsEmptySelection(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    _, err := f.coord.RequestBooking(context.Background(), 42, 1, nil)
    assert.ErrorIs(t, err, ErrNoSeats)

    _, err = f.coord.RequestBooking(context.Background(), 42, 1, []uint64{0, 0})
    assert.ErrorIs(t, err, ErrNoSeats)
}

func TestRequestBookingUnknownTheater(t *testing.T) {
    f := newFixture(t, 10*time.Minute)

    _, err := f.coord.RequestBooking(context.Background(), 42, 99, []uint64{10})
    assert.ErrorIs(t, err, repository.ErrTheaterNotFound)
}

func TestRequestBookingUnknownSeat(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    _, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{999})
    assert.ErrorIs(t, err, repository.ErrSeatNotFound)
    assert.False(t, f.store.seats[10].IsBooked)
}

func TestRequestBookingDeduplicatesSeatIDs(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10, 10, 10})
    require.NoError(t, err)
    assert.Len(t, created, 1)
}

func TestRequestBookingConflictRollsBackEverything(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10, 11, 12)

    // Another customer already holds seat A2.
    _, err := f.coord.RequestBooking(context.Background(), 7, 1, []uint64{11})
    require.NoError(t, err)

    _, err = f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10, 11, 12})
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, []string{"A2"}, conflict.SeatNumbers)

    // Seats A1 and A3 were reserved mid-transaction and must be free
    // again, with no bookings left behind for user 42.
    assert.False(t, f.store.seats[10].IsBooked)
    assert.False(t, f.store.seats[12].IsBooked)
    for _, b := range f.store.bookings {
        assert.NotEqual(t, uint64(42), b.UserID)
    }
}

func TestConcurrentRequestsSingleWinner(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    const callers = 16
    var wg sync.WaitGroup
    errs := make([]error, callers)
    for i := 0; i < callers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = f.coord.RequestBooking(context.Background(), uint64(i+1), 1, []uint64{10})
        }(i)
    }
    wg.Wait()

    wins, conflicts := 0, 0
    for _, err := range errs {
        var conflict *ConflictError
        switch {
        case err == nil:
            wins++
        case errors.As(err, &conflict):
            conflicts++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    assert.Equal(t, 1, wins, "exactly one caller must win the seat")
    assert.Equal(t, callers-1, conflicts)
    assert.Len(t, f.store.bookings, 1)
}

func TestReleaseBookingFreesSeatForRebooking(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)

    require.NoError(t, f.coord.ReleaseBooking(context.Background(), created[0].ID))
    assert.Equal(t, model.BookingReleased, f.store.bookings[created[0].ID].Status)
    assert.False(t, f.store.seats[10].IsBooked)

    // The freed seat is winnable by someone else.
    again, err := f.coord.RequestBooking(context.Background(), 43, 1, []uint64{10})
    require.NoError(t, err)
    assert.Equal(t, uint64(43), again[0].UserID)
}

func TestReleaseBookingRejectsTerminal(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    require.NoError(t, f.coord.ReleaseBooking(context.Background(), created[0].ID))

    err = f.coord.ReleaseBooking(context.Background(), created[0].ID)
    assert.ErrorIs(t, err, repository.ErrBookingFinalized)

    err = f.coord.ReleaseBooking(context.Background(), 999)
    assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestInitiatePaymentCreatesOrderAndPendingAttempt(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)

    intent, err := f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.NoError(t, err)
    assert.Equal(t, created[0].ID, intent.BookingID)
    assert.Equal(t, "order_1", intent.OrderRef)
    assert.Equal(t, uint32(15000), intent.AmountCents)
    assert.Equal(t, "INR", intent.Currency)

    // The gateway was charged the snapshot amount in paise.
    assert.Equal(t, []uint32{15000}, f.gateway.amounts)
    assert.Equal(t, "INR", f.gateway.currency)

    b := f.store.bookings[created[0].ID]
    require.NotNil(t, b.RazorpayOrderID)
    assert.Equal(t, "order_1", *b.RazorpayOrderID)

    require.Len(t, f.store.payments, 1)
    assert.Equal(t, model.PaymentPending, f.store.payments[0].Status)
    assert.Equal(t, uint32(15000), f.store.payments[0].AmountCents)
}

func TestInitiatePaymentRejectsFinalizedBooking(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    require.NoError(t, f.coord.ReleaseBooking(context.Background(), created[0].ID))

    _, err = f.coord.InitiatePayment(context.Background(), created[0].ID)
    assert.ErrorIs(t, err, repository.ErrBookingFinalized)
}

func TestInitiatePaymentGatewayErrorLeavesBookingUntouched(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)
    f.gateway.createErr = errors.New("gateway unreachable")

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)

    _, err = f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.Error(t, err)

    b := f.store.bookings[created[0].ID]
    assert.Equal(t, model.BookingProvisional, b.Status)
    assert.Nil(t, b.RazorpayOrderID)
    assert.Empty(t, f.store.payments)
}

func TestFinalizePaymentConfirmsBookingOnce(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    intent, err := f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.NoError(t, err)

    err = f.coord.FinalizePayment(context.Background(), created[0].ID, intent.OrderRef, "pay_123", "valid-signature")
    require.NoError(t, err)

    b := f.store.bookings[created[0].ID]
    assert.Equal(t, model.BookingConfirmed, b.Status)
    require.NotNil(t, b.PaymentRef)
    assert.Equal(t, "pay_123", *b.PaymentRef)
    assert.True(t, f.store.seats[10].IsBooked, "confirmed seat stays booked")

    require.Len(t, f.store.payments, 1)
    assert.Equal(t, model.PaymentCompleted, f.store.payments[0].Status)
    assert.Equal(t, "pay_123", f.store.payments[0].PaymentID)

    // Exactly one confirmation notice with the booked context.
    require.Len(t, f.notifier.events, 1)
    ev := f.notifier.events[0]
    assert.Equal(t, created[0].ID, ev.BookingID)
    assert.Equal(t, "alice@example.com", ev.UserEmail)
    assert.Equal(t, "Grand Hall", ev.TheaterName)
    assert.Equal(t, "A1", ev.SeatNumber)
    assert.Equal(t, uint32(15000), ev.AmountCents)
    assert.Equal(t, "pay_123", ev.PaymentRef)

    // Replaying the callback must not double-confirm or re-notify.
    err = f.coord.FinalizePayment(context.Background(), created[0].ID, intent.OrderRef, "pay_123", "valid-signature")
    assert.ErrorIs(t, err, repository.ErrBookingFinalized)
    assert.Len(t, f.notifier.events, 1)
}

func TestFinalizePaymentInvalidSignatureReleasesHold(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    intent, err := f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.NoError(t, err)

    err = f.coord.FinalizePayment(context.Background(), created[0].ID, intent.OrderRef, "pay_123", "forged")
    assert.ErrorIs(t, err, ErrPaymentVerification)

    b := f.store.bookings[created[0].ID]
    assert.Equal(t, model.BookingReleased, b.Status)
    assert.False(t, f.store.seats[10].IsBooked)
    require.Len(t, f.store.payments, 1)
    assert.Equal(t, model.PaymentFailed, f.store.payments[0].Status)
    assert.Empty(t, f.notifier.events)

    // The freed seat can be booked again immediately.
    _, err = f.coord.RequestBooking(context.Background(), 43, 1, []uint64{10})
    assert.NoError(t, err)
}

func TestFinalizePaymentOrderMismatchReleasesHold(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    _, err = f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.NoError(t, err)

    err = f.coord.FinalizePayment(context.Background(), created[0].ID, "order_other", "pay_123", "valid-signature")
    assert.ErrorIs(t, err, ErrPaymentVerification)
    assert.Equal(t, model.BookingReleased, f.store.bookings[created[0].ID].Status)
    assert.False(t, f.store.seats[10].IsBooked)
}

func TestFinalizePaymentNotifierFailureKeepsConfirmation(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)
    f.notifier.err = errors.New("broker down")

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    intent, err := f.coord.InitiatePayment(context.Background(), created[0].ID)
    require.NoError(t, err)

    err = f.coord.FinalizePayment(context.Background(), created[0].ID, intent.OrderRef, "pay_123", "valid-signature")
    require.NoError(t, err, "delivery failure must not fail the confirmation")
    assert.Equal(t, model.BookingConfirmed, f.store.bookings[created[0].ID].Status)
}

func TestReleaseExpiredSweepsOldHolds(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10, 11)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10, 11})
    require.NoError(t, err)

    // Backdate one hold past the TTL; the other stays fresh.
    f.store.bookings[created[0].ID].BookedAt = time.Now().UTC().Add(-time.Hour)

    n, err := f.coord.ReleaseExpired(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 1, n)
    assert.Equal(t, model.BookingReleased, f.store.bookings[created[0].ID].Status)
    assert.False(t, f.store.seats[10].IsBooked)
    assert.Equal(t, model.BookingProvisional, f.store.bookings[created[1].ID].Status)
    assert.True(t, f.store.seats[11].IsBooked)
}

func TestRequestBookingReleasesExpiredHoldsLazily(t *testing.T) {
    f := newFixture(t, 10*time.Minute)
    f.seedShowing(1, 10)

    created, err := f.coord.RequestBooking(context.Background(), 42, 1, []uint64{10})
    require.NoError(t, err)
    f.store.bookings[created[0].ID].BookedAt = time.Now().UTC().Add(-time.Hour)

    // A new request for the same showing frees the abandoned seat and
    // wins it in the same transaction.
    again, err := f.coord.RequestBooking(context.Background(), 43, 1, []uint64{10})
    require.NoError(t, err)
    assert.Equal(t, uint64(43), again[0].UserID)
    assert.Equal(t, model.BookingReleased, f.store.bookings[created[0].ID].Status)
}
