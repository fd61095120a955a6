package booking

import (
	"context"
	"testing"
	"time"

	"campusride/config"
	"campusride/models"
	"campusride/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
}

func (f *fakeBookingRepo) Create(b *models.Booking) error {
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) GetByID(id string) (*models.Booking, error) { return f.bookings[id], nil }

func (f *fakeBookingRepo) ListByPassenger(passengerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.PassengerID == passengerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByRide(rideID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.RideID == rideID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SetTripStatus(id, status string) error {
	f.bookings[id].TripStatus = status
	return nil
}

func (f *fakeBookingRepo) SetPaymentStatus(id, status string) error {
	f.bookings[id].PaymentStatus = status
	return nil
}

func (f *fakeBookingRepo) SetReviewID(id, reviewID string) error {
	f.bookings[id].ReviewID = reviewID
	return nil
}

func (f *fakeBookingRepo) DeleteByPassenger(passengerID string) error { return nil }

type fakeRideRepo struct {
	rides map[string]*models.Ride
}

func (f *fakeRideRepo) Create(ride *models.Ride) error          { return nil }
func (f *fakeRideRepo) GetByID(id string) (*models.Ride, error) { return f.rides[id], nil }
func (f *fakeRideRepo) Update(ride *models.Ride) error          { return nil }
func (f *fakeRideRepo) Search(q models.RideSearchQuery) ([]models.Ride, error) {
	return nil, nil
}
func (f *fakeRideRepo) ListByDriver(driverID string) ([]models.Ride, error) { return nil, nil }
func (f *fakeRideRepo) SeatPassenger(ctx context.Context, rideID, passengerID string) (bool, error) {
	return true, nil
}
func (f *fakeRideRepo) UnseatPassenger(ctx context.Context, rideID, passengerID string) error {
	ride := f.rides[rideID]
	for i, pid := range ride.Passengers {
		if pid == passengerID {
			ride.Passengers = append(ride.Passengers[:i], ride.Passengers[i+1:]...)
			break
		}
	}
	return nil
}
func (f *fakeRideRepo) SetStatus(id, status string) error    { return nil }
func (f *fakeRideRepo) ArchiveDeparted() ([]string, error)   { return nil, nil }
func (f *fakeRideRepo) DeleteByDriver(driverID string) error { return nil }

type fakeReservationRepo struct {
	active map[string]*models.ReservationRequest // key ride:passenger
}

func (f *fakeReservationRepo) Create(req *models.ReservationRequest) error { return nil }
func (f *fakeReservationRepo) GetByID(id string) (*models.ReservationRequest, error) {
	return nil, nil
}
func (f *fakeReservationRepo) FindActive(rideID, passengerID string) (*models.ReservationRequest, error) {
	r := f.active[rideID+":"+passengerID]
	if r == nil || (r.Status != models.ReservationPending && r.Status != models.ReservationAccepted) {
		return nil, nil
	}
	return r, nil
}
func (f *fakeReservationRepo) ListByRide(rideID string) ([]models.ReservationRequest, error) {
	return nil, nil
}
func (f *fakeReservationRepo) ListByPassenger(passengerID string) ([]models.ReservationRequest, error) {
	return nil, nil
}
func (f *fakeReservationRepo) TransitionFromPending(id, newStatus, decidedBy string) (bool, error) {
	return false, nil
}
func (f *fakeReservationRepo) SetStatus(id, status, decidedBy string) error {
	for _, r := range f.active {
		if r.ID == id {
			r.Status = status
		}
	}
	return nil
}
func (f *fakeReservationRepo) DeleteByPassenger(passengerID string) error   { return nil }

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error)       { return f.users[id], nil }
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (f *fakeUserRepo) Create(u *models.User) error                   { return nil }
func (f *fakeUserRepo) Delete(id string) error                        { return nil }
func (f *fakeUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	return nil
}
func (f *fakeUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) SetRating(id string, avg float64, count int) error { return nil }

// fakeWalletRepo tracks balances in memory and enforces idempotency keys the
// way the Mongo implementation does.
type fakeWalletRepo struct {
	balances map[string]int64
	keys     map[string]bool
	fees     int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{balances: map[string]int64{}, keys: map[string]bool{}}
}

func (f *fakeWalletRepo) GetOrCreate(ctx context.Context, uid string) (*models.Wallet, error) {
	return &models.Wallet{UID: uid, BalanceCents: f.balances[uid]}, nil
}

func (f *fakeWalletRepo) ListLedger(ctx context.Context, uid string, limit int64) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeWalletRepo) AdjustBalance(ctx context.Context, uid string, amountCents int64, direction, idempotencyKey, kind, ref string) (*models.LedgerEntry, error) {
	if f.keys[idempotencyKey] {
		return &models.LedgerEntry{IdempotencyKey: idempotencyKey}, nil
	}
	delta := amountCents
	if direction == models.DirectionDebit {
		delta = -amountCents
	}
	if f.balances[uid]+delta < 0 {
		return nil, utils.NewServiceError(utils.CodeInsufficientFunds, "insufficient funds")
	}
	f.balances[uid] += delta
	f.keys[idempotencyKey] = true
	return &models.LedgerEntry{UID: uid, AmountCents: amountCents, Direction: direction, IdempotencyKey: idempotencyKey}, nil
}

func (f *fakeWalletRepo) TransferForRide(ctx context.Context, fromUID, toUID string, amountCents, feeCents int64, idempotencyKey, rideID string) error {
	if f.keys[idempotencyKey] {
		return nil
	}
	total := amountCents + feeCents
	if f.balances[fromUID]-total < 0 {
		return utils.NewServiceError(utils.CodeInsufficientFunds, "insufficient funds")
	}
	f.balances[fromUID] -= total
	f.balances[toUID] += amountCents
	f.fees += feeCents
	f.keys[idempotencyKey] = true
	return nil
}

func (f *fakeWalletRepo) Delete(ctx context.Context, uid string) error { return nil }

func newTestBookingService(t *testing.T) (*DefaultBookingService, *fakeWalletRepo, *fakeBookingRepo) {
	t.Helper()
	config.AppConfig.WalletFeePct = 10

	ride := &models.Ride{
		ID:          "ride1",
		DriverID:    "driver1",
		Depart:      "Campus",
		Destination: "Gare",
		DepartureAt: time.Now().Add(3 * time.Hour),
		Seats:       3,
		PriceCents:  1000,
		PricingMode: models.PricingPerSeat,
		Passengers:  []string{"passenger1"},
		Status:      models.RideStatusPublished,
	}
	wallets := newFakeWalletRepo()
	bookings := &fakeBookingRepo{bookings: map[string]*models.Booking{}}

	svc := &DefaultBookingService{
		Repo:  bookings,
		Rides: &fakeRideRepo{rides: map[string]*models.Ride{"ride1": ride}},
		Reservations: &fakeReservationRepo{active: map[string]*models.ReservationRequest{
			"ride1:passenger1": {ID: "res1", RideID: "ride1", PassengerID: "passenger1", Status: models.ReservationAccepted},
		}},
		Users: &fakeUserRepo{users: map[string]*models.User{
			"passenger1": {ID: "passenger1", Email: "p@example.edu", Name: "Paul", Campus: "main"},
		}},
		Wallets: wallets,
	}
	return svc, wallets, bookings
}

func TestConfirmWalletPaymentSplitsFee(t *testing.T) {
	svc, wallets, bookings := newTestBookingService(t)
	wallets.balances["passenger1"] = 1500

	b, err := svc.Confirm(context.Background(), "passenger1", ConfirmRequest{
		RideID:        "ride1",
		PaymentMethod: models.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if b.AmountCents != 1000 {
		t.Errorf("AmountCents = %d, want 1000", b.AmountCents)
	}
	if got := wallets.balances["passenger1"]; got != 500 {
		t.Errorf("passenger balance = %d, want 500", got)
	}
	if got := wallets.balances["driver1"]; got != 900 {
		t.Errorf("driver balance = %d, want 900 (price minus 10%% fee)", got)
	}
	if wallets.fees != 100 {
		t.Errorf("fee = %d, want 100", wallets.fees)
	}
	if b.MeetingPoint.Label == "" {
		t.Error("meeting point not snapshotted")
	}
	if len(bookings.bookings) != 1 {
		t.Errorf("bookings stored = %d, want 1", len(bookings.bookings))
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, wallets, bookings := newTestBookingService(t)
	wallets.balances["passenger1"] = 5000
	ctx := context.Background()

	first, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	second, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("repeated confirm created a new booking: %s vs %s", first.ID, second.ID)
	}
	if got := wallets.balances["passenger1"]; got != 4000 {
		t.Errorf("passenger balance = %d, want 4000 (debited once)", got)
	}
	if len(bookings.bookings) != 1 {
		t.Errorf("bookings stored = %d, want 1", len(bookings.bookings))
	}
}

func TestConfirmRejectsInsufficientFunds(t *testing.T) {
	svc, wallets, _ := newTestBookingService(t)
	wallets.balances["passenger1"] = 300

	_, err := svc.Confirm(context.Background(), "passenger1", ConfirmRequest{
		RideID:        "ride1",
		PaymentMethod: models.PaymentMethodWallet,
	})
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeInsufficientFunds {
		t.Errorf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
}

func TestConfirmRequiresAcceptedReservation(t *testing.T) {
	svc, wallets, _ := newTestBookingService(t)
	wallets.balances["stranger"] = 5000

	_, err := svc.Confirm(context.Background(), "stranger", ConfirmRequest{
		RideID:        "ride1",
		PaymentMethod: models.PaymentMethodWallet,
	})
	if err == nil {
		t.Fatal("expected confirmation without reservation to fail")
	}
}

func TestCancelByPassengerRefunds(t *testing.T) {
	svc, wallets, bookings := newTestBookingService(t)
	wallets.balances["passenger1"] = 1000
	ctx := context.Background()

	b, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := svc.CancelByPassenger(ctx, "passenger1", b.ID); err != nil {
		t.Fatalf("CancelByPassenger: %v", err)
	}

	if got := wallets.balances["passenger1"]; got != 1000 {
		t.Errorf("passenger balance after refund = %d, want 1000", got)
	}
	stored := bookings.bookings[b.ID]
	if stored.PaymentStatus != models.BookingRefunded {
		t.Errorf("payment status = %q, want refunded", stored.PaymentStatus)
	}
	if stored.TripStatus != models.TripCancelled {
		t.Errorf("trip status = %q, want cancelled", stored.TripStatus)
	}
}

func TestRebookAfterCancellationIsChargedAgain(t *testing.T) {
	svc, wallets, bookings := newTestBookingService(t)
	wallets.balances["passenger1"] = 2000
	ctx := context.Background()

	first, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := svc.CancelByPassenger(ctx, "passenger1", first.ID); err != nil {
		t.Fatalf("CancelByPassenger: %v", err)
	}
	if got := wallets.balances["passenger1"]; got != 2000 {
		t.Fatalf("balance after refund = %d, want 2000", got)
	}

	// The cancellation consumed the reservation, so the ride cannot be
	// rebooked straight away.
	if _, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet}); err == nil {
		t.Fatal("expected rebooking without a fresh reservation to fail")
	}
	if got := wallets.balances["passenger1"]; got != 2000 {
		t.Errorf("balance after rejected rebooking = %d, want 2000 untouched", got)
	}

	// The driver accepts a new request and the passenger is seated again.
	resv := svc.Reservations.(*fakeReservationRepo)
	resv.active["ride1:passenger1"] = &models.ReservationRequest{
		ID: "res2", RideID: "ride1", PassengerID: "passenger1", Status: models.ReservationAccepted,
	}
	ride := svc.Rides.(*fakeRideRepo).rides["ride1"]
	ride.Passengers = append(ride.Passengers, "passenger1")

	second, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if second.ID == first.ID {
		t.Error("rebooking reused the refunded booking record")
	}
	if second.PaymentStatus != models.BookingPaid {
		t.Errorf("second booking payment status = %q, want paid", second.PaymentStatus)
	}
	if got := wallets.balances["passenger1"]; got != 1000 {
		t.Errorf("balance after rebooking = %d, want 1000 (debited again)", got)
	}
	if len(bookings.bookings) != 2 {
		t.Errorf("bookings stored = %d, want the refunded and the paid record", len(bookings.bookings))
	}
}

func TestConfirmResumesPendingAfterFailedPayment(t *testing.T) {
	svc, wallets, bookings := newTestBookingService(t)
	wallets.balances["passenger1"] = 300
	ctx := context.Background()

	if _, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet}); err == nil {
		t.Fatal("expected confirmation to fail on insufficient funds")
	}
	if len(bookings.bookings) != 1 {
		t.Fatalf("bookings stored = %d, want the pending record", len(bookings.bookings))
	}

	wallets.balances["passenger1"] = 1500
	b, err := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	if err != nil {
		t.Fatalf("retried Confirm: %v", err)
	}
	if b.PaymentStatus != models.BookingPaid {
		t.Errorf("payment status = %q, want paid", b.PaymentStatus)
	}
	if len(bookings.bookings) != 1 {
		t.Errorf("bookings stored = %d, want the resumed record only", len(bookings.bookings))
	}
	if got := wallets.balances["passenger1"]; got != 500 {
		t.Errorf("balance = %d, want 500", got)
	}
}

func TestCancelByOtherUserForbidden(t *testing.T) {
	svc, wallets, _ := newTestBookingService(t)
	wallets.balances["passenger1"] = 1000
	ctx := context.Background()

	b, _ := svc.Confirm(ctx, "passenger1", ConfirmRequest{RideID: "ride1", PaymentMethod: models.PaymentMethodWallet})
	err := svc.CancelByPassenger(ctx, "intruder", b.ID)
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}
