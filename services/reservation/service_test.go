package reservation

import (
	"context"
	"testing"
	"time"

	"campusride/models"
	"campusride/utils"
)

type fakeReservationRepo struct {
	reqs map[string]*models.ReservationRequest
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reqs: map[string]*models.ReservationRequest{}}
}

func (f *fakeReservationRepo) Create(req *models.ReservationRequest) error {
	f.reqs[req.ID] = req
	return nil
}

func (f *fakeReservationRepo) GetByID(id string) (*models.ReservationRequest, error) {
	return f.reqs[id], nil
}

func (f *fakeReservationRepo) FindActive(rideID, passengerID string) (*models.ReservationRequest, error) {
	for _, r := range f.reqs {
		if r.RideID == rideID && r.PassengerID == passengerID &&
			(r.Status == models.ReservationPending || r.Status == models.ReservationAccepted) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) ListByRide(rideID string) ([]models.ReservationRequest, error) {
	return nil, nil
}

func (f *fakeReservationRepo) ListByPassenger(passengerID string) ([]models.ReservationRequest, error) {
	return nil, nil
}

func (f *fakeReservationRepo) TransitionFromPending(id, newStatus, decidedBy string) (bool, error) {
	r, ok := f.reqs[id]
	if !ok || r.Status != models.ReservationPending {
		return false, nil
	}
	r.Status = newStatus
	r.DecidedBy = decidedBy
	r.DecidedAt = time.Now()
	return true, nil
}

func (f *fakeReservationRepo) SetStatus(id, status, decidedBy string) error {
	if r, ok := f.reqs[id]; ok {
		r.Status = status
		r.DecidedBy = decidedBy
	}
	return nil
}

func (f *fakeReservationRepo) DeleteByPassenger(passengerID string) error { return nil }

type fakeRideRepo struct {
	rides     map[string]*models.Ride
	seatFails bool
}

func (f *fakeRideRepo) Create(ride *models.Ride) error             { return nil }
func (f *fakeRideRepo) GetByID(id string) (*models.Ride, error)    { return f.rides[id], nil }
func (f *fakeRideRepo) Update(ride *models.Ride) error             { return nil }
func (f *fakeRideRepo) Search(q models.RideSearchQuery) ([]models.Ride, error) {
	return nil, nil
}
func (f *fakeRideRepo) ListByDriver(driverID string) ([]models.Ride, error) { return nil, nil }

func (f *fakeRideRepo) SeatPassenger(ctx context.Context, rideID, passengerID string) (bool, error) {
	if f.seatFails {
		return false, nil
	}
	ride := f.rides[rideID]
	if ride.SeatsLeft() <= 0 {
		return false, nil
	}
	ride.Passengers = append(ride.Passengers, passengerID)
	return true, nil
}

func (f *fakeRideRepo) UnseatPassenger(ctx context.Context, rideID, passengerID string) error {
	return nil
}
func (f *fakeRideRepo) SetStatus(id, status string) error     { return nil }
func (f *fakeRideRepo) ArchiveDeparted() ([]string, error)    { return nil, nil }
func (f *fakeRideRepo) DeleteByDriver(driverID string) error  { return nil }

type fakeNotifier struct {
	sent []string // "<uid>:<type>"
}

func (f *fakeNotifier) Notify(ctx context.Context, uid, notifType, title, body string, data map[string]string) error {
	f.sent = append(f.sent, uid+":"+notifType)
	return nil
}

func (f *fakeNotifier) ScheduleRideReminder(ctx context.Context, uid, rideID, title, body string, fireAt time.Time) error {
	return nil
}

func (f *fakeNotifier) DeliverScheduled(ctx context.Context, p models.ReminderPayload) error {
	return nil
}

func (f *fakeNotifier) SetPushEnabled(ctx context.Context, uid string, enabled bool) error {
	return nil
}

func (f *fakeNotifier) List(ctx context.Context, uid string, limit int64) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) MarkRead(ctx context.Context, uid, id string) error { return nil }
func (f *fakeNotifier) MarkAllRead(ctx context.Context, uid string) error  { return nil }
func (f *fakeNotifier) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return 0, nil
}

type fakeScheduler struct {
	scheduled []string
	cancelled []string
}

func (f *fakeScheduler) ScheduleAutoAccept(reservationID string, at time.Time) (string, error) {
	id := "autoaccept:" + reservationID
	f.scheduled = append(f.scheduled, id)
	return id, nil
}

func (f *fakeScheduler) ScheduleReminder(p models.ReminderPayload, at time.Time) (string, error) {
	return "", nil
}

func (f *fakeScheduler) Cancel(taskID string) error {
	f.cancelled = append(f.cancelled, taskID)
	return nil
}

func newTestService(ride *models.Ride) (*DefaultReservationService, *fakeReservationRepo, *fakeRideRepo, *fakeScheduler) {
	resRepo := newFakeReservationRepo()
	rides := &fakeRideRepo{rides: map[string]*models.Ride{ride.ID: ride}}
	sched := &fakeScheduler{}
	svc := &DefaultReservationService{
		Repo:      resRepo,
		Rides:     rides,
		Notifier:  &fakeNotifier{},
		Scheduler: sched,
	}
	return svc, resRepo, rides, sched
}

func publishedRide() *models.Ride {
	return &models.Ride{
		ID:         "ride1",
		DriverID:   "driver1",
		Depart:     "Campus",
		Seats:      2,
		Passengers: []string{},
		Status:     models.RideStatusPublished,
	}
}

func TestRequestSchedulesAutoAccept(t *testing.T) {
	svc, _, _, sched := newTestService(publishedRide())

	req, err := svc.Request(context.Background(), "passenger1", "ride1")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.Status != models.ReservationPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
	if len(sched.scheduled) != 1 {
		t.Fatalf("expected one scheduled task, got %d", len(sched.scheduled))
	}
}

func TestRequestRejectsDuplicate(t *testing.T) {
	svc, _, _, _ := newTestService(publishedRide())
	ctx := context.Background()

	if _, err := svc.Request(ctx, "passenger1", "ride1"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := svc.Request(ctx, "passenger1", "ride1")
	if err == nil {
		t.Fatal("expected duplicate request to fail")
	}
	var svcErr *utils.ServiceError
	if !asServiceError(err, &svcErr) || svcErr.Code != utils.CodeInvalidRequest {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequestRejectsFullRide(t *testing.T) {
	ride := publishedRide()
	ride.Passengers = []string{"a", "b"}
	svc, _, _, _ := newTestService(ride)

	_, err := svc.Request(context.Background(), "passenger1", "ride1")
	var svcErr *utils.ServiceError
	if !asServiceError(err, &svcErr) || svcErr.Code != utils.CodeRideFull {
		t.Errorf("expected RIDE_FULL, got %v", err)
	}
}

func TestRequestRejectsOwnRide(t *testing.T) {
	svc, _, _, _ := newTestService(publishedRide())
	if _, err := svc.Request(context.Background(), "driver1", "ride1"); err == nil {
		t.Fatal("expected driver's own request to fail")
	}
}

func TestAcceptSeatsPassengerAndCancelsTask(t *testing.T) {
	svc, resRepo, rides, sched := newTestService(publishedRide())
	ctx := context.Background()

	req, err := svc.Request(ctx, "passenger1", "ride1")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := svc.Accept(ctx, "driver1", req.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if got := resRepo.reqs[req.ID].Status; got != models.ReservationAccepted {
		t.Errorf("status = %q, want accepted", got)
	}
	if len(rides.rides["ride1"].Passengers) != 1 {
		t.Error("passenger not seated")
	}
	if len(sched.cancelled) != 1 || sched.cancelled[0] != "autoaccept:"+req.ID {
		t.Errorf("auto-accept task not cancelled: %v", sched.cancelled)
	}
}

func TestAcceptRequiresDriver(t *testing.T) {
	svc, _, _, _ := newTestService(publishedRide())
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")
	err := svc.Accept(ctx, "someone-else", req.ID)
	var svcErr *utils.ServiceError
	if !asServiceError(err, &svcErr) || svcErr.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestAutoAcceptIsExactlyOnce(t *testing.T) {
	svc, resRepo, rides, _ := newTestService(publishedRide())
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")

	if err := svc.HandleAutoAccept(ctx, req.ID); err != nil {
		t.Fatalf("first auto-accept: %v", err)
	}
	// A redelivered task must be a no-op.
	if err := svc.HandleAutoAccept(ctx, req.ID); err != nil {
		t.Fatalf("redelivered auto-accept: %v", err)
	}

	if got := resRepo.reqs[req.ID].DecidedBy; got != AutoDecider {
		t.Errorf("DecidedBy = %q, want %q", got, AutoDecider)
	}
	if n := len(rides.rides["ride1"].Passengers); n != 1 {
		t.Errorf("passenger seated %d times, want 1", n)
	}
}

func TestAutoAcceptOnDeletedRideIsNoOp(t *testing.T) {
	svc, resRepo, rides, _ := newTestService(publishedRide())
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")
	delete(rides.rides, "ride1")

	// The task must not error, or the queue would retry it forever.
	if err := svc.HandleAutoAccept(ctx, req.ID); err != nil {
		t.Fatalf("auto-accept on deleted ride: %v", err)
	}
	if got := resRepo.reqs[req.ID].Status; got != models.ReservationPending {
		t.Errorf("status = %q, want pending left untouched", got)
	}
}

func TestAutoAcceptSkipsDecidedRequest(t *testing.T) {
	svc, resRepo, rides, _ := newTestService(publishedRide())
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")
	if err := svc.Reject(ctx, "driver1", req.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := svc.HandleAutoAccept(ctx, req.ID); err != nil {
		t.Fatalf("auto-accept after reject: %v", err)
	}
	if got := resRepo.reqs[req.ID].Status; got != models.ReservationRejected {
		t.Errorf("status = %q, want rejected", got)
	}
	if len(rides.rides["ride1"].Passengers) != 0 {
		t.Error("rejected passenger must not be seated")
	}
}

func TestAcceptOnFullRideRollsOverToRejected(t *testing.T) {
	svc, resRepo, rides, _ := newTestService(publishedRide())
	rides.seatFails = true
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")
	err := svc.Accept(ctx, "driver1", req.ID)
	var svcErr *utils.ServiceError
	if !asServiceError(err, &svcErr) || svcErr.Code != utils.CodeRideFull {
		t.Fatalf("expected RIDE_FULL, got %v", err)
	}
	if got := resRepo.reqs[req.ID].Status; got != models.ReservationRejected {
		t.Errorf("status = %q, want rejected after failed seating", got)
	}
}

func TestCancelOnlyByRequester(t *testing.T) {
	svc, _, _, sched := newTestService(publishedRide())
	ctx := context.Background()

	req, _ := svc.Request(ctx, "passenger1", "ride1")
	if err := svc.Cancel(ctx, "other", req.ID); err == nil {
		t.Fatal("expected cancel by non-requester to fail")
	}
	if err := svc.Cancel(ctx, "passenger1", req.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(sched.cancelled) != 1 {
		t.Error("auto-accept task should be cancelled on passenger cancel")
	}
}

func asServiceError(err error, target **utils.ServiceError) bool {
	if err == nil {
		return false
	}
	se, ok := err.(*utils.ServiceError)
	if ok {
		*target = se
	}
	return ok
}
