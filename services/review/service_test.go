package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"campusride/models"
	"campusride/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type fakeReviewRepo struct {
	reviews map[string]*models.Review // key ride:passenger
	nextID  int
}

func (f *fakeReviewRepo) Upsert(review *models.Review) (*models.Review, error) {
	key := review.RideID + ":" + review.PassengerID
	if existing, ok := f.reviews[key]; ok {
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		existing.UpdatedAt = review.UpdatedAt
		return existing, nil
	}
	f.nextID++
	stored := *review
	stored.ID = fmt.Sprintf("rev%d", f.nextID)
	stored.CreatedAt = review.UpdatedAt
	f.reviews[key] = &stored
	return &stored, nil
}

func (f *fakeReviewRepo) Get(rideID, passengerID string) (*models.Review, error) {
	return f.reviews[rideID+":"+passengerID], nil
}

func (f *fakeReviewRepo) GetByID(id string) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) ListByDriver(driverID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.DriverID == driverID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) SetDriverResponse(reviewID, response string) error {
	for _, r := range f.reviews {
		if r.ID == reviewID {
			r.DriverResponse = response
			return nil
		}
	}
	return nil
}

func (f *fakeReviewRepo) DriverAggregate(driverID string) (float64, int, error) {
	var sum float64
	var count int
	for _, r := range f.reviews {
		if r.DriverID == driverID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (f *fakeReviewRepo) DeleteByPassenger(passengerID string) error { return nil }

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
	return nil
}
func (f *fakeRideRepo) SetStatus(id, status string) error    { return nil }
func (f *fakeRideRepo) ArchiveDeparted() ([]string, error)   { return nil, nil }
func (f *fakeRideRepo) DeleteByDriver(driverID string) error { return nil }

type fakeBookingRepo struct {
	bookings []models.Booking
}

func (f *fakeBookingRepo) Create(b *models.Booking) error              { return nil }
func (f *fakeBookingRepo) GetByID(id string) (*models.Booking, error)  { return nil, nil }
func (f *fakeBookingRepo) ListByRide(id string) ([]models.Booking, error) {
	return nil, nil
}
func (f *fakeBookingRepo) ListByPassenger(passengerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.PassengerID == passengerID {
			out = append(out, b)
		}
	}
	return out, nil
}
func (f *fakeBookingRepo) SetTripStatus(id, status string) error      { return nil }
func (f *fakeBookingRepo) SetPaymentStatus(id, status string) error   { return nil }
func (f *fakeBookingRepo) SetReviewID(id, reviewID string) error      { return nil }
func (f *fakeBookingRepo) DeleteByPassenger(passengerID string) error { return nil }

type ratingWrite struct {
	avg   float64
	count int
}

type fakeUserStore struct {
	ratings map[string]ratingWrite
}

func (f *fakeUserStore) GetByID(id string) (*models.User, error)              { return nil, nil }
func (f *fakeUserStore) GetByEmail(email string) (*models.User, error)        { return nil, nil }
func (f *fakeUserStore) Create(u *models.User) error                          { return nil }
func (f *fakeUserStore) Delete(id string) error                               { return nil }
func (f *fakeUserStore) UpdateSetDocument(id string, updateDoc bson.M) error  { return nil }
func (f *fakeUserStore) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	return nil, nil
}
func (f *fakeUserStore) SetRating(id string, avg float64, count int) error {
	f.ratings[id] = ratingWrite{avg: avg, count: count}
	return nil
}

func newTestReviewService() (*DefaultReviewService, *fakeReviewRepo, *fakeUserStore) {
	reviews := &fakeReviewRepo{reviews: map[string]*models.Review{}}
	users := &fakeUserStore{ratings: map[string]ratingWrite{}}
	svc := &DefaultReviewService{
		Repo: reviews,
		Rides: &fakeRideRepo{rides: map[string]*models.Ride{
			"ride1": {ID: "ride1", DriverID: "driver1", Depart: "Campus", Destination: "Gare",
				DepartureAt: time.Now().Add(-2 * time.Hour), Status: models.RideStatusArchived},
		}},
		Bookings: &fakeBookingRepo{bookings: []models.Booking{
			{ID: "b1", RideID: "ride1", PassengerID: "passenger1", TripStatus: models.TripCompleted},
			{ID: "b2", RideID: "ride1", PassengerID: "passenger2", TripStatus: models.TripUpcoming},
		}},
		Users: users,
	}
	return svc, reviews, users
}

func TestSubmitClampsRatingAndRefreshesAggregate(t *testing.T) {
	svc, _, users := newTestReviewService()

	r, err := svc.Submit(context.Background(), "passenger1", SubmitRequest{
		RideID: "ride1",
		Rating: 7.2,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Rating != 5 {
		t.Errorf("Rating = %v, want clamped to 5", r.Rating)
	}
	got := users.ratings["driver1"]
	if got.avg != 5 || got.count != 1 {
		t.Errorf("driver aggregate = %+v, want avg 5 count 1", got)
	}
}

func TestSubmitAgainUpdatesInPlace(t *testing.T) {
	svc, reviews, users := newTestReviewService()
	ctx := context.Background()

	first, err := svc.Submit(ctx, "passenger1", SubmitRequest{RideID: "ride1", Rating: 4, Comment: "Bien"})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(ctx, "passenger1", SubmitRequest{RideID: "ride1", Rating: 2, Comment: "Retard"})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("resubmission created a new review: %s vs %s", first.ID, second.ID)
	}
	if len(reviews.reviews) != 1 {
		t.Errorf("stored reviews = %d, want 1", len(reviews.reviews))
	}
	got := users.ratings["driver1"]
	if got.avg != 2 || got.count != 1 {
		t.Errorf("driver aggregate = %+v, want avg 2 count 1", got)
	}
}

func TestSubmitRequiresCompletedTrip(t *testing.T) {
	svc, _, _ := newTestReviewService()

	_, err := svc.Submit(context.Background(), "passenger2", SubmitRequest{RideID: "ride1", Rating: 5})
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST for an upcoming trip, got %v", err)
	}
}

func TestSubmitRejectsNonPassenger(t *testing.T) {
	svc, _, _ := newTestReviewService()

	_, err := svc.Submit(context.Background(), "stranger", SubmitRequest{RideID: "ride1", Rating: 5})
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN for a non-passenger, got %v", err)
	}
}

func TestRespondOnlyByReviewedDriver(t *testing.T) {
	svc, reviews, _ := newTestReviewService()
	ctx := context.Background()

	r, err := svc.Submit(ctx, "passenger1", SubmitRequest{RideID: "ride1", Rating: 3})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	err = svc.Respond(ctx, "otherdriver", r.ID, "Merci")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN for another driver, got %v", err)
	}

	if err := svc.Respond(ctx, "driver1", r.ID, "Merci pour votre retour"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	stored, _ := reviews.GetByID(r.ID)
	if stored.DriverResponse != "Merci pour votre retour" {
		t.Errorf("DriverResponse = %q, not stored", stored.DriverResponse)
	}
}

func TestMyReviewReturnsOwnSubmission(t *testing.T) {
	svc, _, _ := newTestReviewService()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "passenger1", SubmitRequest{RideID: "ride1", Rating: 4, Comment: "Très bien"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	mine, err := svc.MyReview("ride1", "passenger1")
	if err != nil {
		t.Fatalf("MyReview: %v", err)
	}
	if mine.ID != submitted.ID || mine.Comment != "Très bien" {
		t.Errorf("MyReview = %+v, want the submitted review", mine)
	}

	_, err = svc.MyReview("ride1", "passenger2")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeNotFound {
		t.Errorf("expected NOT_FOUND for a passenger without a review, got %v", err)
	}
}
