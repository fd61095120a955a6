package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"campusride/models"
	"campusride/utils"
)

type fakeMessageRepo struct {
	convs    map[string]*models.Conversation
	messages []models.Message
	readBy   map[string]string // conversation -> uid that marked read
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{convs: map[string]*models.Conversation{}, readBy: map[string]string{}}
}

func (f *fakeMessageRepo) UpsertConversation(c *models.Conversation) error {
	if existing, ok := f.convs[c.ID]; ok {
		existing.LastMessage = c.LastMessage
		existing.LastSentAt = c.LastSentAt
		return nil
	}
	stored := *c
	f.convs[c.ID] = &stored
	return nil
}

func (f *fakeMessageRepo) GetConversation(id string) (*models.Conversation, error) {
	return f.convs[id], nil
}

func (f *fakeMessageRepo) ListConversations(uid string) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.convs {
		for _, pid := range c.Participants {
			if pid == uid {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) InsertMessage(m *models.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageRepo) ListMessages(conversationID string, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkConversationRead(conversationID, uid string) error {
	f.readBy[conversationID] = uid
	return nil
}

func (f *fakeMessageRepo) DeleteByUID(uid string) error { return nil }

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

func newTestMessagingService() (*DefaultMessagingService, *fakeMessageRepo) {
	repo := newFakeMessageRepo()
	svc := &DefaultMessagingService{
		Repo: repo,
		Rides: &fakeRideRepo{rides: map[string]*models.Ride{
			"ride1": {ID: "ride1", DriverID: "driver1", Depart: "Campus", Destination: "Gare",
				DepartureAt: time.Now().Add(time.Hour), Seats: 3,
				Passengers: []string{"passenger1", "passenger2"},
				Status:     models.RideStatusPublished},
		}},
	}
	return svc, repo
}

func TestSendBetweenDriverAndPassenger(t *testing.T) {
	svc, repo := newTestMessagingService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "passenger1", "ride1", "driver1", "Bonjour, je serai 5 min en retard")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.SenderID != "passenger1" {
		t.Errorf("SenderID = %q", msg.SenderID)
	}

	// Reply lands in the same conversation.
	reply, err := svc.Send(ctx, "driver1", "ride1", "passenger1", "Pas de souci")
	if err != nil {
		t.Fatalf("reply Send: %v", err)
	}
	if reply.ConversationID != msg.ConversationID {
		t.Errorf("reply opened a new conversation: %s vs %s", reply.ConversationID, msg.ConversationID)
	}
	if len(repo.convs) != 1 {
		t.Errorf("conversations = %d, want 1", len(repo.convs))
	}
	conv := repo.convs[msg.ConversationID]
	if conv.LastMessage != "Pas de souci" {
		t.Errorf("LastMessage = %q, want the latest body", conv.LastMessage)
	}
}

func TestSendBetweenTwoPassengersForbidden(t *testing.T) {
	svc, _ := newTestMessagingService()

	_, err := svc.Send(context.Background(), "passenger1", "ride1", "passenger2", "Salut")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN for passenger-to-passenger chat, got %v", err)
	}
}

func TestSendToStrangerForbidden(t *testing.T) {
	svc, _ := newTestMessagingService()

	_, err := svc.Send(context.Background(), "driver1", "ride1", "stranger", "Bonjour")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN for a recipient outside the ride, got %v", err)
	}
}

func TestSendValidatesBody(t *testing.T) {
	svc, _ := newTestMessagingService()
	ctx := context.Background()

	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
		{"too long", strings.Repeat("a", maxMessageLen+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, "passenger1", "ride1", "driver1", tc.body)
			se, ok := err.(*utils.ServiceError)
			if !ok || se.Code != utils.CodeInvalidRequest {
				t.Errorf("expected INVALID_REQUEST, got %v", err)
			}
		})
	}
}

func TestListMessagesRequiresParticipant(t *testing.T) {
	svc, _ := newTestMessagingService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "passenger1", "ride1", "driver1", "Bonjour")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := svc.ListMessages("driver1", msg.ConversationID, 50); err != nil {
		t.Fatalf("ListMessages as participant: %v", err)
	}

	_, err = svc.ListMessages("passenger2", msg.ConversationID, 50)
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeForbidden {
		t.Errorf("expected FORBIDDEN for a non-participant, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	svc, repo := newTestMessagingService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "passenger1", "ride1", "driver1", "Bonjour")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := svc.MarkRead("driver1", msg.ConversationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if repo.readBy[msg.ConversationID] != "driver1" {
		t.Error("read marker not recorded")
	}
}
