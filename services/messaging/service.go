package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	messageRepo "campusride/database/repository/message"
	rideRepo "campusride/database/repository/ride"
	"campusride/models"
	notification "campusride/services/notification"
	"campusride/services/realtime"
	"campusride/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLen = 2000

// MessagingService handles driver-passenger chat around a ride.
type MessagingService interface {
	// Send delivers a message from sender to the other participant of a ride
	// thread, creating the conversation on first contact. Only the driver and
	// the ride's passengers may message each other.
	Send(ctx context.Context, senderID, rideID, recipientID, body string) (*models.Message, error)
	ListConversations(uid string) ([]models.Conversation, error)
	// ListMessages returns a conversation's messages, oldest first. uid must
	// be a participant.
	ListMessages(uid, conversationID string, limit int64) ([]models.Message, error)
	// MarkRead flags the messages the other side sent as read.
	MarkRead(uid, conversationID string) error
}

// DefaultMessagingService implements MessagingService.
type DefaultMessagingService struct {
	Repo     messageRepo.MessageRepository
	Rides    rideRepo.RideRepository
	Hub      *realtime.Hub
	Notifier notification.NotificationService
}

func (s *DefaultMessagingService) Send(ctx context.Context, senderID, rideID, recipientID, body string) (*models.Message, error) {
	logger := utils.GetLogger()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "message body is empty")
	}
	if len(body) > maxMessageLen {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "message body is too long")
	}
	if senderID == recipientID {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "cannot message yourself")
	}

	ride, err := s.Rides.GetByID(rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	if !s.mayChat(ride, senderID, recipientID) {
		return nil, utils.NewServiceError(utils.CodeForbidden, "messaging is limited to the driver and the ride's passengers")
	}

	now := time.Now()
	convID := models.ConversationID(rideID, senderID, recipientID)
	conv := &models.Conversation{
		ID:           convID,
		RideID:       rideID,
		Participants: []string{senderID, recipientID},
		LastMessage:  body,
		LastSentAt:   now,
		CreatedAt:    now,
	}
	if err := s.Repo.UpsertConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to upsert conversation: %w", err)
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         now,
	}
	if err := s.Repo.InsertMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if s.Hub != nil {
		s.Hub.SendToUser(recipientID, realtime.Event{Type: realtime.EventNewMessage, Payload: msg})
	}
	if s.Notifier != nil {
		preview := body
		if runes := []rune(preview); len(runes) > 80 {
			preview = string(runes[:80]) + "…"
		}
		if err := s.Notifier.Notify(ctx, recipientID, models.NotifNewMessage,
			"Nouveau message", preview,
			map[string]string{"conversationId": convID, "rideId": rideID}); err != nil {
			logger.Warn("failed to notify recipient of message",
				zap.String("conversationId", convID), zap.Error(err))
		}
	}
	return msg, nil
}

func (s *DefaultMessagingService) ListConversations(uid string) ([]models.Conversation, error) {
	return s.Repo.ListConversations(uid)
}

func (s *DefaultMessagingService) ListMessages(uid, conversationID string, limit int64) ([]models.Message, error) {
	if err := s.requireParticipant(uid, conversationID); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(conversationID, limit)
}

func (s *DefaultMessagingService) MarkRead(uid, conversationID string) error {
	if err := s.requireParticipant(uid, conversationID); err != nil {
		return err
	}
	return s.Repo.MarkConversationRead(conversationID, uid)
}

// mayChat allows the pair when one side is the driver and the other holds a
// seat on the ride.
func (s *DefaultMessagingService) mayChat(ride *models.Ride, a, b string) bool {
	isPassenger := func(uid string) bool {
		for _, pid := range ride.Passengers {
			if pid == uid {
				return true
			}
		}
		return false
	}
	if a == ride.DriverID {
		return isPassenger(b)
	}
	if b == ride.DriverID {
		return isPassenger(a)
	}
	return false
}

func (s *DefaultMessagingService) requireParticipant(uid, conversationID string) error {
	conv, err := s.Repo.GetConversation(conversationID)
	if err != nil {
		return fmt.Errorf("failed to fetch conversation: %w", err)
	}
	if conv == nil {
		return utils.NewServiceError(utils.CodeNotFound, "conversation not found")
	}
	for _, pid := range conv.Participants {
		if pid == uid {
			return nil
		}
	}
	return utils.NewServiceError(utils.CodeForbidden, "conversation belongs to other users")
}
