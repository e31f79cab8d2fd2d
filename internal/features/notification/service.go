package notification

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go-helpdesk/internal/database"
)

// Service records side-channel notifications. Delivery here means writing the
// notification to the inbox collection; an outbound email or Teams gateway
// would drain that collection.
type Service interface {
	Notify(ctx context.Context, ticketID, channel, recipient, message string) error
	ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]Notification, error)
	MarkAsRead(ctx context.Context, id string) error
}

type ServiceImpl struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

func NewService(mongodb *database.MongodbDB, logger *zap.Logger) Service {
	return &ServiceImpl{
		Collection: mongodb.DB.Collection("notifications"),
		Logger:     logger,
	}
}

func (s *ServiceImpl) Notify(ctx context.Context, ticketID, channel, recipient, message string) error {
	if recipient == "" {
		return fmt.Errorf("notification recipient is required")
	}
	if message == "" {
		message = fmt.Sprintf("Automation rule update for ticket %s", ticketID)
	}

	n := Notification{
		TicketID:  ticketID,
		Channel:   channel,
		Recipient: recipient,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if _, err := s.Collection.InsertOne(ctx, n); err != nil {
		return err
	}

	s.Logger.Info("notification queued",
		zap.String("ticket_id", ticketID),
		zap.String("channel", channel),
		zap.String("recipient", recipient),
	)
	return nil
}

func (s *ServiceImpl) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]Notification, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["is_read"] = false
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *ServiceImpl) MarkAsRead(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"is_read": true, "read_at": now},
	})
	return err
}
