package ticket

import (
	"context"
	"time"

	"go-helpdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context, workspaceID string, status string) ([]Ticket, error)
	ListOpen(ctx context.Context, workspaceID string) ([]Ticket, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) error

	AddMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, ticketID string) ([]Message, error)
}

type RepositoryImpl struct {
	Tickets  *mongo.Collection
	Messages *mongo.Collection
}

func NewRepository(mongodb *database.MongodbDB) Repository {
	return &RepositoryImpl{
		Tickets:  mongodb.DB.Collection("tickets"),
		Messages: mongodb.DB.Collection("ticket_messages"),
	}
}

func (r *RepositoryImpl) Create(ctx context.Context, t *Ticket) error {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	_, err := r.Tickets.InsertOne(ctx, t)
	return err
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var t Ticket
	if err := r.Tickets.FindOne(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *RepositoryImpl) List(ctx context.Context, workspaceID string, status string) ([]Ticket, error) {
	wid, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"workspace_id": wid}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *RepositoryImpl) ListOpen(ctx context.Context, workspaceID string) ([]Ticket, error) {
	wid, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"workspace_id": wid,
		"status":       bson.M{"$nin": []TicketStatus{TicketStatusResolved, TicketStatusClosed}},
	}
	return r.find(ctx, filter)
}

func (r *RepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}

	count, err := r.Tickets.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RepositoryImpl) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	fields["updated_at"] = time.Now()
	_, err = r.Tickets.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	return err
}

func (r *RepositoryImpl) AddMessage(ctx context.Context, msg *Message) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	_, err := r.Messages.InsertOne(ctx, msg)
	return err
}

func (r *RepositoryImpl) ListMessages(ctx context.Context, ticketID string) ([]Message, error) {
	oid, err := primitive.ObjectIDFromHex(ticketID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.Messages.Find(ctx, bson.M{"ticket_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := make([]Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *RepositoryImpl) find(ctx context.Context, filter bson.M) ([]Ticket, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Tickets.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := make([]Ticket, 0)
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
