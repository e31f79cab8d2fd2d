package activity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/engine"
)

type Repository interface {
	Insert(ctx context.Context, report engine.ExecutionReport) error
	List(ctx context.Context, filter Filter) ([]engine.ExecutionReport, error)
}

// Filter narrows the execution log: all fields optional.
type Filter struct {
	WorkspaceID string
	TicketID    string
	RuleID      string
	FiredOnly   bool
	FailedOnly  bool
	Limit       int64
}

type RepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRepository(mongodb *database.MongodbDB) Repository {
	return &RepositoryImpl{
		Collection: mongodb.DB.Collection("rule_activity"),
	}
}

func (r *RepositoryImpl) Insert(ctx context.Context, report engine.ExecutionReport) error {
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *RepositoryImpl) List(ctx context.Context, f Filter) ([]engine.ExecutionReport, error) {
	filter := bson.M{}
	if f.WorkspaceID != "" {
		filter["workspace_id"] = f.WorkspaceID
	}
	if f.TicketID != "" {
		filter["ticket_id"] = f.TicketID
	}
	if f.RuleID != "" {
		filter["rule_id"] = f.RuleID
	}
	if f.FiredOnly {
		filter["fired"] = true
	}
	if f.FailedOnly {
		filter["failed"] = true
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.M{"executed_at": -1}).SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := make([]engine.ExecutionReport, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
