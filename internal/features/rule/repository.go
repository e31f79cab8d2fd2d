package rule

import (
	"context"
	"time"

	"go-helpdesk/internal/common/models"
	"go-helpdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	Create(ctx context.Context, rule *models.Rule) error
	GetByID(ctx context.Context, workspaceID, id string) (*models.Rule, error)
	List(ctx context.Context, workspaceID string, enabledOnly bool) ([]models.Rule, error)
	Update(ctx context.Context, rule *models.Rule) error
	Toggle(ctx context.Context, workspaceID, id string, enabled bool) error
	Delete(ctx context.Context, workspaceID, id string) error

	// Engine and scheduler read sides.
	ListEnabledByTrigger(ctx context.Context, workspaceID, trigger string) ([]models.Rule, error)
	ListScheduled(ctx context.Context) ([]models.Rule, error)
}

type RepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRepository(mongodb *database.MongodbDB) Repository {
	return &RepositoryImpl{
		Collection: mongodb.DB.Collection("automation_rules"),
	}
}

func scopedFilter(workspaceID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	wid, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "workspace_id": wid}, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, rule *models.Rule) error {
	rule.ID = primitive.NewObjectID()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, rule)
	return err
}

func (r *RepositoryImpl) GetByID(ctx context.Context, workspaceID, id string) (*models.Rule, error) {
	filter, err := scopedFilter(workspaceID, id)
	if err != nil {
		return nil, err
	}
	var rule models.Rule
	err = r.Collection.FindOne(ctx, filter).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *RepositoryImpl) List(ctx context.Context, workspaceID string, enabledOnly bool) ([]models.Rule, error) {
	wid, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"workspace_id": wid}
	if enabledOnly {
		filter["is_enabled"] = true
	}
	return r.find(ctx, filter)
}

func (r *RepositoryImpl) Update(ctx context.Context, rule *models.Rule) error {
	rule.UpdatedAt = time.Now()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": rule.ID, "workspace_id": rule.WorkspaceID},
		bson.M{"$set": rule})
	if err != nil {
		return err
	}
	// the filter is workspace-scoped, so a miss covers both unknown IDs and
	// rules owned by another workspace
	if res.MatchedCount == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *RepositoryImpl) Toggle(ctx context.Context, workspaceID, id string, enabled bool) error {
	filter, err := scopedFilter(workspaceID, id)
	if err != nil {
		return err
	}
	res, err := r.Collection.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"is_enabled": enabled, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, workspaceID, id string) error {
	filter, err := scopedFilter(workspaceID, id)
	if err != nil {
		return err
	}
	res, err := r.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListEnabledByTrigger(ctx context.Context, workspaceID, trigger string) ([]models.Rule, error) {
	wid, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"workspace_id": wid, "trigger": trigger, "is_enabled": true})
}

func (r *RepositoryImpl) ListScheduled(ctx context.Context) ([]models.Rule, error) {
	return r.find(ctx, bson.M{"trigger": models.TriggerTicketScheduled, "is_enabled": true})
}

func (r *RepositoryImpl) find(ctx context.Context, filter bson.M) ([]models.Rule, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []models.Rule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
