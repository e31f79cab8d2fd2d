package rule

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"go-helpdesk/internal/common/models"
)

func writeResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func TestUpdateMissingRuleReturnsNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no matching document", func(mt *mtest.T) {
		repo := &RepositoryImpl{Collection: mt.Coll}
		mt.AddMockResponses(writeResponse(0))

		rule := &models.Rule{ID: primitive.NewObjectID(), WorkspaceID: primitive.NewObjectID()}
		if err := repo.Update(context.Background(), rule); !errors.Is(err, ErrRuleNotFound) {
			mt.Fatalf("Update() error = %v, want ErrRuleNotFound", err)
		}
	})

	mt.Run("matching document", func(mt *mtest.T) {
		repo := &RepositoryImpl{Collection: mt.Coll}
		mt.AddMockResponses(writeResponse(1))

		rule := &models.Rule{ID: primitive.NewObjectID(), WorkspaceID: primitive.NewObjectID()}
		if err := repo.Update(context.Background(), rule); err != nil {
			mt.Fatalf("Update() error = %v", err)
		}
	})
}

func TestToggleMissingRuleReturnsNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no matching document", func(mt *mtest.T) {
		repo := &RepositoryImpl{Collection: mt.Coll}
		mt.AddMockResponses(writeResponse(0))

		err := repo.Toggle(context.Background(),
			primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), true)
		if !errors.Is(err, ErrRuleNotFound) {
			mt.Fatalf("Toggle() error = %v, want ErrRuleNotFound", err)
		}
	})
}

func TestDeleteMissingRuleReturnsNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no matching document", func(mt *mtest.T) {
		repo := &RepositoryImpl{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(),
			primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		if !errors.Is(err, ErrRuleNotFound) {
			mt.Fatalf("Delete() error = %v, want ErrRuleNotFound", err)
		}
	})
}
