package repositories_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// startedCommand returns the first command named name sent by the client.
func startedCommand(mt *mtest.T, name string) bson.Raw {
	mt.Helper()
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == name {
			return evt.Command
		}
	}
	mt.Fatalf("no %s command was sent", name)
	return nil
}

func cartDoc(quantity int32) bson.D {
	return bson.D{
		{Key: "_id", Value: "c1"},
		{Key: "userId", Value: "u1"},
		{Key: "productId", Value: "p1"},
		{Key: "quantity", Value: quantity},
	}
}

// noMatch is a findAndModify reply that matched no document.
var noMatch = mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})

func TestMongoCartRepository_Decrement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("above one", func(mt *mtest.T) {
		repo := repositories.NewMongoCartRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: cartDoc(2)}))

		item, removed, err := repo.Decrement(ctx, "u1", "p1")
		require.NoError(mt, err)
		assert.False(mt, removed)
		assert.Equal(mt, 2, item.Quantity)

		cmd := startedCommand(mt, "findAndModify")
		_, err = cmd.LookupErr("query", "quantity", "$gt")
		assert.NoError(mt, err, "decrement must only match entries above one")
	})

	mt.Run("last unit removes", func(mt *mtest.T) {
		repo := repositories.NewMongoCartRepository(mt.DB)
		mt.AddMockResponses(noMatch, mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		item, removed, err := repo.Decrement(ctx, "u1", "p1")
		require.NoError(mt, err)
		assert.True(mt, removed)
		assert.Nil(mt, item)

		cmd := startedCommand(mt, "delete")
		_, err = cmd.LookupErr("deletes", "0", "q", "quantity", "$lte")
		assert.NoError(mt, err, "removal must only match entries at one")
	})

	mt.Run("increment between steps retries", func(mt *mtest.T) {
		repo := repositories.NewMongoCartRepository(mt.DB)
		mt.AddMockResponses(
			noMatch,
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "storefront.cart", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: cartDoc(1)}),
		)

		item, removed, err := repo.Decrement(ctx, "u1", "p1")
		require.NoError(mt, err)
		assert.False(mt, removed)
		assert.Equal(mt, 1, item.Quantity)
	})

	mt.Run("absent entry", func(mt *mtest.T) {
		repo := repositories.NewMongoCartRepository(mt.DB)
		mt.AddMockResponses(
			noMatch,
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "storefront.cart", mtest.FirstBatch),
		)

		_, _, err := repo.Decrement(ctx, "u1", "p1")
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}

func TestMongoCartRepository_AddDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unique index", func(mt *mtest.T) {
		repo := repositories.NewMongoCartRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: storefront.cart",
		}))

		err := repo.Add(context.Background(), &models.CartItem{UserID: "u1", ProductID: "p1", Quantity: 1})
		assert.ErrorIs(mt, err, repositories.ErrDuplicate)
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: storefront.users index: email_1",
		}))

		err := repo.Create(ctx, &models.User{FirstName: "Ann", Email: "ann@x.io", Password: "hash"})
		assert.ErrorIs(mt, err, repositories.ErrDuplicate)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch))

		_, err := repo.GetByEmail(ctx, "bob@x.io")
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}

func TestMongoProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list filters active", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.products", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "p1"},
				{Key: "name", Value: "Lamp"},
				{Key: "status", Value: "active"},
				{Key: "tags", Value: bson.A{"desk"}},
			},
		))

		products, err := repo.ListActive(ctx)
		require.NoError(mt, err)
		require.Len(mt, products, 1)
		assert.Equal(mt, "Lamp", products[0].Name)
		assert.Equal(mt, []string{"desk"}, products[0].Tags)

		status, err := startedCommand(mt, "find").LookupErr("filter", "status")
		require.NoError(mt, err)
		assert.Equal(mt, string(models.ProductActive), status.StringValue())
	})

	mt.Run("soft delete of missing product", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.SoftDelete(ctx, "p1", time.Now())
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}
