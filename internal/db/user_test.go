package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestUserCollection(t *testing.T) (*MongoUserCollection, models.User) {
	t.Helper()
	collection := testDatabase(t).Collection("users")
	collection.Drop(context.Background())

	user := models.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleTechnician,
		FirstName:    "Test",
		LastName:     "User",
	}
	return &MongoUserCollection{Collection: collection}, user
}

func TestMongoUserCollection_InsertUser(t *testing.T) {
	userCollection, user := newTestUserCollection(t)

	err := userCollection.InsertUser(context.Background(), user)
	assert.NoError(t, err)

	count, err := userCollection.CountUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Verify user was inserted
	var foundUser models.User
	err = userCollection.Collection.FindOne(context.Background(), bson.M{"username": "testuser"}).Decode(&foundUser)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, foundUser.Username)
	assert.Equal(t, user.Role, foundUser.Role)
	assert.True(t, foundUser.IsActive)
	assert.NotZero(t, foundUser.CreatedAt)
}

func TestMongoUserCollection_Find(t *testing.T) {
	userCollection, user := newTestUserCollection(t)
	ctx := context.Background()
	require.NoError(t, userCollection.InsertUser(ctx, user))

	byName, err := userCollection.FindUserByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, user.Email, byName.Email)

	byEmail, err := userCollection.FindUserByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Username, byEmail.Username)

	byID, err := userCollection.FindUserByID(ctx, byName.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	_, err = userCollection.FindUserByUsername(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = userCollection.FindUserByID(ctx, "invalid-id")
	assert.Error(t, err)
}

func TestMongoUserCollection_UpdateLastLogin(t *testing.T) {
	userCollection, user := newTestUserCollection(t)
	ctx := context.Background()
	require.NoError(t, userCollection.InsertUser(ctx, user))

	inserted, err := userCollection.FindUserByUsername(ctx, "testuser")
	require.NoError(t, err)

	err = userCollection.UpdateLastLogin(ctx, inserted.ID.Hex())
	assert.NoError(t, err)

	updated, err := userCollection.FindUserByID(ctx, inserted.ID.Hex())
	assert.NoError(t, err)
	assert.NotNil(t, updated.LastLogin)
	assert.False(t, updated.LastLogin.Before(inserted.CreatedAt))
}

func TestMongoUserCollection_NilCollection(t *testing.T) {
	coll := &MongoUserCollection{}
	_, err := coll.FindUserByUsername(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNilCollection)
}
