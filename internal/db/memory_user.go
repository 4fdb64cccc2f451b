package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserCollection keeps staff accounts in process for the non-mongo backends.
type MemoryUserCollection struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

// NewMemoryUserCollection returns an empty collection.
func NewMemoryUserCollection() *MemoryUserCollection {
	return &MemoryUserCollection{users: make(map[primitive.ObjectID]models.User)}
}

// InsertUser stores user as an active account, assigning an id when missing.
func (c *MemoryUserCollection) InsertUser(_ context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	c.users[user.ID] = user
	return nil
}

// FindUserByID finds a user by the hex form of their id.
func (c *MemoryUserCollection) FindUserByID(_ context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	user, ok := c.users[objectID]
	if !ok {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	return &user, nil
}

// FindUserByUsername finds a user by username.
func (c *MemoryUserCollection) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	return c.find(func(u models.User) bool { return u.Username == username })
}

// FindUserByEmail finds a user by email.
func (c *MemoryUserCollection) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return c.find(func(u models.User) bool { return u.Email == email })
}

// UpdateUser overwrites the profile fields. Username, creation and last login are kept.
func (c *MemoryUserCollection) UpdateUser(_ context.Context, id string, user models.User) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.users[objectID]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	user.ID = objectID
	user.Username = existing.Username
	user.CreatedAt = existing.CreatedAt
	user.LastLogin = existing.LastLogin
	user.UpdatedAt = time.Now()
	c.users[objectID] = user
	return nil
}

// UpdateLastLogin stamps the user's last login with the current time.
func (c *MemoryUserCollection) UpdateLastLogin(_ context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.users[objectID]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	c.users[objectID] = user
	return nil
}

// CountUsers returns the number of stored accounts.
func (c *MemoryUserCollection) CountUsers(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.users)), nil
}

func (c *MemoryUserCollection) find(match func(models.User) bool) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ErrNotFound)
}
