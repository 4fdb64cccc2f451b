package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoKVCollection stores key/value pairs as {_id: key, value: value} documents.
type MongoKVCollection struct {
	Collection *mongo.Collection
}

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Get returns the value stored under key.
func (c *MongoKVCollection) Get(ctx context.Context, key string) (string, bool, error) {
	if c.Collection == nil {
		return "", false, ErrNilCollection
	}
	var doc kvDocument
	err := c.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

// Set upserts the value stored under key.
func (c *MongoKVCollection) Set(ctx context.Context, key, value string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	_, err := c.Collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		kvDocument{Key: key, Value: value, UpdatedAt: time.Now()},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Remove deletes key. Removing a missing key is not an error.
func (c *MongoKVCollection) Remove(ctx context.Context, key string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	_, err := c.Collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// MongoAppointmentCollection wraps a MongoDB collection for appointment operations.
type MongoAppointmentCollection struct {
	Collection *mongo.Collection
}

// InsertAppointment inserts an appointment record into the collection.
func (c *MongoAppointmentCollection) InsertAppointment(ctx context.Context, appointment models.Appointment) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	now := time.Now()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, appointment)
	return err
}

// FindAppointments returns every appointment in the collection.
func (c *MongoAppointmentCollection) FindAppointments(ctx context.Context) ([]models.Appointment, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAppointmentByID finds an appointment by its ID.
func (c *MongoAppointmentCollection) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	var appointment models.Appointment
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &appointment, nil
}

// UpdateAppointmentStatus sets the status and appends the history entry, but
// only while the stored status is still from. ErrConflict is returned when
// another writer changed the status first.
func (c *MongoAppointmentCollection) UpdateAppointmentStatus(ctx context.Context, id string, from models.Status, entry models.StatusHistoryEntry) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{
		"$set":  bson.M{"status": entry.Status, "updated_at": entry.Timestamp},
		"$push": bson.M{"status_history": entry},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}
	n, err := c.Collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("appointment %s is no longer %s: %w", id, from, ErrConflict)
}

// UpdateWorkNotes replaces the work notes of an appointment.
func (c *MongoAppointmentCollection) UpdateWorkNotes(ctx context.Context, id string, notes string) error {
	return c.update(ctx, id, bson.M{
		"$set": bson.M{"work_notes": notes, "updated_at": time.Now()},
	})
}

// UpdateCosts replaces the cost breakdown and the derived additional-costs total.
func (c *MongoAppointmentCollection) UpdateCosts(ctx context.Context, id string, items []models.CostItem) error {
	total := models.SumCostItems(items)
	return c.update(ctx, id, bson.M{
		"$set": bson.M{
			"cost_breakdown":   items,
			"additional_costs": total,
			"updated_at":       time.Now(),
		},
	})
}

// UpdateTrackingCode replaces the customer-facing tracking code of an appointment.
func (c *MongoAppointmentCollection) UpdateTrackingCode(ctx context.Context, id string, code string) error {
	return c.update(ctx, id, bson.M{
		"$set": bson.M{"tracking_code": code, "updated_at": time.Now()},
	})
}

func (c *MongoAppointmentCollection) update(ctx context.Context, id string, update bson.M) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return nil
}
