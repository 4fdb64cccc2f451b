package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/analytics"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/config"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/events"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

const demoRecordCount = 150

// app holds the storage chosen by STORAGE_BACKEND and everything built on it.
type app struct {
	cfg *config.Config
	log *log.Logger

	store        db.KeyValueStore
	users        db.UserCollection
	repo         appointments.Repository
	appointments db.AppointmentCollection // nil unless mongo
	registry     *tracking.Registry

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger}
	if err := a.openStorage(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.registry = tracking.NewRegistry(ctx, a.store, tracking.WithLogger(logger))
	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	entry := a.log.WithField("backend", a.cfg.StorageBackend)

	switch a.cfg.StorageBackend {
	case config.BackendMongo:
		client, err := db.ConnectMongo(ctx, a.cfg.MongoURI)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		database := client.Database(a.cfg.MongoDB)
		a.store = &db.MongoKVCollection{Collection: database.Collection("kv_store")}
		a.users = &db.MongoUserCollection{Collection: database.Collection("users")}
		coll := &db.MongoAppointmentCollection{Collection: database.Collection("appointments")}
		a.appointments = coll
		a.repo = appointments.NewCollectionRepository(coll)
		entry.WithField("database", a.cfg.MongoDB).Info("Connected to MongoDB")
		return nil

	case config.BackendRedis:
		rs := db.NewRedisStore(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, "shop-admin:")
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("connect to redis %s: %w", a.cfg.RedisAddr, err)
		}
		a.store = rs
		entry.WithField("addr", a.cfg.RedisAddr).Info("Connected to Redis")

	case config.BackendSQLite:
		ss, err := db.NewSQLiteStore(a.cfg.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, ss.Close)
		a.store = ss
		entry.WithField("path", a.cfg.SQLitePath).Info("Opened SQLite store")

	default:
		a.store = db.NewMemoryStore()
		entry.Warn("Using in-memory storage, data is lost on exit")
	}

	// Appointments and staff accounts live in MongoDB only; other backends
	// serve the demo appointments from memory.
	a.users = db.NewMemoryUserCollection()
	a.repo = appointments.NewMemoryRepository(appointments.MockAppointments())
	return nil
}

// publisher returns an MQTT publisher when a broker is configured, else a log publisher.
func (a *app) publisher() events.Publisher {
	if a.cfg.MQTTBroker == "" {
		return events.LogPublisher{Logger: a.log}
	}
	pub, client, err := events.NewMQTTPublisher(events.MQTTConfig{
		Broker:      a.cfg.MQTTBroker,
		ClientID:    a.cfg.MQTTClientID,
		TopicPrefix: a.cfg.MQTTTopicPrefix,
	})
	if err != nil {
		a.log.WithError(err).Warn("MQTT unavailable, status updates will only be logged")
		return events.LogPublisher{Logger: a.log}
	}
	a.closers = append(a.closers, func() error {
		client.Disconnect(250)
		return nil
	})
	a.log.WithField("broker", a.cfg.MQTTBroker).Info("Publishing status updates over MQTT")
	return pub
}

// demoRecords generates the analytics sample shown on the dashboard.
func demoRecords(now time.Time) []models.ServiceRecord {
	seed := uint64(now.UnixNano())
	return analytics.GenerateRecords(demoRecordCount, rand.New(rand.NewPCG(seed, seed>>1)), now)
}

// seed registers a tracking record for every appointment without one.
func (a *app) seed(ctx context.Context) (int, error) {
	if a.appointments != nil {
		existing, err := a.appointments.FindAppointments(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) == 0 {
			for _, appt := range appointments.MockAppointments() {
				if err := a.appointments.InsertAppointment(ctx, appt); err != nil {
					return 0, fmt.Errorf("insert appointment %s: %w", appt.ID, err)
				}
			}
			a.log.WithField("count", len(appointments.MockAppointments())).Info("Inserted demo appointments")
		}
	}

	list, err := a.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	tracked := make(map[string]bool)
	for _, rec := range a.registry.Search("") {
		tracked[rec.AppointmentID] = true
	}
	registered := 0
	for _, appt := range list {
		if tracked[appt.ID] {
			continue
		}
		code, err := a.track(ctx, appt)
		if err != nil {
			return registered, err
		}
		a.log.WithFields(log.Fields{"appointment_id": appt.ID, "code": code}).Info("Registered tracking code")
		registered++
	}
	return registered, nil
}

// track registers appt under the code it already carries. When that code is
// malformed or taken, a fresh code is issued and written back to the appointment
// so status changes keep reaching the customer's record.
func (a *app) track(ctx context.Context, appt models.Appointment) (string, error) {
	data := models.TrackingRegistration{
		AppointmentID: appt.ID,
		CustomerID:    appt.CustomerEmail,
		ServiceType:   appt.ServiceName,
		VehicleInfo:   appt.VehicleInfo.String(),
		Status:        appt.Status,
	}
	err := a.registry.RegisterWithCode(ctx, appt.TrackingCode, data)
	if err == nil {
		return appt.TrackingCode, nil
	}

	code := a.registry.Register(ctx, data)
	a.log.WithError(err).WithFields(log.Fields{
		"appointment_id": appt.ID,
		"previous_code":  appt.TrackingCode,
		"code":           code,
	}).Warn("Issued a new tracking code")
	if err := a.repo.AssignTrackingCode(ctx, appt.ID, code); err != nil {
		return "", fmt.Errorf("assign tracking code to appointment %s: %w", appt.ID, err)
	}
	return code, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("Failed to close resource")
		}
	}
	a.closers = nil
}
