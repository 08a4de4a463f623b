package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
)

// Collection names used by the scheduling backend
const (
	PatientsCollection     = "patients"
	AppointmentsCollection = "appointments"
	CarsCollection         = "cars"
)

// Mongo represents the document store connection
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
	config *config.MongoConfig
	logger *logger.Logger
}

// NewConnection creates a new document store connection and verifies it
func NewConnection(cfg *config.MongoConfig, log *logger.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m := &Mongo{
		Client: client,
		DB:     client.Database(cfg.Database),
		config: cfg,
		logger: log,
	}

	log.Infof("Connected to MongoDB database %s", cfg.Database)
	return m, nil
}

// Collection returns a handle to the named collection
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

// Close closes the document store connection
func (m *Mongo) Close(ctx context.Context) error {
	if m.Client != nil {
		return m.Client.Disconnect(ctx)
	}
	return nil
}

// Health checks the document store connection health
func (m *Mongo) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return m.Client.Ping(ctx, readpref.Primary())
}
