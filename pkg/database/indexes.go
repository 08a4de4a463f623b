package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the scheduling backend relies on.
// Creation is idempotent; existing indexes are left untouched.
//
// The compound (car_id, scheduled_date, time_slot) index backs the conflict
// check but is deliberately NOT unique: cancelled and no-show appointments
// legitimately share a slot, and partial indexes cannot express the
// status-not-in filter the invariant needs.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	patientIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "personal_info.cpf", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("UniquePatientCPF"),
		},
		{Keys: bson.D{{Key: "personal_info.name", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "address.neighborhood", Value: 1}}},
		{Keys: bson.D{{Key: "analytics.risk_score", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	appointmentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		{Keys: bson.D{{Key: "car_id", Value: 1}}},
		{Keys: bson.D{{Key: "scheduled_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "confirmation.status", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "car_id", Value: 1},
				{Key: "scheduled_date", Value: 1},
				{Key: "time_slot", Value: 1},
			},
			Options: options.Index().SetName("CarDaySlot"),
		},
	}

	carIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("UniqueCarName"),
		},
		{Keys: bson.D{{Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "zones", Value: 1}}},
		{Keys: bson.D{{Key: "driver.name", Value: 1}}},
	}

	for collection, indexes := range map[string][]mongo.IndexModel{
		PatientsCollection:     patientIndexes,
		AppointmentsCollection: appointmentIndexes,
		CarsCollection:         carIndexes,
	} {
		if _, err := m.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		m.logger.Infof("Ensured indexes on collection %s", collection)
	}

	return nil
}
