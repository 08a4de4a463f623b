package analytics

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/database"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/monitoring"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// Repository implements the AnalyticsRepository interface with reads across
// the patients, appointments and cars collections
type Repository struct {
	patients     *mongo.Collection
	appointments *mongo.Collection
	cars         *mongo.Collection
	logger       *logger.Logger
}

// NewRepository creates a new analytics repository
func NewRepository(db *database.Mongo, log *logger.Logger) interfaces.AnalyticsRepository {
	return &Repository{
		patients:     db.Collection(database.PatientsCollection),
		appointments: db.Collection(database.AppointmentsCollection),
		cars:         db.Collection(database.CarsCollection),
		logger:       log,
	}
}

// CountAppointmentsBetween counts appointments scheduled within [from, to)
func (r *Repository) CountAppointmentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	defer monitoring.TimeMongoOperation("count", database.AppointmentsCollection)()

	count, err := r.appointments.CountDocuments(ctx, bson.M{
		"scheduled_date": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, r.storeErr("count appointments", err)
	}
	return count, nil
}

// ListAppointmentsSince retrieves appointments scheduled on or after the cutoff
func (r *Repository) ListAppointmentsSince(ctx context.Context, since time.Time) ([]*types.Appointment, error) {
	return r.listAppointments(ctx, bson.M{"scheduled_date": bson.M{"$gte": since}})
}

// ListAppointmentsBetween retrieves appointments scheduled within [from, to)
func (r *Repository) ListAppointmentsBetween(ctx context.Context, from, to time.Time) ([]*types.Appointment, error) {
	return r.listAppointments(ctx, bson.M{"scheduled_date": bson.M{"$gte": from, "$lt": to}})
}

func (r *Repository) listAppointments(ctx context.Context, filter bson.M) ([]*types.Appointment, error) {
	defer monitoring.TimeMongoOperation("find", database.AppointmentsCollection)()

	cursor, err := r.appointments.Find(ctx, filter)
	if err != nil {
		return nil, r.storeErr("list appointments", err)
	}
	defer cursor.Close(ctx)

	var appointments []*types.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, r.storeErr("decode appointments", err)
	}
	return appointments, nil
}

// CountActiveCars counts cars with the active flag set
func (r *Repository) CountActiveCars(ctx context.Context) (int64, error) {
	defer monitoring.TimeMongoOperation("count", database.CarsCollection)()

	count, err := r.cars.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return 0, r.storeErr("count cars", err)
	}
	return count, nil
}

// ListActiveCars retrieves all active cars
func (r *Repository) ListActiveCars(ctx context.Context) ([]*types.Car, error) {
	defer monitoring.TimeMongoOperation("find", database.CarsCollection)()

	cursor, err := r.cars.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, r.storeErr("list cars", err)
	}
	defer cursor.Close(ctx)

	var cars []*types.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, r.storeErr("decode cars", err)
	}
	return cars, nil
}

// CountPatientsByStatus counts patients in the given lifecycle status
func (r *Repository) CountPatientsByStatus(ctx context.Context, status types.PatientStatus) (int64, error) {
	defer monitoring.TimeMongoOperation("count", database.PatientsCollection)()

	count, err := r.patients.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, r.storeErr("count patients", err)
	}
	return count, nil
}

// CountPatientsCreatedSince counts patients registered on or after the cutoff
func (r *Repository) CountPatientsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	defer monitoring.TimeMongoOperation("count", database.PatientsCollection)()

	count, err := r.patients.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, r.storeErr("count patients", err)
	}
	return count, nil
}

// RiskDistribution groups active patients by risk score
func (r *Repository) RiskDistribution(ctx context.Context) (map[string]int, error) {
	defer monitoring.TimeMongoOperation("aggregate", database.PatientsCollection)()

	cursor, err := r.patients.Aggregate(ctx, riskDistributionPipeline())
	if err != nil {
		return nil, r.storeErr("aggregate risk distribution", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeErr("decode risk distribution", err)
	}

	distribution := make(map[string]int, len(rows))
	for _, row := range rows {
		distribution[row.ID] = row.Count
	}
	return distribution, nil
}

// TopNeighborhoods ranks active patients' neighborhoods by patient count.
// Empty neighborhoods are dropped.
func (r *Repository) TopNeighborhoods(ctx context.Context, limit int) ([]types.NeighborhoodCount, error) {
	defer monitoring.TimeMongoOperation("aggregate", database.PatientsCollection)()

	cursor, err := r.patients.Aggregate(ctx, topNeighborhoodsPipeline(limit))
	if err != nil {
		return nil, r.storeErr("aggregate neighborhoods", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeErr("decode neighborhoods", err)
	}

	ranking := make([]types.NeighborhoodCount, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		ranking = append(ranking, types.NeighborhoodCount{Neighborhood: row.ID, Count: row.Count})
	}
	return ranking, nil
}

// ConfirmationsByMethod groups confirmed appointments scheduled since the
// cutoff by confirmation method. Empty methods are dropped.
func (r *Repository) ConfirmationsByMethod(ctx context.Context, since time.Time) (map[string]int, error) {
	defer monitoring.TimeMongoOperation("aggregate", database.AppointmentsCollection)()

	cursor, err := r.appointments.Aggregate(ctx, confirmationsByMethodPipeline(since))
	if err != nil {
		return nil, r.storeErr("aggregate confirmations by method", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeErr("decode confirmations by method", err)
	}

	byMethod := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		byMethod[row.ID] = row.Count
	}
	return byMethod, nil
}

// ConfirmationsByHour groups confirmed appointments by the hour of day the
// confirmation was recorded, sorted ascending with zero-padded labels
func (r *Repository) ConfirmationsByHour(ctx context.Context, since time.Time) ([]types.HourCount, error) {
	defer monitoring.TimeMongoOperation("aggregate", database.AppointmentsCollection)()

	cursor, err := r.appointments.Aggregate(ctx, confirmationsByHourPipeline(since))
	if err != nil {
		return nil, r.storeErr("aggregate confirmations by hour", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    int `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeErr("decode confirmations by hour", err)
	}

	byHour := make([]types.HourCount, 0, len(rows))
	for _, row := range rows {
		byHour = append(byHour, types.HourCount{
			Hour:  fmt.Sprintf("%02d:00", row.ID),
			Count: row.Count,
		})
	}
	return byHour, nil
}

func (r *Repository) storeErr(op string, err error) error {
	r.logger.Errorf("Failed to %s: %v", op, err)
	return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to "+op, err)
}
