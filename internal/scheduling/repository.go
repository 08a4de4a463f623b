package scheduling

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/database"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/interfaces"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/monitoring"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// Repository implements the AppointmentRepository interface over the
// appointments collection
type Repository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewRepository creates a new appointment repository
func NewRepository(db *database.Mongo, log *logger.Logger) interfaces.AppointmentRepository {
	return &Repository{
		collection: db.Collection(database.AppointmentsCollection),
		logger:     log,
	}
}

// Create inserts a new appointment and assigns its id
func (r *Repository) Create(ctx context.Context, apt *types.Appointment) error {
	defer monitoring.TimeMongoOperation("insert", database.AppointmentsCollection)()

	result, err := r.collection.InsertOne(ctx, apt)
	if err != nil {
		r.logger.Errorf("Failed to create appointment: %v", err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to create appointment", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		apt.ID = oid
	}

	r.logger.Infof("Created appointment %s for patient %s on car %s", apt.ID.Hex(), apt.PatientID, apt.CarID)
	return nil
}

// GetByID retrieves an appointment by id
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	defer monitoring.TimeMongoOperation("find_one", database.AppointmentsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
	}

	var apt types.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&apt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
		}
		r.logger.Errorf("Failed to get appointment %s: %v", id, err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to get appointment", err)
	}

	return &apt, nil
}

// Update applies a field-merge update built from the patch
func (r *Repository) Update(ctx context.Context, id string, patch *types.AppointmentPatch) error {
	defer monitoring.TimeMongoOperation("update", database.AppointmentsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.ScheduledDate != nil {
		set["scheduled_date"] = *patch.ScheduledDate
	}
	if patch.TimeSlot != nil {
		set["time_slot"] = *patch.TimeSlot
	}
	if patch.CarID != nil {
		set["car_id"] = *patch.CarID
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Exams != nil {
		set["exams"] = *patch.Exams
	}
	if patch.SpecialInstructions != nil {
		set["special_instructions"] = *patch.SpecialInstructions
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.ActualStartTime != nil {
		set["actual_start_time"] = *patch.ActualStartTime
	}
	if patch.ActualEndTime != nil {
		set["actual_end_time"] = *patch.ActualEndTime
	}
	if patch.CollectedBy != nil {
		set["collected_by"] = *patch.CollectedBy
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.logger.Errorf("Failed to update appointment %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to update appointment", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
	}

	r.logger.Infof("Updated appointment %s", id)
	return nil
}

// SetConfirmation replaces the confirmation sub-record
func (r *Repository) SetConfirmation(ctx context.Context, id string, conf types.Confirmation) error {
	defer monitoring.TimeMongoOperation("update", database.AppointmentsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"confirmation": conf,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		r.logger.Errorf("Failed to set confirmation on appointment %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to confirm appointment", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
	}

	return nil
}

// List retrieves appointments matching the AND-combined filters
func (r *Repository) List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error) {
	defer monitoring.TimeMongoOperation("find", database.AppointmentsCollection)()

	filter := bson.M{}

	if filters.DateFrom != nil || filters.DateTo != nil {
		dateFilter := bson.M{}
		if filters.DateFrom != nil {
			start, _ := types.DayBounds(*filters.DateFrom)
			dateFilter["$gte"] = start
		}
		if filters.DateTo != nil {
			_, end := types.DayBounds(*filters.DateTo)
			dateFilter["$lt"] = end
		}
		filter["scheduled_date"] = dateFilter
	}

	if filters.CarID != "" {
		filter["car_id"] = filters.CarID
	}

	if filters.Status != "" {
		filter["status"] = filters.Status
	}

	opts := options.Find().
		SetSkip(int64(filters.Skip)).
		SetLimit(int64(filters.Limit)).
		SetSort(bson.D{{Key: "scheduled_date", Value: 1}, {Key: "time_slot", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Errorf("Failed to list appointments: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to list appointments", err)
	}
	defer cursor.Close(ctx)

	var appointments []*types.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to decode appointments", err)
	}

	return appointments, nil
}

// conflictFilter builds the query matching active appointments on the exact
// (car, calendar day, time slot) triple. Cancelled and no-show appointments
// do not occupy their slot; excludeID keeps a reschedule from colliding with
// itself.
func conflictFilter(carID string, dayStart, dayEnd time.Time, timeSlot, excludeID string) (bson.M, error) {
	filter := bson.M{
		"car_id":         carID,
		"time_slot":      timeSlot,
		"scheduled_date": bson.M{"$gte": dayStart, "$lt": dayEnd},
		"status":         bson.M{"$nin": types.InactiveStatuses()},
	}

	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "appointment not found")
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	return filter, nil
}

// FindConflicting returns the active appointment occupying the exact
// (car, day, slot) triple, or nil when the slot is free
func (r *Repository) FindConflicting(ctx context.Context, carID string, dayStart, dayEnd time.Time, timeSlot, excludeID string) (*types.Appointment, error) {
	defer monitoring.TimeMongoOperation("find_one", database.AppointmentsCollection)()

	filter, err := conflictFilter(carID, dayStart, dayEnd, timeSlot, excludeID)
	if err != nil {
		return nil, err
	}

	var apt types.Appointment
	err = r.collection.FindOne(ctx, filter).Decode(&apt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Errorf("Failed to check slot conflict: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to check slot conflict", err)
	}

	return &apt, nil
}

// ListByDay retrieves all appointments within [dayStart, dayEnd),
// optionally restricted to the given car ids
func (r *Repository) ListByDay(ctx context.Context, dayStart, dayEnd time.Time, carIDs []string) ([]*types.Appointment, error) {
	defer monitoring.TimeMongoOperation("find", database.AppointmentsCollection)()

	filter := bson.M{
		"scheduled_date": bson.M{"$gte": dayStart, "$lt": dayEnd},
	}
	if len(carIDs) > 0 {
		filter["car_id"] = bson.M{"$in": carIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "time_slot", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Errorf("Failed to list appointments for day: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to list appointments", err)
	}
	defer cursor.Close(ctx)

	var appointments []*types.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to decode appointments", err)
	}

	return appointments, nil
}
