package cars

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

// Repository implements the CarRepository interface over the cars collection
type Repository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewRepository creates a new car repository
func NewRepository(db *database.Mongo, log *logger.Logger) interfaces.CarRepository {
	return &Repository{
		collection: db.Collection(database.CarsCollection),
		logger:     log,
	}
}

// Create inserts a new car and assigns its id. A duplicate name is rejected
// by the unique index and surfaced as a conflict.
func (r *Repository) Create(ctx context.Context, car *types.Car) error {
	defer monitoring.TimeMongoOperation("insert", database.CarsCollection)()

	result, err := r.collection.InsertOne(ctx, car)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.NewConflictError(types.ErrCodeDuplicateCarName, "a car with this name already exists")
		}
		r.logger.Errorf("Failed to create car: %v", err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to create car", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		car.ID = oid
	}

	r.logger.Infof("Created car %s (%s)", car.Name, car.ID.Hex())
	return nil
}

// GetByID retrieves a car by id
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Car, error) {
	defer monitoring.TimeMongoOperation("find_one", database.CarsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
	}

	var car types.Car
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
		}
		r.logger.Errorf("Failed to get car %s: %v", id, err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to get car", err)
	}

	return &car, nil
}

// FindByName retrieves the car with the given unique name, or nil when absent
func (r *Repository) FindByName(ctx context.Context, name string) (*types.Car, error) {
	defer monitoring.TimeMongoOperation("find_one", database.CarsCollection)()

	var car types.Car
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Errorf("Failed to find car by name: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to find car", err)
	}

	return &car, nil
}

// Update applies a field-merge update built from the patch
func (r *Repository) Update(ctx context.Context, id string, patch *types.CarPatch) error {
	defer monitoring.TimeMongoOperation("update", database.CarsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.LicensePlate != nil {
		set["license_plate"] = *patch.LicensePlate
	}
	if patch.Model != nil {
		set["model"] = *patch.Model
	}
	if patch.Driver != nil {
		set["driver"] = *patch.Driver
	}
	if patch.Capacity != nil {
		set["capacity"] = *patch.Capacity
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if patch.Zones != nil {
		set["zones"] = *patch.Zones
	}
	if patch.WorkingHours != nil {
		set["working_hours"] = *patch.WorkingHours
	}
	if patch.UnavailableDates != nil {
		set["unavailable_dates"] = *patch.UnavailableDates
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.NewConflictError(types.ErrCodeDuplicateCarName, "a car with this name already exists")
		}
		r.logger.Errorf("Failed to update car %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to update car", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
	}

	r.logger.Infof("Updated car %s", id)
	return nil
}

// SetActive updates only the active flag
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	defer monitoring.TimeMongoOperation("update", database.CarsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		r.logger.Errorf("Failed to set active on car %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to update car", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "car not found")
	}

	return nil
}

// List retrieves cars matching the AND-combined filters
func (r *Repository) List(ctx context.Context, filters *types.CarFilters) ([]*types.Car, error) {
	defer monitoring.TimeMongoOperation("find", database.CarsCollection)()

	filter := bson.M{}
	if filters.Active != nil {
		filter["active"] = *filters.Active
	}
	if filters.Zone != "" {
		filter["zones"] = filters.Zone
	}

	opts := options.Find().
		SetSkip(int64(filters.Skip)).
		SetLimit(int64(filters.Limit)).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Errorf("Failed to list cars: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to list cars", err)
	}
	defer cursor.Close(ctx)

	var cars []*types.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to decode cars", err)
	}

	return cars, nil
}

// ListActive retrieves all active cars sorted by name
func (r *Repository) ListActive(ctx context.Context) ([]*types.Car, error) {
	defer monitoring.TimeMongoOperation("find", database.CarsCollection)()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		r.logger.Errorf("Failed to list active cars: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to list cars", err)
	}
	defer cursor.Close(ctx)

	var cars []*types.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to decode cars", err)
	}

	return cars, nil
}
