package patients

import (
	"context"
	"errors"
	"strings"
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

// Repository implements the PatientRepository interface over the patients
// collection
type Repository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewRepository creates a new patient repository
func NewRepository(db *database.Mongo, log *logger.Logger) interfaces.PatientRepository {
	return &Repository{
		collection: db.Collection(database.PatientsCollection),
		logger:     log,
	}
}

// searchFilter builds the free-search $or branches: name by case-insensitive
// regex, CPF by normalized exact match, contact values by regex with spaces
// and dashes stripped so a formatted phone number still matches the stored
// digits.
func searchFilter(term string) []bson.M {
	contactTerm := strings.NewReplacer(" ", "", "-", "").Replace(term)

	or := []bson.M{
		{"personal_info.name": primitive.Regex{Pattern: term, Options: "i"}},
		{"contacts.value": primitive.Regex{Pattern: contactTerm, Options: "i"}},
	}
	if cpf := types.NormalizeCPF(term); cpf != "" {
		or = append(or, bson.M{"personal_info.cpf": cpf})
	}
	return or
}

// Create inserts a new patient and assigns its id. A duplicate CPF is
// rejected by the unique index and surfaced as a conflict.
func (r *Repository) Create(ctx context.Context, patient *types.Patient) error {
	defer monitoring.TimeMongoOperation("insert", database.PatientsCollection)()

	result, err := r.collection.InsertOne(ctx, patient)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.NewConflictError(types.ErrCodeDuplicateCPF, "a patient with this CPF already exists")
		}
		r.logger.Errorf("Failed to create patient: %v", err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to create patient", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		patient.ID = oid
	}

	r.logger.Infof("Created patient %s", patient.ID.Hex())
	return nil
}

// GetByID retrieves a patient by id
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Patient, error) {
	defer monitoring.TimeMongoOperation("find_one", database.PatientsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	var patient types.Patient
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&patient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
		}
		r.logger.Errorf("Failed to get patient %s: %v", id, err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to get patient", err)
	}

	return &patient, nil
}

// FindByCPF retrieves the patient holding the normalized CPF regardless of
// status, or nil when no such patient exists
func (r *Repository) FindByCPF(ctx context.Context, cpf string) (*types.Patient, error) {
	defer monitoring.TimeMongoOperation("find_one", database.PatientsCollection)()

	var patient types.Patient
	err := r.collection.FindOne(ctx, bson.M{"personal_info.cpf": types.NormalizeCPF(cpf)}).Decode(&patient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Errorf("Failed to find patient by CPF: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to find patient", err)
	}

	return &patient, nil
}

// Update applies a field-merge update built from the patch
func (r *Repository) Update(ctx context.Context, id string, patch *types.PatientPatch) error {
	defer monitoring.TimeMongoOperation("update", database.PatientsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["personal_info.name"] = *patch.Name
	}
	if patch.BirthDate != nil {
		set["personal_info.birth_date"] = *patch.BirthDate
	}
	if patch.Gender != nil {
		set["personal_info.gender"] = *patch.Gender
	}
	if patch.Email != nil {
		set["personal_info.email"] = *patch.Email
	}
	if patch.Contacts != nil {
		set["contacts"] = *patch.Contacts
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.HealthPlan != nil {
		set["health_plan"] = *patch.HealthPlan
	}
	if patch.Preferences != nil {
		set["preferences"] = *patch.Preferences
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.logger.Errorf("Failed to update patient %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to update patient", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	r.logger.Infof("Updated patient %s", id)
	return nil
}

// SetStatus updates only the lifecycle status
func (r *Repository) SetStatus(ctx context.Context, id string, status types.PatientStatus) error {
	defer monitoring.TimeMongoOperation("update", database.PatientsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		r.logger.Errorf("Failed to set status on patient %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to update patient status", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	return nil
}

// List retrieves patients matching the AND-combined filters. Free search
// matches name and contact values by case-insensitive regex and the CPF by
// its normalized form.
func (r *Repository) List(ctx context.Context, filters *types.PatientFilters) ([]*types.Patient, error) {
	defer monitoring.TimeMongoOperation("find", database.PatientsCollection)()

	filter := bson.M{}

	if filters.Search != "" {
		filter["$or"] = searchFilter(filters.Search)
	}

	if filters.Status != "" {
		filter["status"] = filters.Status
	}

	if filters.Neighborhood != "" {
		filter["address.neighborhood"] = primitive.Regex{Pattern: filters.Neighborhood, Options: "i"}
	}

	if filters.RiskScore != "" {
		filter["analytics.risk_score"] = filters.RiskScore
	}

	opts := options.Find().
		SetSkip(int64(filters.Skip)).
		SetLimit(int64(filters.Limit)).
		SetSort(bson.D{{Key: "personal_info.name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Errorf("Failed to list patients: %v", err)
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to list patients", err)
	}
	defer cursor.Close(ctx)

	var patients []*types.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to decode patients", err)
	}

	return patients, nil
}

// AppendConfirmationAttempt appends one attempt and stores the recomputed
// confirmation rate in the same update
func (r *Repository) AppendConfirmationAttempt(ctx context.Context, id string, attempt types.ConfirmationAttempt, rate float64) error {
	defer monitoring.TimeMongoOperation("update", database.PatientsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"confirmation_attempts": attempt},
		"$set": bson.M{
			"confirmation_rate": rate,
			"updated_at":        now,
			"last_activity":     now,
		},
	})
	if err != nil {
		r.logger.Errorf("Failed to record confirmation attempt for patient %s: %v", id, err)
		return types.NewStoreError(types.ErrCodeStoreUnavailable, "failed to record confirmation attempt", err)
	}

	if result.MatchedCount == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, "patient not found")
	}

	return nil
}
