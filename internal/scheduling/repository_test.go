package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

func TestConflictFilter_IgnoresCancelledAndNoShow(t *testing.T) {
	dayStart, dayEnd := types.DayBounds(testDate("2025-01-10"))

	filter, err := conflictFilter("car-1", dayStart, dayEnd, "08:00", "")
	assert.NoError(t, err)

	// cancelled and no_show appointments free their slot for rebooking
	status := filter["status"].(bson.M)
	assert.ElementsMatch(t, []string{"cancelled", "no_show"}, status["$nin"])
}

func TestConflictFilter_DayWindowAndExactSlot(t *testing.T) {
	dayStart, dayEnd := types.DayBounds(testDate("2025-01-10"))

	filter, err := conflictFilter("car-1", dayStart, dayEnd, "08:00", "")
	assert.NoError(t, err)

	assert.Equal(t, "car-1", filter["car_id"])
	assert.Equal(t, "08:00", filter["time_slot"])
	assert.Equal(t, bson.M{"$gte": dayStart, "$lt": dayEnd}, filter["scheduled_date"])
	assert.NotContains(t, filter, "_id")
}

func TestConflictFilter_ExcludesSelf(t *testing.T) {
	dayStart, dayEnd := types.DayBounds(testDate("2025-01-10"))
	oid := primitive.NewObjectID()

	filter, err := conflictFilter("car-1", dayStart, dayEnd, "08:00", oid.Hex())
	assert.NoError(t, err)

	assert.Equal(t, bson.M{"$ne": oid}, filter["_id"])
}

func TestConflictFilter_BadExcludeID(t *testing.T) {
	dayStart, dayEnd := types.DayBounds(testDate("2025-01-10"))

	_, err := conflictFilter("car-1", dayStart, dayEnd, "08:00", "not-an-object-id")
	assert.True(t, types.IsNotFound(err))
}
