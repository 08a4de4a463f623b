package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func stageValue(t *testing.T, stage bson.D, op string) interface{} {
	t.Helper()
	assert.Len(t, stage, 1)
	assert.Equal(t, op, stage[0].Key)
	return stage[0].Value
}

func TestRiskDistributionPipeline(t *testing.T) {
	pipeline := riskDistributionPipeline()
	assert.Len(t, pipeline, 2)

	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, "active", match["status"])

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Equal(t, "$analytics.risk_score", group["_id"])
}

func TestTopNeighborhoodsPipeline(t *testing.T) {
	pipeline := topNeighborhoodsPipeline(10)
	assert.Len(t, pipeline, 4)

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Equal(t, "$address.neighborhood", group["_id"])

	sort := stageValue(t, pipeline[2], "$sort").(bson.D)
	assert.Equal(t, bson.D{{Key: "count", Value: -1}}, sort)

	assert.Equal(t, 10, stageValue(t, pipeline[3], "$limit"))
}

func TestConfirmationsByMethodPipeline(t *testing.T) {
	since := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)
	pipeline := confirmationsByMethodPipeline(since)
	assert.Len(t, pipeline, 2)

	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, "confirmed", match["confirmation.status"])
	assert.Equal(t, bson.M{"$gte": since}, match["scheduled_date"])

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Equal(t, "$confirmation.method", group["_id"])
}

func TestConfirmationsByHourPipeline(t *testing.T) {
	since := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)
	pipeline := confirmationsByHourPipeline(since)
	assert.Len(t, pipeline, 3)

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Equal(t, bson.M{"$hour": "$confirmation.confirmed_at"}, group["_id"])

	sort := stageValue(t, pipeline[2], "$sort").(bson.D)
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, sort)
}
