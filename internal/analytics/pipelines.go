package analytics

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// riskDistributionPipeline groups active patients by their risk score
func riskDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "active"}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$analytics.risk_score",
			"count": bson.M{"$sum": 1},
		}}},
	}
}

// topNeighborhoodsPipeline ranks active patients' neighborhoods by count
func topNeighborhoodsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "active"}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$address.neighborhood",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

// confirmationsByMethodPipeline groups confirmed appointments scheduled since
// the cutoff by confirmation method
func confirmationsByMethodPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"scheduled_date":      bson.M{"$gte": since},
			"confirmation.status": "confirmed",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$confirmation.method",
			"count": bson.M{"$sum": 1},
		}}},
	}
}

// confirmationsByHourPipeline groups confirmed appointments by the hour of
// day the confirmation was recorded
func confirmationsByHourPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"scheduled_date":      bson.M{"$gte": since},
			"confirmation.status": "confirmed",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$confirmation.confirmed_at"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
