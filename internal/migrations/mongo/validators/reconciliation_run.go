package validators

import "go.mongodb.org/mongo-driver/bson"

var ReconciliationRunValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "started_at", "duration_ms"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string"},
			"from":        bson.M{"bsonType": numeric, "minimum": 0},
			"to":          bson.M{"bsonType": numeric, "minimum": 0},
			"records":     bson.M{"bsonType": numeric, "minimum": 0},
			"booked":      bson.M{"bsonType": numeric, "minimum": 0},
			"cancelled":   bson.M{"bsonType": numeric, "minimum": 0},
			"settled":     bson.M{"bsonType": numeric, "minimum": 0},
			"started_at":  bson.M{"bsonType": "date"},
			"duration_ms": bson.M{"bsonType": numeric, "minimum": 0},
			"error":       bson.M{"bsonType": "string"},
		},
	},
}
