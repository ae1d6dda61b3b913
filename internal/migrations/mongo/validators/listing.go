package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "host", "payout_mode", "updated_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": numeric, "minimum": 1},
			"host": bson.M{
				"bsonType": "string",
				"pattern":  "^0x[0-9a-f]{40}$",
			},
			"nightly_price":       bson.M{"bsonType": numeric, "minimum": 0},
			"cancel_before_hours": bson.M{"bsonType": numeric, "minimum": 0},
			"active":              bson.M{"bsonType": "bool"},
			"payout_mode": bson.M{
				"bsonType": "string",
				"enum":     []string{"Escrow", "Instant"},
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
