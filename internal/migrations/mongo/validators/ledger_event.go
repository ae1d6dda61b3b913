package validators

import "go.mongodb.org/mongo-driver/bson"

var numeric = []string{"int", "long"}

var LedgerEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"position",
			"log_index",
			"booking_id",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"Booked", "Cancelled", "Settled"},
			},
			"position":   bson.M{"bsonType": numeric, "minimum": 0},
			"log_index":  bson.M{"bsonType": numeric, "minimum": 0},
			"tx_hash":    bson.M{"bsonType": "string"},
			"booking_id": bson.M{"bsonType": numeric, "minimum": 1},
			"listing_id": bson.M{"bsonType": numeric, "minimum": 1},
			"guest": bson.M{
				"bsonType": "string",
				"pattern":  "^0x[0-9a-f]{40}$",
			},
			"start_day":   bson.M{"bsonType": numeric},
			"end_day":     bson.M{"bsonType": numeric},
			"total_paid":  bson.M{"bsonType": numeric, "minimum": 0},
			"payout_mode": bson.M{"bsonType": numeric, "minimum": 0},
			"observed_at": bson.M{"bsonType": "date"},
		},
	},
}
