package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"member_id",
			"booking_date",
			"year",
			"pool",
			"zone",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"member_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"booking_date": bson.M{
				"bsonType": "date",
			},

			"year": bson.M{
				"bsonType": "int",
				"minimum":  2000,
				"maximum":  2200,
			},

			"pool": bson.M{
				"enum": []string{"saturday", "sunday"},
			},

			"zone": bson.M{
				"enum": []string{"A", "B", "C"},
			},

			"mahaprasad": bson.M{
				"bsonType": "bool",
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},

			"updated_by": bson.M{
				"bsonType": "string",
			},
		},
	},
}
