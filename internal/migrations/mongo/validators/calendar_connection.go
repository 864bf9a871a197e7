package validators

import "go.mongodb.org/mongo-driver/bson"

var CalendarConnectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"host_id",
			"provider",
			"calendar_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"host_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"provider": bson.M{
				"bsonType": "string",
				"enum": []string{
					"google",
					"caldav",
					"zoom",
					"msgraph",
				},
			},

			"calendar_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 256,
			},

			"access_token": bson.M{
				"bsonType": "string",
			},

			"refresh_token": bson.M{
				"bsonType": "string",
			},

			"token_expiry": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
