package validators

import "go.mongodb.org/mongo-driver/bson"

var timeRangeSchema = bson.M{
	"bsonType": "object",
	"required": []string{"start", "end"},
	"properties": bson.M{
		"start": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
		"end": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
	},
}

var AvailabilityProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"host_id",
			"time_zone",
			"created_at",
			"updated_at",
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

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"weekly": bson.M{
				"bsonType": "array",
				"maxItems": 14,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day_of_week", "ranges"},
					"properties": bson.M{
						"day_of_week": bson.M{
							"bsonType": "string",
							"enum": []string{
								"Sunday", "Monday", "Tuesday", "Wednesday",
								"Thursday", "Friday", "Saturday",
							},
						},
						"ranges": bson.M{
							"bsonType": "array",
							"minItems": 1,
							"maxItems": 20,
							"items":    timeRangeSchema,
						},
					},
				},
			},

			"overrides": bson.M{
				"bsonType": "array",
				"maxItems": 366,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date"},
					"properties": bson.M{
						"date": bson.M{
							"bsonType": "string",
							"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
						},
						"ranges": bson.M{
							"bsonType": "array",
							"maxItems": 20,
							"items":    timeRangeSchema,
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
