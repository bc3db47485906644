package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"client_first_name",
			"client_contact",
			"branch_id",
			"services",
			"date",
			"time",
			"start_time",
			"end_time",
			"total_cost",
			"total_duration",
			"status",
			"created_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"client_first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"client_contact": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9][0-9]{6,14}$`,
			},

			"branch_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"services": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "price", "duration"},
					"properties": bson.M{
						"id":       bson.M{"bsonType": "string", "minLength": 1},
						"price":    bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
						"duration": bson.M{"bsonType": integer, "minimum": 0},
					},
				},
			},

			"stylist_assignments": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"service_id", "stylist_id"},
				},
			},

			"stylist_ids": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]{2}:[0-9]{2}$`,
			},

			"start_time": bson.M{"bsonType": "date"},
			"end_time":   bson.M{"bsonType": "date"},

			"total_cost": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"total_duration": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "completed", "cancelled", "no_show"},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

var AppointmentLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
