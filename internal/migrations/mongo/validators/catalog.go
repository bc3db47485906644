package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var integer = []string{"int", "long"}

var BranchValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "address", "city", "is_active", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},
			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},
			"hours": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"is_active":  bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"branch_id", "name", "price", "duration", "category", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"branch_id": objectIDString,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"duration": bson.M{
				"bsonType": integer,
				"minimum":  0,
				"maximum":  720,
			},
			"category": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var StylistValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"branch_id", "name", "first_name", "last_name", "is_available", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"branch_id": objectIDString,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},
			"is_available": bson.M{"bsonType": "bool"},
			"service_ids": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    objectIDString,
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
