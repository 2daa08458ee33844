// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for an access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/account": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Delete the caller's account and all practice data",
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["sessions"],
                "summary": "List practice sessions in a date range",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sessions"],
                "summary": "Record a finished practice session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/sessionResult"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/summaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/stats/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Aggregated statistics of the caller",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/summaryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/text/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["text"],
                "summary": "Build a practice text weighted toward the caller's weak keys",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/generateTextRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/generateTextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string", "minLength": 3, "maxLength": 32},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/userResponse"}
            }
        },
        "unigraphObservation": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "mistyped": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "digraphObservation": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "mean_interval": {"type": "integer"}
            }
        },
        "sessionResult": {
            "type": "object",
            "properties": {
                "wpm": {"type": "number"},
                "accuracy": {"type": "number"},
                "raw_accuracy": {"type": "number"},
                "practice_duration": {"type": "integer"},
                "corrected_char_count": {"type": "integer"},
                "deleted_char_count": {"type": "integer"},
                "total_keystrokes": {"type": "integer"},
                "total_char_count": {"type": "integer"},
                "error_char_count": {"type": "integer"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "unigraphs": {"type": "object", "additionalProperties": {"$ref": "#/definitions/unigraphObservation"}},
                "digraphs": {"type": "object", "additionalProperties": {"$ref": "#/definitions/digraphObservation"}}
            }
        },
        "practiceSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "wpm": {"type": "number"},
                "accuracy": {"type": "number"},
                "raw_accuracy": {"type": "number"},
                "practice_duration": {"type": "integer"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "sessionListResponse": {
            "type": "object",
            "properties": {
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/practiceSession"}},
                "count": {"type": "integer"}
            }
        },
        "summaryResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "total_sessions": {"type": "integer"},
                "total_practice_duration": {"type": "integer"},
                "average_wpm": {"type": "number"},
                "fastest_wpm": {"type": "number"},
                "average_accuracy": {"type": "number"},
                "average_raw_accuracy": {"type": "number"},
                "practice_streak": {"type": "integer"},
                "longest_streak": {"type": "integer"},
                "total_corrected_char_count": {"type": "integer"},
                "total_deleted_char_count": {"type": "integer"},
                "total_keystrokes": {"type": "integer"},
                "total_char_count": {"type": "integer"},
                "error_char_count": {"type": "integer"},
                "unigraphs": {"type": "array", "items": {"$ref": "#/definitions/unigraphObservation"}},
                "digraphs": {"type": "array", "items": {"$ref": "#/definitions/digraphObservation"}},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "generateTextRequest": {
            "type": "object",
            "properties": {
                "word_limit": {"type": "integer", "minimum": 1, "maximum": 500},
                "min_len": {"type": "integer", "minimum": 0, "maximum": 64},
                "max_len": {"type": "integer", "minimum": 0, "maximum": 64}
            }
        },
        "generateTextResponse": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "word_count": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Keystroke Engine API",
	Description:      "Typing practice statistics and adaptive text generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
