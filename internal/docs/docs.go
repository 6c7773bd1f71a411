// Package docs holds the swagger document of the tournament site API.
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
        "/content": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Content"],
                "summary": "Static page sections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SiteContent"}}
                }
            }
        },
        "/countdown": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Content"],
                "summary": "Time left until the event starts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Countdown"}}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "description": "Scored players with display order, filter, top three and loader state. Rank and badges follow points, not display order.",
                "produces": ["application/json"],
                "tags": ["Leaderboard"],
                "summary": "Leaderboard",
                "parameters": [
                    {"type": "string", "default": "points", "description": "points or handle", "name": "sort", "in": "query"},
                    {"type": "string", "default": "desc", "description": "asc or desc", "name": "order", "in": "query"},
                    {"type": "string", "description": "Case-insensitive filter on handle or name", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LeaderboardView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/leaderboard/retry": {
            "post": {
                "description": "Abandons any pending automatic retry and starts a fresh load.",
                "produces": ["application/json"],
                "tags": ["Leaderboard"],
                "summary": "Retry loading the leaderboard",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/models.LeaderboardState"}}
                }
            }
        },
        "/registrations": {
            "post": {
                "description": "Validates and submits a registration. The count goes up by exactly one on success.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Registrations"],
                "summary": "Register for the tournament",
                "parameters": [
                    {"description": "Form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegistrationForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.RegistrationReceipt"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ValidationErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/registrations/count": {
            "get": {
                "description": "Current registration count against the advertised maximum",
                "produces": ["application/json"],
                "tags": ["Registrations"],
                "summary": "Registration counter",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RegistrationStats"}}
                }
            }
        },
        "/registrations/validate": {
            "post": {
                "description": "Runs the form rules without submitting. Always 200 for a readable body.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Registrations"],
                "summary": "Validate a registration form",
                "parameters": [
                    {"description": "Form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegistrationForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ValidateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Countdown": {
            "type": "object",
            "properties": {
                "days": {"type": "integer"},
                "hours": {"type": "integer"},
                "minutes": {"type": "integer"},
                "seconds": {"type": "integer"},
                "finished": {"type": "boolean"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "models.LeaderboardState": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["idle", "loading", "ready", "error"]},
                "attempt": {"type": "integer"},
                "error": {"type": "string"},
                "retryable": {"type": "boolean"},
                "loadedAt": {"type": "string"}
            }
        },
        "models.RankedEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "username": {"type": "string"},
                "points": {"type": "integer"},
                "rank": {"type": "integer"},
                "badge": {"type": "string", "enum": ["gold", "silver", "bronze"]}
            }
        },
        "models.LeaderboardView": {
            "type": "object",
            "properties": {
                "state": {"$ref": "#/definitions/models.LeaderboardState"},
                "sortBy": {"type": "string"},
                "order": {"type": "string"},
                "filter": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.RankedEntry"}},
                "topIds": {"type": "array", "items": {"type": "string"}},
                "total": {"type": "integer"}
            }
        },
        "models.Registration": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "gamerTag": {"type": "string"},
                "email": {"type": "string"},
                "favoriteGame": {"type": "string"}
            }
        },
        "models.RegistrationForm": {
            "type": "object",
            "required": ["email", "favoriteGame", "fullName", "gamerTag"],
            "properties": {
                "fullName": {"type": "string", "minLength": 2, "maxLength": 100},
                "gamerTag": {"type": "string", "minLength": 3, "maxLength": 20},
                "email": {"type": "string"},
                "favoriteGame": {"type": "string", "minLength": 2, "maxLength": 100}
            }
        },
        "models.RegistrationReceipt": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "gamerTag": {"type": "string"},
                "count": {"type": "integer"},
                "submittedAt": {"type": "string"},
                "closeAfterMs": {"type": "integer"}
            }
        },
        "models.RegistrationStats": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "max": {"type": "integer"},
                "percentage": {"type": "number"},
                "spotsLeft": {"type": "integer"},
                "lowSpots": {"type": "boolean"}
            }
        },
        "models.SiteContent": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "tagline": {"type": "string"},
                "nav": {"type": "array", "items": {"type": "object"}},
                "eventDetails": {"type": "array", "items": {"type": "object"}},
                "rules": {"type": "array", "items": {"type": "object"}},
                "faq": {"type": "array", "items": {"type": "object"}},
                "registrationSteps": {"type": "array", "items": {"type": "object"}},
                "registrationInfo": {"type": "array", "items": {"type": "object"}},
                "recentPlayers": {"type": "array", "items": {"type": "object"}}
            }
        },
        "models.ValidateResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "record": {"$ref": "#/definitions/models.Registration"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Legends of Victory Tournament API",
	Description:      "Registration, leaderboard and content API of the Battle Royale Cup site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
