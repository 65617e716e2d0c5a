// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g server/main.go -o docs` after changing
// handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/programs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["programs"],
                "summary": "Program details",
                "parameters": [
                    {"type": "integer", "description": "Program ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}
                }
            }
        },
        "/bookings/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Open a booking session for a program",
                "parameters": [
                    {"description": "Program to book", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/bookings.OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}
                }
            }
        },
        "/bookings/sessions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Booking session snapshot",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookings"],
                "summary": "Close a booking session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}}
            }
        },
        "/bookings/sessions/{id}/initiate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Start a booking attempt",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}
                }
            }
        },
        "/bookings/sessions/{id}/payment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Checkout widget success callback",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Payment confirmation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/bookings.PaymentConfirmationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}
                }
            }
        },
        "/bookings/sessions/{id}/payment/abandon": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookings"],
                "summary": "Checkout widget dismissed",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}}
            }
        },
        "/bookings/sessions/{id}/receipt": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["bookings"],
                "summary": "Download the booking receipt",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        },
        "/bookings/attempts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Attempt history of the current student",
                "parameters": [
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}}
            }
        },
        "/bookings/mine": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Bookings of the current student",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StandardApiResponse"}}}
            }
        }
    },
    "definitions": {
        "bookings.OpenSessionRequest": {
            "type": "object",
            "required": ["programId"],
            "properties": {"programId": {"type": "integer", "minimum": 1}}
        },
        "bookings.PaymentConfirmationRequest": {
            "type": "object",
            "required": ["razorpay_order_id", "razorpay_payment_id"],
            "properties": {
                "razorpay_order_id": {"type": "string"},
                "razorpay_payment_id": {"type": "string"},
                "razorpay_signature": {"type": "string"}
            }
        },
        "response.StandardApiResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "errors": {},
                "message": {"type": "string"},
                "status": {"type": "string"},
                "status_code": {"type": "integer"}
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
	Title:            "Festbook Booking Gateway API",
	Description:      "Booking sessions for festival programs: roster, payment checkout and booking submission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
