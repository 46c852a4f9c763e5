// Package docs registers the OpenAPI document of the identity API with swag
// so that echo-swagger can serve it under /swagger/*.
//
// The document is maintained by hand in the layout swag init emits. Keep it
// in step with the @Router annotations in internal/api/handler; the router
// tests fail when a registered /v1 route is missing here.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
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
        "/v1/{role}/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true, "description": "patient, counselor or doctor"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/{role}/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign up",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true, "description": "patient, counselor or doctor"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/password": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["password"],
                "summary": "Update password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updatePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.updatePasswordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/password/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["password"],
                "summary": "Reset password with a reset token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updatePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.updatePasswordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/password/reset-token": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["password"],
                "summary": "Issue password reset token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.resetTokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/password/reset/validate": {
            "post": {
                "tags": ["password"],
                "summary": "Validate password reset token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.resetTokenValidity"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "email_address": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.signUpRequest": {
            "type": "object",
            "properties": {
                "email_address": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "date_of_birth": {"type": "string", "example": "1990-01-31"},
                "city": {"type": "string"},
                "province": {"type": "string"},
                "country": {"type": "string"},
                "phone_number": {"type": "string"},
                "registration_number": {"type": "string"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email_address": {"type": "string"},
                "full_name": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "city": {"type": "string"},
                "province": {"type": "string"},
                "country": {"type": "string"},
                "phone_number": {"type": "string"},
                "registration_number": {"type": "string"},
                "authorities": {"type": "array", "items": {"type": "string"}},
                "password_auto_generated": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.userResponse"},
                "status": {"type": "string"},
                "login_success": {"type": "boolean"},
                "access_token": {"type": "string"},
                "error_message": {"type": "string"}
            }
        },
        "handler.updatePasswordRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "handler.updatePasswordResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "email_address": {"type": "string"}
            }
        },
        "handler.resetTokenRequest": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "handler.resetTokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "handler.resetTokenValidity": {
            "type": "object",
            "properties": {"valid": {"type": "boolean"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity API",
	Description:      "Login, sign-up and password management for patients, counselors and doctors.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
