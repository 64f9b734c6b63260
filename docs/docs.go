// Package docs registers the OpenAPI document of the local wallet API.
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
        "/vault/collections": {
            "get": {
                "description": "Lists the builder collections of the active wallet",
                "produces": ["application/json"],
                "tags": ["vault"],
                "summary": "List collections",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/vault.Collection"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets": {
            "get": {
                "description": "Lists stored wallets in insertion order with the active selection",
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "List wallets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ListResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets/active": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Select the active wallet",
                "parameters": [
                    {"description": "Wallet id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SetActiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ListResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets/generate": {
            "post": {
                "description": "Generates a fresh secret and stores it like an imported one",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Generate new wallet",
                "parameters": [
                    {"description": "Optional name", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/model.GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ImportResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets/import": {
            "post": {
                "description": "Encrypts the secret with the startup password and stores one wallet per network",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Import a secret",
                "parameters": [
                    {"description": "Secret and optional name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets/{id}": {
            "delete": {
                "description": "Removes one record. Unknown ids are ignored.",
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Remove a wallet",
                "parameters": [
                    {"type": "string", "description": "Wallet id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ListResponse"}}
                }
            }
        },
        "/wallets/{id}/qr": {
            "get": {
                "description": "Returns the wallet identifier and a base64 PNG QR code of it",
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Identifier QR code",
                "parameters": [
                    {"type": "string", "description": "Wallet id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.QRResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "model.GenerateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "model.ImportRequest": {
            "type": "object",
            "required": ["secret"],
            "properties": {
                "name": {"type": "string"},
                "secret": {"type": "string"}
            }
        },
        "model.ImportResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "success": {"type": "boolean"},
                "wallets": {"type": "array", "items": {"$ref": "#/definitions/model.WalletView"}}
            }
        },
        "model.ListResponse": {
            "type": "object",
            "properties": {
                "activeWalletId": {"type": "string"},
                "wallets": {"type": "array", "items": {"$ref": "#/definitions/model.WalletView"}}
            }
        },
        "model.QRResponse": {
            "type": "object",
            "properties": {
                "QR": {"type": "string"},
                "identifier": {"type": "string"}
            }
        },
        "model.SetActiveRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"}
            }
        },
        "model.WalletView": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "createdAt": {"type": "integer"},
                "id": {"type": "string"},
                "identifier": {"type": "string"},
                "lastUsed": {"type": "integer"},
                "name": {"type": "string"},
                "network": {"type": "string"}
            }
        },
        "vault.Collection": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "schema": {"type": "object"},
                "type": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "nilz wallet API",
	Description:      "Local custody of Nillion identities and SecretVaults access with the active wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
