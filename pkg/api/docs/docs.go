// Package docs holds the swagger document served by the operator API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/goran-ethernal/SafeIndexor"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "https://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {
            "get": {
                "description": "Chain head, minimum watermarks and pending decoded elements",
                "produces": ["application/json"],
                "tags": ["Pipeline"],
                "summary": "Pipeline status",
                "responses": {
                    "200": {"description": "Pipeline status", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/safes/{address}": {
            "get": {
                "description": "Latest replayed status of a safe",
                "produces": ["application/json"],
                "tags": ["Safes"],
                "summary": "Safe status",
                "parameters": [
                    {"type": "string", "description": "Safe address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Safe status", "schema": {"$ref": "#/definitions/api.SafeResponse"}},
                    "400": {"description": "Invalid address", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Safe not replayed yet", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/reindex": {
            "post": {
                "description": "Reset watermarks so addresses are scanned again from a block",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Control"],
                "summary": "Reindex addresses",
                "parameters": [
                    {"description": "Addresses and start block", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.ReindexRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rows updated", "schema": {"$ref": "#/definitions/api.ControlResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/reprocess": {
            "post": {
                "description": "Delete derived wallet state and replay decoded elements again",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Control"],
                "summary": "Reprocess safes",
                "parameters": [
                    {"description": "Addresses", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.ReprocessRequest"}}
                ],
                "responses": {
                    "200": {"description": "Elements reset", "schema": {"$ref": "#/definitions/api.ControlResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "chain_head": {"type": "integer"},
                "latest_block": {"type": "integer"},
                "monitored_safes": {"type": "integer"},
                "proxy_factories": {"type": "integer"},
                "min_watermarks": {"type": "object", "additionalProperties": {"type": "integer"}},
                "unconfirmed_blocks": {"type": "integer"},
                "pending_elements": {"type": "integer"},
                "wallets_with_status": {"type": "integer"}
            }
        },
        "api.SafeResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "owners": {"type": "array", "items": {"type": "string"}},
                "threshold": {"type": "integer"},
                "nonce": {"type": "integer"},
                "master_copy": {"type": "string"},
                "fallback_handler": {"type": "string"},
                "guard": {"type": "string"},
                "enabled_modules": {"type": "array", "items": {"type": "string"}},
                "tx_hash": {"type": "string"},
                "block_number": {"type": "integer"}
            }
        },
        "api.ReindexRequest": {
            "type": "object",
            "properties": {
                "addresses": {"type": "array", "items": {"type": "string"}},
                "from_block": {"type": "integer"}
            }
        },
        "api.ReprocessRequest": {
            "type": "object",
            "properties": {
                "addresses": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.ControlResponse": {
            "type": "object",
            "properties": {
                "updated": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "SafeIndexor API",
	Description:      "Operator API of the Safe indexing pipeline",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
