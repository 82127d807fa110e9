// Package docs holds the OpenAPI document served by the Swagger UI.
// Keep in sync with the handler annotations in internal/httpapi (swag init -g cmd/tetherworker/docs.go).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "tetherworker maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Samples host CPU utilization (about 100ms) and virtual memory.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Host health snapshot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/types.HealthResponse"}
                    }
                }
            }
        },
        "/infer": {
            "post": {
                "description": "Forwards the prompt to the configured provider, or echoes it when no provider is available.\nProvider failures still return 200 with an echo and an error field.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inference"],
                "summary": "Run inference",
                "parameters": [
                    {
                        "description": "Inference request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.InferRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/types.InferResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/types.ErrorResponse"}
                    },
                    "415": {
                        "description": "Unsupported Media Type",
                        "schema": {"$ref": "#/definitions/types.ErrorResponse"}
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {"$ref": "#/definitions/types.ValidationErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 422},
                "error": {"type": "string", "example": "request validation failed"},
                "fields": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                }
            }
        },
        "types.InferRequest": {
            "type": "object",
            "required": ["model", "prompt"],
            "properties": {
                "model": {"type": "string", "example": "tinyllama"},
                "prompt": {"type": "string", "example": "What is the capital of France?"},
                "max_tokens": {"type": "integer", "example": 128}
            }
        },
        "types.InferResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "tinyllama"},
                "output": {"type": "string", "example": "Paris"},
                "max_tokens": {"type": "integer", "example": 128},
                "provider": {"type": "string", "example": "openai"},
                "error": {"type": "string"}
            }
        },
        "types.MemorySnapshot": {
            "type": "object",
            "properties": {
                "total": {"type": "integer", "example": 16777216000},
                "available": {"type": "integer", "example": 8388608000},
                "percent": {"type": "number", "example": 50.0},
                "used": {"type": "integer"},
                "free": {"type": "integer"},
                "active": {"type": "integer"},
                "inactive": {"type": "integer"},
                "buffers": {"type": "integer"},
                "cached": {"type": "integer"},
                "shared": {"type": "integer"},
                "slab": {"type": "integer"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "cpu_percent": {"type": "number", "example": 12.5},
                "memory": {"$ref": "#/definitions/types.MemorySnapshot"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "tetherworker API",
	Description:      "Inference worker: host health and prompt completion with echo fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
