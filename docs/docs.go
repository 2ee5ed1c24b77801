// Package docs holds the OpenAPI document served at /swagger/doc.json.
// Regenerate with `swag init -g interfaces/http/rest/router.go` after
// changing handler annotations.
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
    "security": [{"BearerAuth": []}],
    "paths": {
        "/cruxes/{key}": {
            "delete": {
                "tags": ["cruxes"],
                "summary": "Delete a crux you created",
                "description": "Soft-deletes the crux and every dimension its author drew to or from it.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Crux key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeleteCruxResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cruxes/{key}/dimensions": {
            "get": {
                "tags": ["dimensions"],
                "summary": "List the dimensions leaving a crux, newest first",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Source crux key", "name": "key", "in": "path", "required": true},
                    {"enum": ["gate", "garden", "growth", "graft"], "type": "string", "description": "Dimension type", "name": "type", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "perPage", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.DimensionResponse"}},
                        "headers": {
                            "Link": {"type": "string", "description": "first, prev, next and last page links"},
                            "Pagination": {"type": "string", "description": "currentPage, perPage and total as JSON"}
                        }
                    },
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["dimensions"],
                "summary": "Link a crux to another crux",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Source crux key", "name": "key", "in": "path", "required": true},
                    {"description": "Dimension", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateDimensionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.DimensionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/dimensions/{key}": {
            "get": {
                "tags": ["dimensions"],
                "summary": "Get one dimension",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Dimension key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DimensionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["dimensions"],
                "summary": "Change a dimension you created",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Dimension key", "name": "key", "in": "path", "required": true},
                    {"description": "Changes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateDimensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DimensionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["dimensions"],
                "summary": "Delete a dimension you created",
                "parameters": [
                    {"type": "string", "description": "Dimension key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/tags/{key}": {
            "get": {
                "tags": ["tags"],
                "summary": "Get one tag",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Tag key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TagResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["tags"],
                "summary": "Relabel a tag (admin)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Tag key", "name": "key", "in": "path", "required": true},
                    {"description": "New label", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateTagRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TagResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["tags"],
                "summary": "Delete a tag (admin)",
                "parameters": [
                    {"type": "string", "description": "Tag key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/{resource}/{key}/tags": {
            "get": {
                "tags": ["tags"],
                "summary": "List the tags of a resource",
                "produces": ["application/json"],
                "parameters": [
                    {"enum": ["authors", "cruxes", "dimensions", "paths", "tags", "themes"], "type": "string", "description": "Resource collection", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Resource key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.TagResponse"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["tags"],
                "summary": "Replace the tags of a resource",
                "description": "Labels are lowercased and deduplicated. Tags not in the list are removed, missing ones are created.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"enum": ["authors", "cruxes", "dimensions", "paths", "tags", "themes"], "type": "string", "description": "Resource collection", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Resource key", "name": "key", "in": "path", "required": true},
                    {"description": "Desired labels", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SyncTagsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SyncTagsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "boolean"},
                "type": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "request_id": {"type": "string"}
            }
        },
        "handlers.CreateDimensionRequest": {
            "type": "object",
            "required": ["targetId", "type"],
            "properties": {
                "targetId": {"type": "string", "format": "uuid"},
                "type": {"type": "string", "enum": ["gate", "garden", "growth", "graft"]},
                "weight": {"type": "integer", "minimum": 0},
                "note": {"type": "string", "maxLength": 2000}
            }
        },
        "handlers.UpdateDimensionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["gate", "garden", "growth", "graft"]},
                "weight": {"type": "integer", "minimum": 0},
                "note": {"type": "string", "maxLength": 2000}
            }
        },
        "handlers.DimensionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "key": {"type": "string"},
                "sourceId": {"type": "string"},
                "targetId": {"type": "string"},
                "type": {"type": "string"},
                "weight": {"type": "integer"},
                "note": {"type": "string"},
                "authorId": {"type": "string"},
                "homeId": {"type": "string"},
                "created": {"type": "string", "format": "date-time"},
                "updated": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.DeleteCruxResponse": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "cascadedDimensions": {"type": "integer"}
            }
        },
        "handlers.SyncTagsRequest": {
            "type": "object",
            "required": ["labels"],
            "properties": {
                "labels": {"type": "array", "maxItems": 100, "items": {"type": "string", "pattern": "^[A-Za-z0-9-]{1,50}$"}}
            }
        },
        "handlers.UpdateTagRequest": {
            "type": "object",
            "required": ["label"],
            "properties": {
                "label": {"type": "string", "pattern": "^[A-Za-z0-9-]{1,50}$"}
            }
        },
        "handlers.TagResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "key": {"type": "string"},
                "resourceType": {"type": "string"},
                "resourceId": {"type": "string"},
                "label": {"type": "string"},
                "authorId": {"type": "string"},
                "homeId": {"type": "string"},
                "system": {"type": "boolean"},
                "created": {"type": "string", "format": "date-time"},
                "updated": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.SyncTagsResponse": {
            "type": "object",
            "properties": {
                "tags": {"type": "array", "items": {"$ref": "#/definitions/handlers.TagResponse"}},
                "added": {"type": "array", "items": {"type": "string"}},
                "removed": {"type": "array", "items": {"type": "string"}}
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
	Title:            "Crux Backend API",
	Description:      "Dimensions between cruxes and tags on content resources.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
