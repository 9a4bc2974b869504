// Package docs holds the OpenAPI description served under /api/viewer/swagger.
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
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/models": {
            "get": {
                "tags": ["models"],
                "summary": "List imported models",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Imported models, newest first", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Model"}}}}
            },
            "post": {
                "tags": ["models"],
                "summary": "Import a GLB model",
                "description": "Upload a .glb file, or a .zip holding exactly one .glb. The model replaces the one in the viewer and clears all hotspots.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [{"type": "file", "description": "GLB file or zip archive", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "201": {"description": "Model imported and loaded", "schema": {"$ref": "#/definitions/models.Model"}},
                    "400": {"description": "Not a GLB file", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "507": {"description": "Model storage is full", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/models/{id}": {
            "get": {
                "tags": ["models"],
                "summary": "Get model metadata",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Model found", "schema": {"$ref": "#/definitions/models.Model"}},
                    "404": {"description": "Model not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "delete": {
                "tags": ["models"],
                "summary": "Delete an imported model",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Model not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/models/{id}/download": {
            "get": {
                "tags": ["models"],
                "summary": "Download model bytes",
                "produces": ["model/gltf-binary"],
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "GLB file", "schema": {"type": "file"}}}
            }
        },
        "/storage/stats": {
            "get": {
                "tags": ["models"],
                "summary": "Blob storage statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.BlobStats"}}}
            }
        },
        "/session": {
            "get": {
                "tags": ["session"],
                "summary": "Current session snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Snapshot"}}}
            }
        },
        "/session/model": {
            "post": {
                "tags": ["session"],
                "summary": "Load an imported model into the viewer",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoadModelRequest"}}],
                "responses": {
                    "200": {"description": "Session after the load", "schema": {"$ref": "#/definitions/models.Snapshot"}},
                    "404": {"description": "Model not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/session/placement": {
            "post": {
                "tags": ["session"],
                "summary": "Enter placement mode",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Snapshot"}}}
            },
            "delete": {
                "tags": ["session"],
                "summary": "Leave placement mode without adding a hotspot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Snapshot"}}}
            }
        },
        "/session/ray": {
            "post": {
                "tags": ["session"],
                "summary": "Report a click ray result",
                "parameters": [{"name": "report", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RayReport"}}],
                "responses": {
                    "200": {"description": "hotspot (null when none was created) and session", "schema": {"type": "object"}},
                    "400": {"description": "Invalid ray report", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/session/events": {
            "get": {
                "tags": ["session"],
                "summary": "Stream session snapshots",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "event stream", "schema": {"type": "string"}}}
            }
        },
        "/hotspots": {
            "get": {
                "tags": ["hotspots"],
                "summary": "List hotspots in creation order",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Hotspot"}}}}
            }
        },
        "/hotspots/{id}": {
            "get": {
                "tags": ["hotspots"],
                "summary": "Get a hotspot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Hotspot"}},
                    "404": {"description": "Hotspot not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "patch": {
                "tags": ["hotspots"],
                "summary": "Edit a hotspot's label or description",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "patch", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.HotspotPatch"}}
                ],
                "responses": {"200": {"description": "found and the hotspot list", "schema": {"type": "object"}}}
            },
            "delete": {
                "tags": ["hotspots"],
                "summary": "Delete a hotspot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "found and the hotspot list", "schema": {"type": "object"}}}
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "boolean"}, "message": {"type": "string"}, "details": {"type": "string"}}
        },
        "storage.BlobStats": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "objects": {"type": "integer"},
                "sizeBytes": {"type": "integer"},
                "hits": {"type": "integer"},
                "misses": {"type": "integer"},
                "hitRate": {"type": "number"}
            }
        },
        "vec3": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
        "models.Hotspot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "position": {"$ref": "#/definitions/vec3"},
                "label": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.HotspotPatch": {
            "type": "object",
            "properties": {"label": {"type": "string"}, "description": {"type": "string"}}
        },
        "models.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "original_filename": {"type": "string"},
                "content_type": {"type": "string"},
                "size": {"type": "integer"},
                "uploaded_at": {"type": "string", "format": "date-time"},
                "storage_key": {"type": "string"}
            }
        },
        "models.LoadModelRequest": {
            "type": "object",
            "properties": {"modelId": {"type": "string", "format": "uuid"}}
        },
        "models.RayReport": {
            "type": "object",
            "properties": {
                "hit": {"type": "boolean"},
                "point": {"$ref": "#/definitions/vec3"},
                "generation": {"type": "integer"}
            }
        },
        "models.Snapshot": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["idle", "placing"]},
                "placing": {"type": "boolean"},
                "model": {"$ref": "#/definitions/models.Model"},
                "generation": {"type": "integer"},
                "hotspots": {"type": "array", "items": {"$ref": "#/definitions/models.Hotspot"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/viewer",
	Schemes:          []string{},
	Title:            "Hotspot Viewer API",
	Description:      "Imports GLB models and manages hotspot annotations placed on them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
