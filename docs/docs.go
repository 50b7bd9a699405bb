// Package docs registers the Swagger document served at /swagger. It is kept
// in step with the handler annotations by hand; `swag init -g
// cmd/server/main.go` rebuilds it from them.
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
        "/indexes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a page of indexes. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Indexes"],
                "summary": "List indexes (paginated)",
                "operationId": "listIndexes",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListIndexesResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a named index with an optional stopword list.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Indexes"],
                "summary": "Create an index",
                "operationId": "createIndex",
                "parameters": [
                    {"description": "Create index payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateIndexRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.IndexResponse"}},
                    "400": {"description": "Invalid name or stopwords", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "409": {"description": "Index already exists", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "422": {"description": "Malformed JSON", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            }
        },
        "/indexes/{index}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Indexes"],
                "summary": "Fetch an index",
                "operationId": "getIndex",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.IndexResponse"}},
                    "404": {"description": "Index not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Removes the index together with all of its documents.",
                "tags": ["Indexes"],
                "summary": "Delete an index",
                "operationId": "deleteIndex",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "404": {"description": "Index not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            }
        },
        "/indexes/{index}/documents": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "List documents of an index (paginated)",
                "operationId": "listDocuments",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListDocumentsResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "404": {"description": "Index not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores a batch of documents atomically. Retrying with the same Idempotency-Key returns the original IDs.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Add documents to an index",
                "operationId": "addDocuments",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "description": "Idempotency key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Documents", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddDocumentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.AddDocumentsResponse"}, "headers": {"Idempotent-Replay": {"type": "string", "description": "true when served from a stored outcome"}}},
                    "400": {"description": "Invalid batch or Idempotency-Key", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "404": {"description": "Index not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "422": {"description": "Malformed JSON", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            }
        },
        "/indexes/{index}/documents/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Documents"],
                "summary": "Delete a document",
                "operationId": "deleteDocument",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Document UUID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "404": {"description": "Index or document not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            }
        },
        "/indexes/{index}/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Ranks the index's documents against q by token overlap and returns up to k hits.",
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Search an index",
                "operationId": "searchIndex",
                "parameters": [
                    {"type": "string", "example": "handbook", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "example": "refund policy", "description": "Query text", "name": "q", "in": "query", "required": true},
                    {"maximum": 50, "minimum": 1, "type": "integer", "default": 3, "description": "Max hits", "name": "k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchResponse"}},
                    "400": {"description": "Empty query or bad k", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "404": {"description": "Index not found", "schema": {"$ref": "#/definitions/reply.ErrorBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/reply.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Document": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "index": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.AddDocumentsRequest": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/handlers.DocumentInput"}}
            }
        },
        "handlers.AddDocumentsResponse": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.CreateIndexRequest": {
            "type": "object",
            "properties": {
                "name": {"description": "Name is the index slug: lowercase letters, digits, '_' and '-'.", "type": "string", "example": "handbook"},
                "stopwords": {"description": "Stopwords are ignored when ranking documents of this index.", "type": "array", "items": {"type": "string"}, "example": ["the", "a", "of"]}
            }
        },
        "handlers.DocumentInput": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "Refunds are processed within five business days."}
            }
        },
        "handlers.IndexResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "name": {"type": "string", "example": "handbook"},
                "stopwords": {"type": "array", "items": {"type": "string"}},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.ListDocumentsResponse": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/domain.Document"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.ListIndexesResponse": {
            "type": "object",
            "properties": {
                "indexes": {"type": "array", "items": {"$ref": "#/definitions/handlers.IndexResponse"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handlers.SearchResponse": {
            "type": "object",
            "properties": {
                "hits": {"type": "array", "items": {"$ref": "#/definitions/search.Result"}},
                "query": {"type": "string", "example": "refund policy"}
            }
        },
        "reply.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"description": "Stable, machine-readable code", "type": "string", "example": "bad_request"},
                "message": {"description": "Human-readable message (safe to show to users)", "type": "string", "example": "missing field: email"}
            }
        },
        "search.Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "score": {"type": "number"},
                "snippet": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer <HS256 JWT>; required when AUTH_ENABLED is set.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Search Server API",
	Description:      "Index documents and rank them against free-text queries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
