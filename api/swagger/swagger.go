package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TalentBridge Match API",
        "description": "Student-listing matching engine: scored recommendations, score cache, recomputation queue",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Recommendations", "description": "Ranked matches and score explanations"},
        {"name": "Events", "description": "Upstream change notifications"},
        {"name": "SkillMappings", "description": "Athletic skill transfer administration"},
        {"name": "Admin", "description": "Statistics, exports and queue inspection"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/api/v1/students/{id}/recommendations": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Ranked listing recommendations for a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/api/v1/students/{id}/recommendations/{listingId}": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Score breakdown for one student and listing pair",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "listingId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student or listing"}
                }
            }
        },
        "/api/v1/listings/{id}/candidates": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Skill-ranked student candidates for a listing",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown listing"}
                }
            }
        },
        "/api/v1/internal/events": {
            "post": {
                "tags": ["Events"],
                "summary": "Notify the engine of an upstream data change",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeEvent"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid event"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Engine statistics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/admin/stats/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export engine statistics",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/api/v1/admin/queue": {
            "get": {
                "tags": ["Admin"],
                "summary": "Inspect recomputation queue entries",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "PROCESSING", "PROCESSED", "DEAD_LETTER"]},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/skill-mappings": {
            "get": {
                "tags": ["SkillMappings"],
                "summary": "List athletic skill mappings",
                "parameters": [
                    {"name": "sport", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SkillMappings"],
                "summary": "Create an athletic skill mapping",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertSkillMappingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/api/v1/admin/skill-mappings/{id}": {
            "put": {
                "tags": ["SkillMappings"],
                "summary": "Update an athletic skill mapping",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertSkillMappingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown mapping"}
                }
            }
        }
    },
    "definitions": {
        "ChangeEvent": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["profile-updated", "listing-updated", "outcome-changed", "feedback-created"]},
                "student_id": {"type": "string"},
                "listing_id": {"type": "string"}
            }
        },
        "UpsertSkillMappingRequest": {
            "type": "object",
            "required": ["sport", "professional_skill", "skill_category"],
            "properties": {
                "sport": {"type": "string"},
                "position": {"type": "string"},
                "professional_skill": {"type": "string"},
                "transfer_strength": {"type": "number", "minimum": 0, "maximum": 1},
                "skill_category": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
