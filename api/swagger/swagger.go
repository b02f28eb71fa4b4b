package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Free Learning API",
        "description": "Unit browsing, enrolment lifecycle and unit editing for the Free Learning programme",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login and session introspection"},
        {"name": "Units", "description": "Unit editing"},
        {"name": "Enrolments", "description": "Enrolment lifecycle and unit history"},
        {"name": "Review", "description": "Evidence and enrolment review queues"},
        {"name": "Browse", "description": "Cached class/unit listings"},
        {"name": "Mentoring", "description": "Mentor and collaborator candidates"},
        {"name": "Reports", "description": "Unit history exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current token claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Claims", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/units/{id}": {
            "put": {
                "tags": ["Units"],
                "summary": "Edit a unit",
                "description": "Full-replacement edit: scalar fields, ordered outcomes, ordered blocks and an optional logo. Steps commit independently; per-step failures are reported with HTTP 207.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Edit applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Edit partially applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unit not found or outside scope"},
                    "423": {"description": "Unit is locked for editing"}
                }
            }
        },
        "/units/{id}/students": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "Students enrolled in a unit, scoped to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "schoolYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Enrolment rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/units/{id}/enrolment": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "One enrolment with person context",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "personId", "in": "query", "type": "string"},
                    {"name": "enrolmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Enrolment detail", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/units/{id}/mentors": {
            "get": {
                "tags": ["Mentoring"],
                "summary": "Eligible school mentors for a unit",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Mentor candidates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/units/{id}/collaborator-candidates": {
            "get": {
                "tags": ["Mentoring"],
                "summary": "People a student can invite as collaborators",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "schoolYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "type": "string", "default": "Student"}
                ],
                "responses": {
                    "200": {"description": "Collaborator candidates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/units": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "A student's unit history",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "History rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/learning-areas": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "Learning areas a student has worked in",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Learning areas", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/units/export": {
            "post": {
                "tags": ["Reports"],
                "summary": "Export a student's unit history as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Signed download link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Exports disabled"}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download an export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File contents"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/classes/{id}/units": {
            "get": {
                "tags": ["Browse"],
                "summary": "Class roster paired with active unit enrolments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "schoolYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "sortBy", "in": "query", "type": "string", "enum": ["student", "unit"]}
                ],
                "responses": {
                    "200": {"description": "Roster rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrolments": {
            "post": {
                "tags": ["Enrolments"],
                "summary": "Enrol a student in a unit",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Enrolment created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/enrolments/{id}/evidence": {
            "post": {
                "tags": ["Enrolments"],
                "summary": "Submit completion evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Evidence recorded"},
                    "409": {"description": "Status cannot move backwards"}
                }
            }
        },
        "/enrolments/{id}/review": {
            "post": {
                "tags": ["Review"],
                "summary": "Record a review decision",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Decision recorded"},
                    "409": {"description": "Status cannot move backwards"}
                }
            }
        },
        "/enrolments/{id}/discussion": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "Comment thread of an enrolment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Discussion entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/evidence": {
            "get": {
                "tags": ["Review"],
                "summary": "Evidence submissions awaiting review",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "schoolYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "reviewerId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Pending rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/enrolments": {
            "get": {
                "tags": ["Review"],
                "summary": "Mentor enrolment requests awaiting confirmation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "schoolYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "mentorId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Pending rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collaborations/{key}": {
            "get": {
                "tags": ["Enrolments"],
                "summary": "Enrolments sharing a collaboration key",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Collaborating enrolments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"}
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
