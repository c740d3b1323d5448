package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registrar API",
        "description": "Academic progress, degree audit and registration eligibility engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Progress", "description": "Transcript, GPA and degree audit"},
        {"name": "Registration", "description": "Registration window configuration"},
        {"name": "Waivers", "description": "Time-conflict waiver workflow"},
        {"name": "Gradebook", "description": "Section grade submission"},
        {"name": "Reports", "description": "Asynchronous transcript and progress exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentID}/transcript": {
            "get": {
                "tags": ["Progress"],
                "summary": "Student transcript",
                "parameters": [
                    {"name": "studentID", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentID}/gpa": {
            "get": {
                "tags": ["Progress"],
                "summary": "Credit and GPA summary",
                "parameters": [
                    {"name": "studentID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentID}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Full progress report with requirement categories",
                "parameters": [
                    {"name": "studentID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentID}/degree-audit": {
            "get": {
                "tags": ["Progress"],
                "summary": "Degree requirement audit",
                "parameters": [
                    {"name": "studentID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentID}/registration-window": {
            "get": {
                "tags": ["Progress"],
                "summary": "Resolve the student's registration window",
                "parameters": [
                    {"name": "studentID", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "standing", "in": "query", "required": true, "type": "string", "enum": ["U1", "U2", "U3", "U4"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{termID}/registration-windows": {
            "get": {
                "tags": ["Registration"],
                "summary": "List a term's registration windows",
                "parameters": [
                    {"name": "termID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Registration"],
                "summary": "Replace a term's registration windows",
                "parameters": [
                    {"name": "termID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceWindowsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/waivers": {
            "post": {
                "tags": ["Waivers"],
                "summary": "Submit a time-conflict waiver",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWaiverRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Waivers"],
                "summary": "List waivers",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "state", "in": "query", "type": "string", "enum": ["PENDING", "FULLY_APPROVED", "DENIED"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/waivers/{id}": {
            "get": {
                "tags": ["Waivers"],
                "summary": "Get one waiver with its derived state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/waivers/{id}/approve": {
            "post": {
                "tags": ["Waivers"],
                "summary": "Record one party's approval",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideWaiverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Waiver already denied"}
                }
            }
        },
        "/waivers/{id}/deny": {
            "post": {
                "tags": ["Waivers"],
                "summary": "Record a terminal denial",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideWaiverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already denied or fully approved"}
                }
            }
        },
        "/sections/{sectionID}/grades": {
            "get": {
                "tags": ["Gradebook"],
                "summary": "Section roster with current grades",
                "parameters": [
                    {"name": "sectionID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Gradebook"],
                "summary": "Submit final grades for a section (atomic)",
                "parameters": [
                    {"name": "sectionID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Submission rejected"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Request a transcript or progress export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ReplaceWindowsRequest": {
            "type": "object",
            "properties": {
                "windows": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WindowUpsertItem"}
                }
            },
            "required": ["windows"]
        },
        "WindowUpsertItem": {
            "type": "object",
            "properties": {
                "class_standing": {"type": "string", "enum": ["U1", "U2", "U3", "U4"]},
                "credit_threshold": {"type": "string", "enum": ["100+", "below100"]},
                "starts_at": {"type": "string", "format": "date-time"}
            },
            "required": ["class_standing", "starts_at"]
        },
        "CreateWaiverRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "first_class": {"$ref": "#/definitions/ClassReference"},
                "second_class": {"$ref": "#/definitions/ClassReference"}
            },
            "required": ["student_id", "first_class", "second_class"]
        },
        "ClassReference": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "course_number": {"type": "string"},
                "section_id": {"type": "string"},
                "term_id": {"type": "string"}
            },
            "required": ["subject", "course_number", "section_id", "term_id"]
        },
        "DecideWaiverRequest": {
            "type": "object",
            "properties": {
                "party": {"type": "string", "enum": ["INSTRUCTOR1", "INSTRUCTOR2", "ADVISOR"]}
            },
            "required": ["party"]
        },
        "BulkGradeRequest": {
            "type": "object",
            "properties": {
                "changes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeChange"}
                }
            },
            "required": ["changes"]
        },
        "GradeChange": {
            "type": "object",
            "properties": {
                "entry_id": {"type": "string"},
                "grade": {"type": "string"}
            },
            "required": ["entry_id", "grade"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["transcript", "progress"]},
                "student_id": {"type": "string"},
                "term_id": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "student_id", "format"]
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
