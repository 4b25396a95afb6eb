package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DeKUT Clearance API",
        "description": "Graduation clearance tracking and gown booking",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Staff and student portal login"},
        {"name": "Clearance", "description": "Clearance requests and department decisions"},
        {"name": "Bookings", "description": "Graduation gown bookings"},
        {"name": "Payments", "description": "M-Pesa gown payments"},
        {"name": "Uploads", "description": "Supporting document uploads"},
        {"name": "Settings", "description": "System configuration"}
    ],
    "paths": {
        "/auth/staff/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Staff login",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StaffLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/student/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Student login",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials"},
                    "503": {"description": "Portal under maintenance"}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Clearance"],
                "summary": "Start a clearance request",
                "description": "Idempotent per registration number: a repeat call returns the existing request unchanged.",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Request created"},
                    "200": {"description": "Existing request restored"},
                    "400": {"description": "Validation error"}
                }
            },
            "get": {
                "tags": ["Clearance"],
                "summary": "List clearance requests",
                "parameters": [
                    {"in": "query", "name": "studentId", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["Pending", "Approved", "Rejected"]}
                ],
                "responses": {
                    "200": {"description": "Requests, newest first"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Clearance"],
                "summary": "Get a clearance request",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Request"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Clearance"],
                "summary": "Delete a clearance request (admin)",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/requests/{id}/clearance/{department}": {
            "patch": {
                "tags": ["Clearance"],
                "summary": "Record a department decision",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "department", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/DecisionPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated request with recomputed overall status"},
                    "400": {"description": "Unknown department or status"},
                    "404": {"description": "Request not found"}
                }
            }
        },
        "/requests/{id}/settings": {
            "patch": {
                "tags": ["Clearance"],
                "summary": "Update notification preferences",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AlertSettingsPayload"}}
                ],
                "responses": {
                    "204": {"description": "Saved"}
                }
            }
        },
        "/requests/{id}/certificate": {
            "get": {
                "tags": ["Clearance"],
                "summary": "Download the clearance certificate",
                "produces": ["application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF certificate"},
                    "412": {"description": "Clearance not fully approved"}
                }
            }
        },
        "/requests/export": {
            "get": {
                "tags": ["Clearance"],
                "summary": "Export clearance requests as CSV (admin)",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV report"}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a graduation gown",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateBookingPayload"}}
                ],
                "responses": {
                    "201": {"description": "Booking created"}
                }
            },
            "get": {
                "tags": ["Bookings"],
                "summary": "List gown bookings",
                "parameters": [
                    {"in": "query", "name": "studentId", "type": "string"},
                    {"in": "query", "name": "requestId", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Bookings, newest first"}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get a gown booking",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Booking"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Bookings"],
                "summary": "Update a booking's status or fine (staff)",
                "description": "An unpaid positive fine forces FINE_PENDING; a settled fine clears the booking unless the gown is recorded as returned in the same call.",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateBookingPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated booking"}
                }
            }
        },
        "/payments/gown": {
            "post": {
                "tags": ["Payments"],
                "summary": "Pay for a graduation gown via M-Pesa",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GownPaymentPayload"}}
                ],
                "responses": {
                    "201": {"description": "Paid booking recorded"}
                }
            }
        },
        "/uploads/sign": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Issue a signed upload token",
                "responses": {
                    "201": {"description": "Token with storage path and expiry"}
                }
            }
        },
        "/uploads/{token}": {
            "put": {
                "tags": ["Uploads"],
                "summary": "Upload a clearance document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "path", "name": "token", "type": "string", "required": true},
                    {"in": "formData", "name": "file", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Document stored"}
                }
            }
        },
        "/files/{token}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Download a clearance document",
                "parameters": [
                    {"in": "path", "name": "token", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Document"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get system settings",
                "responses": {
                    "200": {"description": "Settings document"}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update system settings (admin)",
                "responses": {
                    "200": {"description": "Saved settings"}
                }
            }
        }
    },
    "definitions": {
        "StaffLoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "StudentLoginRequest": {
            "type": "object",
            "required": ["regNo", "password"],
            "properties": {
                "regNo": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateRequestPayload": {
            "type": "object",
            "required": ["regNo", "name"],
            "properties": {
                "regNo": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "departments": {"type": "array", "items": {"type": "string"}}
            }
        },
        "DecisionPayload": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Approved", "Rejected"]},
                "remarks": {"type": "string"},
                "staffName": {"type": "string"}
            }
        },
        "AlertSettingsPayload": {
            "type": "object",
            "properties": {
                "emailAlerts": {"type": "boolean"},
                "smsAlerts": {"type": "boolean"}
            }
        },
        "CreateBookingPayload": {
            "type": "object",
            "required": ["requestId", "studentId", "gownType", "gownSize"],
            "properties": {
                "requestId": {"type": "string"},
                "studentId": {"type": "string"},
                "gownType": {"type": "string"},
                "gownSize": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "paymentRef": {"type": "string"}
            }
        },
        "UpdateBookingPayload": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["PENDING", "PAID", "ISSUED", "RETURNED", "FINE_PENDING", "CLEARED"]},
                "fine": {"$ref": "#/definitions/Fine"}
            }
        },
        "Fine": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "reason": {"type": "string"},
                "isPaid": {"type": "boolean"}
            }
        },
        "GownPaymentPayload": {
            "type": "object",
            "required": ["requestId", "phone", "gownType", "gownSize"],
            "properties": {
                "requestId": {"type": "string"},
                "phone": {"type": "string"},
                "gownType": {"type": "string"},
                "gownSize": {"type": "string"}
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
