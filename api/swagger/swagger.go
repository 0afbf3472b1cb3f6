package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bloomcove Booking API",
        "description": "Recurring availability, calendar projection and conflict-checked bookings for wellness studios.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Projected calendar and day views"},
        {"name": "Slots", "description": "Recurring availability slot management"},
        {"name": "Bookings", "description": "Booking lifecycle"},
        {"name": "Staff", "description": "Practitioner roster"},
        {"name": "Offerings", "description": "Service catalogue"},
        {"name": "Reports", "description": "Asynchronous exports"}
    ],
    "paths": {
        "/availability/calendar": {
            "get": {
                "tags": ["Availability"],
                "summary": "Projected availability calendar",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "required": true},
                    {"name": "to", "in": "query", "type": "string", "required": true},
                    {"name": "staffId", "in": "query", "type": "string"},
                    {"name": "offeringId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/day": {
            "get": {
                "tags": ["Availability"],
                "summary": "Single day availability with busy intervals",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "staffId", "in": "query", "type": "string"},
                    {"name": "offeringId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{id}/next-occurrence": {
            "get": {
                "tags": ["Availability"],
                "summary": "Next date a slot is active",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List availability slots",
                "parameters": [
                    {"name": "staffId", "in": "query", "type": "string"},
                    {"name": "scheduleType", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Slots"],
                "summary": "Create availability slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{id}": {
            "get": {
                "tags": ["Slots"],
                "summary": "Get slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Slots"],
                "summary": "Update slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Slots"],
                "summary": "Deactivate slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "staffId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Create booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/confirm": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Confirm booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Cancel booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/reschedule": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Reschedule booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/status/{id}": {
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
                    "200": {"description": "File stream"}
                }
            }
        }
    },
    "definitions": {
        "CreateSlotRequest": {
            "type": "object",
            "properties": {
                "staffId": {"type": "string"},
                "scheduleType": {"type": "string", "enum": ["one_time", "weekly", "biweekly", "monthly"]},
                "weekday": {"type": "integer"},
                "biweeklyGroup": {"type": "string", "enum": ["first_third", "second_fourth"]},
                "skipFifthWeek": {"type": "boolean"},
                "monthlyOccurrence": {"type": "string", "enum": ["first", "second", "third", "fourth", "last"]},
                "specificDate": {"type": "string"},
                "recurrenceEndDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "bufferMinutes": {"type": "integer"},
                "appointmentOnly": {"type": "boolean"},
                "offeringIds": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["staffId", "scheduleType", "startTime", "endTime"]
        },
        "UpdateSlotRequest": {
            "type": "object",
            "properties": {
                "scheduleType": {"type": "string", "enum": ["one_time", "weekly", "biweekly", "monthly"]},
                "weekday": {"type": "integer"},
                "biweeklyGroup": {"type": "string", "enum": ["first_third", "second_fourth"]},
                "skipFifthWeek": {"type": "boolean"},
                "monthlyOccurrence": {"type": "string", "enum": ["first", "second", "third", "fourth", "last"]},
                "specificDate": {"type": "string"},
                "recurrenceEndDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "bufferMinutes": {"type": "integer"},
                "appointmentOnly": {"type": "boolean"},
                "offeringIds": {"type": "array", "items": {"type": "string"}},
                "active": {"type": "boolean"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "properties": {
                "slotId": {"type": "string"},
                "offeringId": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "clientName": {"type": "string"},
                "clientEmail": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["slotId", "offeringId", "date", "startTime", "clientName", "clientEmail"]
        },
        "RescheduleBookingRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "startTime": {"type": "string"}
            },
            "required": ["date", "startTime"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["bookings", "schedule", "summary"]},
                "dateFrom": {"type": "string"},
                "dateTo": {"type": "string"},
                "staffId": {"type": "string"},
                "offeringId": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "dateFrom", "dateTo", "format"]
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
