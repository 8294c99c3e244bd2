// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/efintrack/main.go -o cmd/docs
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
        "/accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"type": "string", "description": "Account kind", "name": "kind", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"$ref": "#/responses/error"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Open an account",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"description": "Account details", "name": "account", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"$ref": "#/responses/error"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/accounts/{accountID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/accountID"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            },
            "delete": {
                "tags": ["accounts"],
                "summary": "Soft delete an account",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/accountID"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/accounts/{accountID}/balance": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get the stored balance of an account",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/accountID"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/accounts/{accountID}/movements": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List movements of an account",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/accountID"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/accounts/{accountID}/verify": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Compare the stored balance with the sum of movements",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/accountID"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/movements/{movementID}/reverse": {
            "post": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Post the compensating movement of a movement",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"type": "string", "description": "Movement ID", "name": "movementID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"$ref": "#/responses/error"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "List requests",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Create a request",
                "parameters": [
                    {"$ref": "#/parameters/actor"},
                    {"description": "Request details", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"$ref": "#/responses/error"}
                }
            }
        },
        "/requests/{ref}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Get a request",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Update a request before validation",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/requests/{ref}/validate": {
            "post": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Validate a request",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"$ref": "#/responses/error"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "List statements",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Open a statement",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Get a statement",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}/members": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Attach requests to a statement",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}/recompute": {
            "post": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Recompute statement totals from its members",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}/seal": {
            "post": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Seal a statement",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}/expense-lines": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "List the expense lines of a sealed statement",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/statements/{number}/cheque": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Issue a cheque for a sealed statement",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/cheques/{number}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Get a cheque",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/cheques/{number}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Move a cheque through its lifecycle",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/number"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/payments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "List payments",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Pay a validated request",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/payments/{ref}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Get a payment",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/payments/{ref}/reverse": {
            "post": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Reverse a payment",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/receipts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "List receipts",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Record a receipt",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/receipts/{ref}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Get a receipt",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Soft delete a receipt",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/receipts/{ref}/validate": {
            "post": {
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Validate a receipt",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/receipts/{ref}/unvalidate": {
            "post": {
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Return a validated receipt to pending",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/ref"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/closings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "List closings",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/closings/current": {
            "get": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "Get or open the closing of the current period",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/closings/{period}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "Get the closing of a period",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/period"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"$ref": "#/responses/error"}
                }
            }
        },
        "/closings/{period}/compute": {
            "post": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "Recompute the balances of an open period",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/period"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/closings/{period}/close": {
            "post": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "Close the current period",
                "parameters": [{"$ref": "#/parameters/actor"}, {"$ref": "#/parameters/period"}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"$ref": "#/responses/error"}
                }
            }
        },
        "/journal": {
            "get": {
                "produces": ["application/json"],
                "tags": ["closings"],
                "summary": "List journal entries",
                "parameters": [{"$ref": "#/parameters/actor"}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "parameters": {
        "actor": {"type": "string", "description": "Acting user", "name": "X-Actor-ID", "in": "header", "required": true},
        "accountID": {"type": "string", "description": "Account ID", "name": "accountID", "in": "path", "required": true},
        "ref": {"type": "string", "description": "Reference", "name": "ref", "in": "path", "required": true},
        "number": {"type": "string", "description": "Number", "name": "number", "in": "path", "required": true},
        "period": {"type": "string", "description": "Period as YYYY-MM", "name": "period", "in": "path", "required": true}
    },
    "responses": {
        "error": {"description": "Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "reason": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "e-FinTrack API",
	Description:      "Ledger kernel for expense requests, statements, payments, receipts and monthly closings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
