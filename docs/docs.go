// Package docs holds the Swagger document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
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
                "description": "Check if the API and its store are reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/periods": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Declare salary and category limits for a month. A later declaration for the same month replaces the active one.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["periods"],
                "summary": "Open a budget period",
                "parameters": [
                    {"description": "Budget declaration", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.OpenPeriodInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.ActivePeriod"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/periods/{year}/{month}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Active budget, per-category balances, remaining salary and total savings",
                "produces": ["application/json"],
                "tags": ["periods"],
                "summary": "Get month overview",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LedgerOverview"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/periods/{year}/{month}/remaining": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Active salary minus everything spent in the month; zero when no budget is configured",
                "produces": ["application/json"],
                "tags": ["periods"],
                "summary": "Get remaining salary",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RemainingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/savings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Savings summed over every budget period of the user",
                "produces": ["application/json"],
                "tags": ["periods"],
                "summary": "Get total savings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SavingsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest first. Defaults to the current month.",
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List expenses of a month",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query"},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Expense"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Charge an expense to the month it was logged in, cascading into other categories and savings when needed",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Log an expense",
                "parameters": [
                    {"description": "Expense data", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.LogExpenseInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.LoggedExpense"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "No budget configured for the month", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/expenses/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Remove an expense and credit its amount back to its category",
                "tags": ["expenses"],
                "summary": "Delete an expense",
                "parameters": [
                    {"type": "string", "description": "Expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "handler.RemainingResponse": {
            "type": "object",
            "properties": {
                "period": {"$ref": "#/definitions/model.PeriodKey"},
                "remainingSalary": {"type": "string", "example": "1250.00"}
            }
        },
        "handler.SavingsResponse": {
            "type": "object",
            "properties": {
                "totalSavings": {"type": "string", "example": "4200.00"}
            }
        },
        "ledger.Draw": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "category": {"type": "string", "enum": ["mandatory", "basic_needs", "sudden_expense"]}
            }
        },
        "ledger.Plan": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "category": {"type": "string", "enum": ["mandatory", "basic_needs", "sudden_expense"]},
                "draws": {"type": "array", "items": {"$ref": "#/definitions/ledger.Draw"}},
                "fromSavings": {"type": "string"}
            }
        },
        "model.ActivePeriod": {
            "type": "object",
            "properties": {
                "period": {"$ref": "#/definitions/model.BudgetPeriod"},
                "summary": {"$ref": "#/definitions/model.BudgetSummary"}
            }
        },
        "model.BudgetPeriod": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "userId": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "actualSalary": {"type": "string"},
                "activeSalary": {"type": "string"},
                "mandatoryLimit": {"type": "string"},
                "basicNeedsLimit": {"type": "string"},
                "suddenExpensesLimit": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "model.BudgetSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "periodId": {"type": "integer"},
                "userId": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "mandatorySpent": {"type": "string"},
                "basicNeedsSpent": {"type": "string"},
                "suddenSpent": {"type": "string"},
                "savings": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.CategoryBalance": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "label": {"type": "string"},
                "limit": {"type": "string"},
                "spent": {"type": "string"},
                "remaining": {"type": "string"}
            }
        },
        "model.Expense": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "amount": {"type": "string"},
                "attachmentUrl": {"type": "string"},
                "loggedAt": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "model.LedgerOverview": {
            "type": "object",
            "properties": {
                "period": {"$ref": "#/definitions/model.PeriodKey"},
                "configured": {"type": "boolean"},
                "budget": {"$ref": "#/definitions/model.BudgetPeriod"},
                "summary": {"$ref": "#/definitions/model.BudgetSummary"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/model.CategoryBalance"}},
                "remainingSalary": {"type": "string"},
                "totalSavings": {"type": "string"}
            }
        },
        "model.PeriodKey": {
            "type": "object",
            "properties": {
                "month": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "service.LogExpenseInput": {
            "type": "object",
            "required": ["amount", "category"],
            "properties": {
                "category": {"type": "string", "enum": ["mandatory", "basic_needs", "sudden_expense"]},
                "description": {"type": "string", "maxLength": 255},
                "amount": {"type": "string", "example": "42.50"},
                "attachmentUrl": {"type": "string"},
                "loggedAt": {"type": "string", "example": "2025-03-14"}
            }
        },
        "service.LoggedExpense": {
            "type": "object",
            "properties": {
                "expense": {"$ref": "#/definitions/model.Expense"},
                "allocation": {"$ref": "#/definitions/ledger.Plan"}
            }
        },
        "service.OpenPeriodInput": {
            "type": "object",
            "required": ["month", "year"],
            "properties": {
                "month": {"type": "integer", "minimum": 1, "maximum": 12},
                "year": {"type": "integer", "minimum": 1},
                "actualSalary": {"type": "string", "example": "3000.00"},
                "mandatoryLimit": {"type": "string"},
                "basicNeedsLimit": {"type": "string"},
                "suddenExpensesLimit": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Family Budget API",
	Description:      "Monthly family budgeting with cascading category allocation and savings tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
