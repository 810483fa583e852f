// Package docs registers the swagger document served under /swagger.
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
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a student account",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Sign in",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Clear the session cookie",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				}
			}
		},
		"/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/users/faculty": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "Users who may be chosen as faculty in charge",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/users/{uuid}/role": {
			"put": {
				"tags": [
					"users"
				],
				"summary": "Change a user's role (admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/low-stock": {
			"get": {
				"tags": [
					"inventory"
				],
				"summary": "Items below 10% of total across categories",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/chemical/cas": {
			"get": {
				"tags": [
					"inventory"
				],
				"summary": "Look up a chemical by CAS number",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/{type}": {
			"post": {
				"tags": [
					"inventory"
				],
				"summary": "Create an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"inventory"
				],
				"summary": "List items of a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/{type}/export": {
			"get": {
				"tags": [
					"inventory"
				],
				"summary": "Export a category as xlsx",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/{type}/{uuid}": {
			"get": {
				"tags": [
					"inventory"
				],
				"summary": "Get an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"patch": {
				"tags": [
					"inventory"
				],
				"summary": "Update an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"inventory"
				],
				"summary": "Delete an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inventory/{type}/{uuid}/adjust": {
			"patch": {
				"tags": [
					"inventory"
				],
				"summary": "Correct available stock (admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests": {
			"post": {
				"tags": [
					"requests"
				],
				"summary": "Submit a request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"requests"
				],
				"summary": "List requests",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{uuid}": {
			"get": {
				"tags": [
					"requests"
				],
				"summary": "Get a request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{uuid}/approve": {
			"post": {
				"tags": [
					"requests"
				],
				"summary": "Approve a pending request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{uuid}/reject": {
			"post": {
				"tags": [
					"requests"
				],
				"summary": "Reject a pending request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{uuid}/issue": {
			"post": {
				"tags": [
					"requests"
				],
				"summary": "Issue an approved request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/issued": {
			"get": {
				"tags": [
					"issued"
				],
				"summary": "List issued items",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/issued/{uuid}/return": {
			"post": {
				"tags": [
					"issued"
				],
				"summary": "Return an issued item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "uuid",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/activity": {
			"get": {
				"tags": [
					"activity"
				],
				"summary": "List activity logs",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"activity"
				],
				"summary": "Prune activity logs (admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/events": {
			"get": {
				"tags": [
					"events"
				],
				"summary": "Server-sent workflow events",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/common.Resp"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"common.Resp": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"data": {},
				"error": {
					"type": "object",
					"properties": {
						"msg": {
							"type": "string"
						}
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
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
	Title:            "labinv API",
	Description:      "Lab inventory requests, approvals, issuance and returns.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
