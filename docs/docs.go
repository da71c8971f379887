// Package docs holds the OpenAPI description served at /swagger/.
// Keep it in step with the handler annotations (swag init -g cmd/pos-admin-platform/main.go).
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
        "/auth/login": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Log in a staff member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Login successful",
                        "schema": {
                            "$ref": "#/definitions/models.LoginResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials"
                    },
                    "429": {
                        "description": "Too many attempts"
                    }
                },
                "parameters": [
                    {
                        "name": "credentials",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.LoginRequest"
                        }
                    }
                ]
            }
        },
        "/auth/profile": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current staff profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Profile",
                        "schema": {
                            "$ref": "#/definitions/models.Staff"
                        }
                    },
                    "401": {
                        "description": "Authentication required",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
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
        "/staff": {
            "post": {
                "tags": [
                    "Staff"
                ],
                "summary": "Onboard a staff member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Staff created",
                        "schema": {
                            "$ref": "#/definitions/models.Staff"
                        }
                    },
                    "403": {
                        "description": "Not allowed",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "staff",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CreateStaffRequest"
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
        "/catalog": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Search the shop catalog",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Matching products",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Product"
                            }
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/catalog/categories": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List catalog categories",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Categories",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Category"
                            }
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/catalog/cache": {
            "delete": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Drop the cached catalog",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Admins only",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/registers": {
            "post": {
                "tags": [
                    "Registers"
                ],
                "summary": "Open a register",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this shop",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "register",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/models.OpenRegisterRequest"
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
        "/registers/{id}": {
            "get": {
                "tags": [
                    "Registers"
                ],
                "summary": "Get a register",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "404": {
                        "description": "Register not found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
            "delete": {
                "tags": [
                    "Registers"
                ],
                "summary": "Close a register",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Register not found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
        "/registers/{id}/items": {
            "post": {
                "tags": [
                    "Registers"
                ],
                "summary": "Add a product to the cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "409": {
                        "description": "Checkout in progress",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "item",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.AddItemRequest"
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
                    "Registers"
                ],
                "summary": "Empty the cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "409": {
                        "description": "Checkout in progress",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
        "/registers/{id}/items/{productId}": {
            "put": {
                "tags": [
                    "Registers"
                ],
                "summary": "Change a line quantity",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "404": {
                        "description": "Line not found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "productId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "quantity",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.UpdateQuantityRequest"
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
                    "Registers"
                ],
                "summary": "Remove a line from the cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "productId",
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
        "/registers/{id}/items/{productId}/discount": {
            "put": {
                "tags": [
                    "Registers"
                ],
                "summary": "Discount one line",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "productId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "discount",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.DiscountRequest"
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
        "/registers/{id}/discount": {
            "put": {
                "tags": [
                    "Registers"
                ],
                "summary": "Discount the whole cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "discount",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.DiscountRequest"
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
        "/registers/{id}/checkout": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Open checkout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "400": {
                        "description": "Cart is empty",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Checkout already open",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
            "delete": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Cancel checkout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    },
                    "409": {
                        "description": "Invoice being created",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
        "/registers/{id}/checkout/method": {
            "put": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Choose the payment method",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "method",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.PaymentMethodRequest"
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
        "/registers/{id}/checkout/tender": {
            "put": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Enter the cash tendered",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Tender result",
                        "schema": {
                            "$ref": "#/definitions/models.TenderResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "tender",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.TenderRequest"
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
        "/registers/{id}/checkout/customer": {
            "put": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Attach a customer to the sale",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Register",
                        "schema": {
                            "$ref": "#/definitions/models.RegisterView"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "customer",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.AttachCustomerRequest"
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
        "/registers/{id}/checkout/complete": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Complete the sale",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Invoice and register",
                        "schema": {
                            "$ref": "#/definitions/models.CompleteCheckoutResponse"
                        }
                    },
                    "422": {
                        "description": "Tendered amount below total",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
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
        "/customers": {
            "post": {
                "tags": [
                    "Customers"
                ],
                "summary": "Register a customer",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Customer created",
                        "schema": {
                            "$ref": "#/definitions/models.Customer"
                        }
                    },
                    "409": {
                        "description": "Contact already registered",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "customer",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CreateCustomerRequest"
                        }
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
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
                    "Customers"
                ],
                "summary": "Look up a customer by contact",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Customer",
                        "schema": {
                            "$ref": "#/definitions/models.Customer"
                        }
                    },
                    "404": {
                        "description": "Customer not found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "contact",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/invoices": {
            "get": {
                "tags": [
                    "Invoices"
                ],
                "summary": "List the shop's invoices",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Invoices",
                        "schema": {
                            "$ref": "#/definitions/models.PaginatedResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/invoices/{id}": {
            "get": {
                "tags": [
                    "Invoices"
                ],
                "summary": "Get an invoice",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Invoice",
                        "schema": {
                            "$ref": "#/definitions/models.Invoice"
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "$ref": "#/definitions/response.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "shop_id",
                        "in": "query"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/invoices/{id}/receipt": {
            "post": {
                "tags": [
                    "Invoices"
                ],
                "summary": "Email a receipt again",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Receipt sent",
                        "schema": {
                            "$ref": "#/definitions/models.Notification"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "receipt",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.ResendReceiptRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "token": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer"
                },
                "remaining_tries": {
                    "type": "integer"
                },
                "retry_after": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "models.Staff": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.CreateStaffRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "enum": [
                        "vendor_admin",
                        "cashier"
                    ]
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "category_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "sku": {
                    "type": "string"
                },
                "barcode": {
                    "type": "string"
                },
                "price": {
                    "type": "string"
                },
                "stock_quantity": {
                    "type": "integer"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "models.OpenRegisterRequest": {
            "type": "object",
            "properties": {
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "models.AddItemRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                }
            }
        },
        "models.UpdateQuantityRequest": {
            "type": "object",
            "properties": {
                "quantity": {
                    "type": "integer"
                }
            }
        },
        "models.DiscountRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                }
            }
        },
        "models.PaymentMethodRequest": {
            "type": "object",
            "properties": {
                "method": {
                    "type": "string",
                    "enum": [
                        "cash",
                        "card",
                        "other"
                    ]
                }
            }
        },
        "models.TenderRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                }
            }
        },
        "models.AttachCustomerRequest": {
            "type": "object",
            "properties": {
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "models.CartLineView": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "sku": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "discount": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                }
            }
        },
        "models.TotalsView": {
            "type": "object",
            "properties": {
                "subtotal": {
                    "type": "string"
                },
                "tax": {
                    "type": "string"
                },
                "discount": {
                    "type": "string"
                },
                "total": {
                    "type": "string"
                }
            }
        },
        "models.CheckoutView": {
            "type": "object",
            "properties": {
                "state": {
                    "type": "string",
                    "enum": [
                        "idle",
                        "awaiting_payment_method",
                        "awaiting_amount",
                        "processing",
                        "completed"
                    ]
                },
                "method": {
                    "type": "string"
                },
                "tender": {
                    "type": "string"
                },
                "change": {
                    "type": "string"
                },
                "can_complete": {
                    "type": "boolean"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "last_invoice_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "models.RegisterView": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "cashier_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.CartLineView"
                    }
                },
                "totals": {
                    "$ref": "#/definitions/models.TotalsView"
                },
                "checkout": {
                    "$ref": "#/definitions/models.CheckoutView"
                },
                "opened_at": {
                    "type": "string"
                }
            }
        },
        "models.TenderResponse": {
            "type": "object",
            "properties": {
                "accepted": {
                    "type": "boolean"
                },
                "register": {
                    "$ref": "#/definitions/models.RegisterView"
                }
            }
        },
        "models.InvoiceLine": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "sku": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "discount": {
                    "type": "string"
                },
                "line_total": {
                    "type": "string"
                }
            }
        },
        "models.Invoice": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "register_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "cashier_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.InvoiceLine"
                    }
                },
                "subtotal": {
                    "type": "string"
                },
                "tax": {
                    "type": "string"
                },
                "discount": {
                    "type": "string"
                },
                "total": {
                    "type": "string"
                },
                "payment_method": {
                    "type": "string"
                },
                "tendered": {
                    "type": "string"
                },
                "change": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "models.CompleteCheckoutResponse": {
            "type": "object",
            "properties": {
                "invoice": {
                    "$ref": "#/definitions/models.Invoice"
                },
                "register": {
                    "$ref": "#/definitions/models.RegisterView"
                }
            }
        },
        "models.CreateCustomerRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "contact": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                }
            }
        },
        "models.Customer": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "shop_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "contact": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.ResendReceiptRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                }
            }
        },
        "models.Notification": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "type": {
                    "type": "string"
                },
                "recipient": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "sent_at": {
                    "type": "string"
                }
            }
        },
        "models.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "pageSize": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
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
	Title:            "POS Admin Platform API",
	Description:      "Registers, carts, checkout and invoices for multi-shop point of sale.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
