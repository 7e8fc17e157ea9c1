// Package docs holds the OpenAPI description served under /swagger and
// /api/schema. Keep it in step with internal/router when routes change.
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
        "/auth/token/login/": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Obtain an auth token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    }
                }
            }
        },
        "/auth/token/logout/": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Revoke the current token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "List users",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controller.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "results": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/controller.UserResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Register a user",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/controller.CreatedUserResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    }
                }
            }
        },
        "/users/me/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Current user",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.UserResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/set_password/": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Change password",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.SetPasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/me/avatar/": {
            "put": {
                "tags": [
                    "users"
                ],
                "summary": "Upload avatar as a base64 data URI",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.AvatarRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.AvatarResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "413": {
                        "description": "Request body too large",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "users"
                ],
                "summary": "Remove avatar",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/subscriptions/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Authors the user follows",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Recipes shown per author",
                        "name": "recipes_limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controller.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "results": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/controller.UserWithRecipesResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/{id}/": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "User profile",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.UserResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/users/{id}/subscribe/": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Follow an author",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Recipes shown for the author",
                        "name": "recipes_limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/controller.UserWithRecipesResponse"
                        }
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "users"
                ],
                "summary": "Unfollow an author",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/tags/": {
            "get": {
                "tags": [
                    "tags"
                ],
                "summary": "List tags",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/model.Tag"
                            }
                        }
                    }
                }
            }
        },
        "/tags/{id}/": {
            "get": {
                "tags": [
                    "tags"
                ],
                "summary": "Get a tag",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.Tag"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/ingredients/": {
            "get": {
                "tags": [
                    "ingredients"
                ],
                "summary": "List ingredients",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name prefix, case insensitive",
                        "name": "name",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Fuzzy name search",
                        "name": "search",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/model.Ingredient"
                            }
                        }
                    }
                }
            }
        },
        "/ingredients/{id}/": {
            "get": {
                "tags": [
                    "ingredients"
                ],
                "summary": "Get an ingredient",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.Ingredient"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "List recipes",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Author id",
                        "name": "author",
                        "in": "query"
                    },
                    {
                        "type": "array",
                        "description": "Tag slugs, any match",
                        "name": "tags",
                        "in": "query",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "type": "integer",
                        "description": "1 to show favorites only",
                        "name": "is_favorited",
                        "in": "query",
                        "enum": [
                            0,
                            1
                        ]
                    },
                    {
                        "type": "integer",
                        "description": "1 to show the cart only",
                        "name": "is_in_shopping_cart",
                        "in": "query",
                        "enum": [
                            0,
                            1
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controller.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "results": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/controller.RecipeResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Create a recipe",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/download_shopping_cart/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Download the shopping list",
                "produces": [
                    "text/plain",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Output format",
                        "name": "format",
                        "in": "query",
                        "enum": [
                            "txt",
                            "xlsx"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Attachment",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/{id}/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Get a recipe",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "recipes"
                ],
                "summary": "Update a recipe",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.FieldErrors"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "403": {
                        "description": "Only the author may change the recipe",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Delete a recipe",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "403": {
                        "description": "Only the author may change the recipe",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/{id}/get-link/": {
            "get": {
                "tags": [
                    "recipes"
                ],
                "summary": "Short link to a recipe",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controller.ShortLinkResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/{id}/favorite/": {
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Add to favorites",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeMinifiedResponse"
                        }
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Remove from favorites",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        },
        "/recipes/{id}/shopping_cart/": {
            "post": {
                "tags": [
                    "recipes"
                ],
                "summary": "Add to the shopping cart",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/controller.RecipeMinifiedResponse"
                        }
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "recipes"
                ],
                "summary": "Remove from the shopping cart",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "TokenAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Object id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Relation already exists or is missing",
                        "schema": {
                            "$ref": "#/definitions/errors.RelationErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credentials were not provided",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/errors.DetailResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "controller.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "controller.LoginResponse": {
            "type": "object",
            "properties": {
                "auth_token": {
                    "type": "string"
                }
            }
        },
        "controller.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "maxLength": 254
                },
                "username": {
                    "type": "string",
                    "maxLength": 150,
                    "pattern": "^[\\w.@+-]+$"
                },
                "first_name": {
                    "type": "string",
                    "maxLength": 150
                },
                "last_name": {
                    "type": "string",
                    "maxLength": 150
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "username",
                "first_name",
                "last_name",
                "password"
            ]
        },
        "controller.CreatedUserResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "email": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                }
            }
        },
        "controller.SetPasswordRequest": {
            "type": "object",
            "properties": {
                "new_password": {
                    "type": "string"
                },
                "current_password": {
                    "type": "string"
                }
            },
            "required": [
                "new_password",
                "current_password"
            ]
        },
        "controller.AvatarRequest": {
            "type": "object",
            "properties": {
                "avatar": {
                    "type": "string",
                    "example": "data:image/png;base64,iVBORw0KGgo..."
                }
            },
            "required": [
                "avatar"
            ]
        },
        "controller.AvatarResponse": {
            "type": "object",
            "properties": {
                "avatar": {
                    "type": "string"
                }
            }
        },
        "controller.UserResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "email": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "is_subscribed": {
                    "type": "boolean"
                },
                "avatar": {
                    "type": "string",
                    "x-nullable": true
                }
            }
        },
        "controller.RecipeMinifiedResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "image": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            }
        },
        "controller.UserWithRecipesResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "email": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "is_subscribed": {
                    "type": "boolean"
                },
                "avatar": {
                    "type": "string",
                    "x-nullable": true
                },
                "recipes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/controller.RecipeMinifiedResponse"
                    }
                },
                "recipes_count": {
                    "type": "integer"
                }
            }
        },
        "controller.RecipeIngredientResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "measurement_unit": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                }
            }
        },
        "controller.RecipeResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Tag"
                    }
                },
                "author": {
                    "$ref": "#/definitions/controller.UserResponse"
                },
                "ingredients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/controller.RecipeIngredientResponse"
                    }
                },
                "is_favorited": {
                    "type": "boolean"
                },
                "is_in_shopping_cart": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "image": {
                    "type": "string"
                },
                "text": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer"
                }
            }
        },
        "controller.RecipeRequest": {
            "type": "object",
            "properties": {
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "ingredients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/service.RecipeIngredientInput"
                    }
                },
                "name": {
                    "type": "string",
                    "maxLength": 256
                },
                "text": {
                    "type": "string"
                },
                "cooking_time": {
                    "type": "integer",
                    "minimum": 1
                },
                "image": {
                    "type": "string"
                }
            },
            "required": [
                "tags",
                "ingredients",
                "name",
                "text",
                "cooking_time"
            ]
        },
        "service.RecipeIngredientInput": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "amount": {
                    "type": "integer",
                    "minimum": 1
                }
            },
            "required": [
                "id",
                "amount"
            ]
        },
        "controller.ShortLinkResponse": {
            "type": "object",
            "properties": {
                "short-link": {
                    "type": "string"
                }
            }
        },
        "controller.PaginatedResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "next": {
                    "type": "string",
                    "x-nullable": true
                },
                "previous": {
                    "type": "string",
                    "x-nullable": true
                },
                "results": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                }
            }
        },
        "model.Tag": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "slug": {
                    "type": "string"
                }
            }
        },
        "model.Ingredient": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "measurement_unit": {
                    "type": "string"
                }
            }
        },
        "errors.DetailResponse": {
            "type": "object",
            "properties": {
                "detail": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                }
            }
        },
        "errors.RelationErrorResponse": {
            "type": "object",
            "properties": {
                "errors": {
                    "type": "string"
                }
            }
        },
        "errors.FieldErrors": {
            "type": "object",
            "additionalProperties": {
                "type": "array",
                "items": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "TokenAuth": {
            "description": "Value: Token <auth_token>",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "Recipes, favorites, subscriptions and shopping lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
