package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/docs"
	"github.com/ikkim/foodgram-backend/internal/app/controller"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

type Router struct {
	authController       *controller.AuthController
	userController       *controller.UserController
	tagController        *controller.TagController
	ingredientController *controller.IngredientController
	recipeController     *controller.RecipeController
	shortLinkController  *controller.ShortLinkController
	authMiddleware       *middleware.AuthMiddleware
	mediaRoot            string
	config               *config.Config
}

// NewRouter wires the controllers. mediaRoot is the directory served under
// MEDIA_URL; leave it empty when media lives in S3.
func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	tagController *controller.TagController,
	ingredientController *controller.IngredientController,
	recipeController *controller.RecipeController,
	shortLinkController *controller.ShortLinkController,
	authMiddleware *middleware.AuthMiddleware,
	mediaRoot string,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		userController:       userController,
		tagController:        tagController,
		ingredientController: ingredientController,
		recipeController:     recipeController,
		shortLinkController:  shortLinkController,
		authMiddleware:       authMiddleware,
		mediaRoot:            mediaRoot,
		config:               cfg,
	}
}

// routes registers every path both with and without the trailing slash.
type routes struct {
	group gin.IRoutes
}

func (r routes) handle(method, path string, handlers ...gin.HandlerFunc) {
	trimmed := strings.TrimSuffix(path, "/")
	r.group.Handle(method, trimmed, handlers...)
	r.group.Handle(method, trimmed+"/", handlers...)
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.RedirectTrailingSlash = false

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.BodyLimitMiddleware(middleware.JSONBodyLimit(r.config.Storage.MaxUploadBytes)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
		})
	})

	router.GET("/s/:code", r.shortLinkController.Redirect)

	// API documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if r.mediaRoot != "" {
		router.Static(r.config.Storage.MediaURL, r.mediaRoot)
	}

	auth := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()

	api := routes{group: router.Group("/api")}

	api.handle(http.MethodGet, "/schema/", serveSchema)

	api.handle(http.MethodPost, "/auth/token/login/", r.authController.Login)
	api.handle(http.MethodPost, "/auth/token/logout/", auth, r.authController.Logout)

	api.handle(http.MethodGet, "/users/", optional, r.userController.List)
	api.handle(http.MethodPost, "/users/", r.userController.Register)
	api.handle(http.MethodGet, "/users/me/", auth, r.userController.Me)
	api.handle(http.MethodPost, "/users/set_password/", auth, r.userController.SetPassword)
	api.handle(http.MethodPut, "/users/me/avatar/", auth, r.userController.SetAvatar)
	api.handle(http.MethodDelete, "/users/me/avatar/", auth, r.userController.DeleteAvatar)
	api.handle(http.MethodGet, "/users/subscriptions/", auth, r.userController.Subscriptions)
	api.handle(http.MethodGet, "/users/:id/", optional, r.userController.Get)
	api.handle(http.MethodPost, "/users/:id/subscribe/", auth, r.userController.Subscribe)
	api.handle(http.MethodDelete, "/users/:id/subscribe/", auth, r.userController.Unsubscribe)

	api.handle(http.MethodGet, "/tags/", r.tagController.List)
	api.handle(http.MethodGet, "/tags/:id/", r.tagController.Get)
	api.handle(http.MethodGet, "/ingredients/", r.ingredientController.List)
	api.handle(http.MethodGet, "/ingredients/:id/", r.ingredientController.Get)

	api.handle(http.MethodGet, "/recipes/", optional, r.recipeController.List)
	api.handle(http.MethodPost, "/recipes/", auth, r.recipeController.Create)
	api.handle(http.MethodGet, "/recipes/download_shopping_cart/", auth, r.recipeController.DownloadShoppingCart)
	api.handle(http.MethodGet, "/recipes/:id/", optional, r.recipeController.Get)
	api.handle(http.MethodPatch, "/recipes/:id/", auth, r.recipeController.Update)
	api.handle(http.MethodDelete, "/recipes/:id/", auth, r.recipeController.Delete)
	api.handle(http.MethodGet, "/recipes/:id/get-link/", r.shortLinkController.GetLink)
	api.handle(http.MethodPost, "/recipes/:id/favorite/", auth, r.recipeController.AddFavorite)
	api.handle(http.MethodDelete, "/recipes/:id/favorite/", auth, r.recipeController.RemoveFavorite)
	api.handle(http.MethodPost, "/recipes/:id/shopping_cart/", auth, r.recipeController.AddToCart)
	api.handle(http.MethodDelete, "/recipes/:id/shopping_cart/", auth, r.recipeController.RemoveFromCart)

	return router
}

// serveSchema returns the OpenAPI document as JSON.
func serveSchema(c *gin.Context) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to render API schema", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Schema unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			// a wildcard cannot be combined with credentials
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	return cors.New(cfg)
}
