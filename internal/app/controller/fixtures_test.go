package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	testPNG    = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func setupTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	lru, err := cache.NewLRUCache(128)
	require.NoError(t, err)
	store, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	subRepo := repository.NewSubscriptionRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	ingredientRepo := repository.NewIngredientRepository(testDB)
	recipeRepo := repository.NewRecipeRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	shortLinkRepo := repository.NewShortLinkRepository(testDB)

	images := service.NewImageService(store, 1<<20)
	authService := service.NewAuthService(userRepo, lru, testSecret, time.Hour)

	urls := NewURLBuilder("")
	paginator := NewPaginator(6, 100)
	presenter := NewPresenter(urls, images)

	authCtrl := NewAuthController(authService)
	userCtrl := NewUserController(service.NewUserService(userRepo, subRepo, recipeRepo, images), authService, paginator, presenter)
	tagCtrl := NewTagController(service.NewTagService(tagRepo, lru, time.Hour))
	ingredientCtrl := NewIngredientController(service.NewIngredientService(ingredientRepo, lru, time.Hour))
	recipeCtrl := NewRecipeController(
		service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, subRepo, images),
		service.NewRelationService(recipeRepo, favoriteRepo, cartRepo),
		service.NewShoppingListService(cartRepo),
		paginator,
		presenter,
	)
	linkCtrl := NewShortLinkController(service.NewShortLinkService(shortLinkRepo, recipeRepo, nil), urls)

	mw := middleware.NewAuthMiddleware(testSecret, authService)
	auth, optional := mw.Authenticate(), mw.OptionalAuthenticate()

	r := gin.New()
	r.GET("/s/:code", linkCtrl.Redirect)
	api := r.Group("/api")
	api.POST("/auth/token/login/", authCtrl.Login)
	api.POST("/auth/token/logout/", auth, authCtrl.Logout)
	api.GET("/users/", optional, userCtrl.List)
	api.POST("/users/", userCtrl.Register)
	api.GET("/users/me/", auth, userCtrl.Me)
	api.POST("/users/set_password/", auth, userCtrl.SetPassword)
	api.PUT("/users/me/avatar/", auth, userCtrl.SetAvatar)
	api.DELETE("/users/me/avatar/", auth, userCtrl.DeleteAvatar)
	api.GET("/users/subscriptions/", auth, userCtrl.Subscriptions)
	api.GET("/users/:id/", optional, userCtrl.Get)
	api.POST("/users/:id/subscribe/", auth, userCtrl.Subscribe)
	api.DELETE("/users/:id/subscribe/", auth, userCtrl.Unsubscribe)
	api.GET("/tags/", tagCtrl.List)
	api.GET("/tags/:id/", tagCtrl.Get)
	api.GET("/ingredients/", ingredientCtrl.List)
	api.GET("/ingredients/:id/", ingredientCtrl.Get)
	api.GET("/recipes/", optional, recipeCtrl.List)
	api.POST("/recipes/", auth, recipeCtrl.Create)
	api.GET("/recipes/download_shopping_cart/", auth, recipeCtrl.DownloadShoppingCart)
	api.GET("/recipes/:id/", optional, recipeCtrl.Get)
	api.PATCH("/recipes/:id/", auth, recipeCtrl.Update)
	api.DELETE("/recipes/:id/", auth, recipeCtrl.Delete)
	api.GET("/recipes/:id/get-link/", linkCtrl.GetLink)
	api.POST("/recipes/:id/favorite/", auth, recipeCtrl.AddFavorite)
	api.DELETE("/recipes/:id/favorite/", auth, recipeCtrl.RemoveFavorite)
	api.POST("/recipes/:id/shopping_cart/", auth, recipeCtrl.AddToCart)
	api.DELETE("/recipes/:id/shopping_cart/", auth, recipeCtrl.RemoveFromCart)

	return &testServer{t: t, db: testDB, router: r}
}

// do sends a JSON request. token may be empty for anonymous calls.
func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// signUp registers a user and returns its id and token.
func (s *testServer) signUp(username string) (uint, string) {
	w := s.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Имя",
		"last_name":  "Фамилия",
		"password":   "Sup3rSecret!",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decode(s.t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{
		"email":    username + "@example.com",
		"password": "Sup3rSecret!",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return id, decode(s.t, w)["auth_token"].(string)
}

func (s *testServer) ingredient(name, unit string) uint {
	ingredient := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(s.t, s.db.Create(ingredient).Error)
	return ingredient.ID
}

func (s *testServer) tagID(slug string) uint {
	var tag model.Tag
	require.NoError(s.t, s.db.Where("slug = ?", slug).First(&tag).Error)
	return tag.ID
}

// publish creates a recipe through the API and returns its id.
func (s *testServer) publish(token, name string, ingredientID uint, amount int) uint {
	w := s.do(http.MethodPost, "/api/recipes/", token, gin.H{
		"tags":         []uint{s.tagID("breakfast")},
		"ingredients":  []gin.H{{"id": ingredientID, "amount": amount}},
		"name":         name,
		"text":         "Описание",
		"cooking_time": 10,
		"image":        testPNG,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(s.t, w)["id"].(float64))
}
