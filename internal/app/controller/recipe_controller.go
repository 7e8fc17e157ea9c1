package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecipeController struct {
	recipeService       service.RecipeService
	relationService     service.RelationService
	shoppingListService service.ShoppingListService
	paginator           *Paginator
	presenter           *Presenter
}

func NewRecipeController(
	recipeService service.RecipeService,
	relationService service.RelationService,
	shoppingListService service.ShoppingListService,
	paginator *Paginator,
	presenter *Presenter,
) *RecipeController {
	return &RecipeController{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
		paginator:           paginator,
		presenter:           presenter,
	}
}

// RecipeRequest is the body of create and update. Absent fields stay nil.
type RecipeRequest struct {
	Tags        *[]uint                          `json:"tags"`
	Ingredients *[]service.RecipeIngredientInput `json:"ingredients"`
	Name        *string                          `json:"name"`
	Text        *string                          `json:"text"`
	CookingTime *int                             `json:"cooking_time"`
	Image       *string                          `json:"image"`
}

func (r RecipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
	}
}

// flagFilter reads a "1"/"0" query flag. Other values leave the filter off.
func flagFilter(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "1", "true":
		v := true
		return &v
	case "0", "false":
		v := false
		return &v
	}
	return nil
}

// List returns recipes newest first
// GET /api/recipes/?author=&tags=&is_favorited=&is_in_shopping_cart=
func (ctrl *RecipeController) List(c *gin.Context) {
	filter := repository.RecipeFilter{
		ViewerID:         currentUserID(c),
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      flagFilter(c, "is_favorited"),
		IsInShoppingCart: flagFilter(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apperrors.RespondWithValidationError(c, apperrors.FieldError("author", "Введите правильное число."))
			return
		}
		id := uint(authorID)
		filter.AuthorID = &id
	}

	page, ok := ctrl.paginator.Parse(c)
	if !ok {
		return
	}

	recipes, total, err := ctrl.recipeService.List(filter, page.Offset(), page.Size)
	if err != nil {
		respondError(c, err, "list recipes")
		return
	}
	ctrl.paginator.Respond(c, ctrl.presenter.urls, page, total, ctrl.presenter.Recipes(c, recipes))
}

// Get returns one recipe
// GET /api/recipes/:id/
func (ctrl *RecipeController) Get(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	details, err := ctrl.recipeService.Get(currentUserID(c), recipeID)
	if err != nil {
		respondError(c, err, "get recipe")
		return
	}
	c.JSON(http.StatusOK, ctrl.presenter.Recipe(c, details))
}

// Create publishes a recipe
// POST /api/recipes/
func (ctrl *RecipeController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	details, err := ctrl.recipeService.Create(c.Request.Context(), currentUserID(c), req.input())
	if err != nil {
		respondError(c, err, "create recipe")
		return
	}

	log.Info("Recipe published", map[string]interface{}{
		"recipe_id": details.Recipe.ID,
	})
	c.JSON(http.StatusCreated, ctrl.presenter.Recipe(c, details))
}

// Update changes a recipe; only its author may do so
// PATCH /api/recipes/:id/
func (ctrl *RecipeController) Update(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	details, err := ctrl.recipeService.Update(c.Request.Context(), currentUserID(c), recipeID, req.input())
	if err != nil {
		respondError(c, err, "update recipe")
		return
	}
	c.JSON(http.StatusOK, ctrl.presenter.Recipe(c, details))
}

// Delete removes a recipe; only its author may do so
// DELETE /api/recipes/:id/
func (ctrl *RecipeController) Delete(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.recipeService.Delete(c.Request.Context(), currentUserID(c), recipeID); err != nil {
		respondError(c, err, "delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite marks a recipe as favorite
// POST /api/recipes/:id/favorite/
func (ctrl *RecipeController) AddFavorite(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	recipe, err := ctrl.relationService.AddFavorite(currentUserID(c), recipeID)
	if err != nil {
		respondError(c, err, "add recipe to favorites")
		return
	}
	c.JSON(http.StatusCreated, ctrl.presenter.Minified(c, recipe))
}

// RemoveFavorite unmarks a favorite recipe
// DELETE /api/recipes/:id/favorite/
func (ctrl *RecipeController) RemoveFavorite(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.relationService.RemoveFavorite(currentUserID(c), recipeID); err != nil {
		respondError(c, err, "remove recipe from favorites")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddToCart puts a recipe into the shopping cart
// POST /api/recipes/:id/shopping_cart/
func (ctrl *RecipeController) AddToCart(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	recipe, err := ctrl.relationService.AddToCart(currentUserID(c), recipeID)
	if err != nil {
		respondError(c, err, "add recipe to shopping cart")
		return
	}
	c.JSON(http.StatusCreated, ctrl.presenter.Minified(c, recipe))
}

// RemoveFromCart takes a recipe out of the shopping cart
// DELETE /api/recipes/:id/shopping_cart/
func (ctrl *RecipeController) RemoveFromCart(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.relationService.RemoveFromCart(currentUserID(c), recipeID); err != nil {
		respondError(c, err, "remove recipe from shopping cart")
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as text or xlsx
// GET /api/recipes/download_shopping_cart/?format=txt|xlsx
func (ctrl *RecipeController) DownloadShoppingCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	rows, err := ctrl.shoppingListService.Build(currentUserID(c))
	if err != nil {
		respondError(c, err, "build shopping list")
		return
	}

	if c.Query("format") == "xlsx" {
		data, err := ctrl.shoppingListService.RenderXLSX(rows)
		if err != nil {
			log.Error("Failed to render shopping list", err)
			apperrors.InternalError(c, "")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="shopping-list.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping-list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ctrl.shoppingListService.RenderText(rows)))
}
