package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
)

type IngredientController struct {
	ingredientService service.IngredientService
}

func NewIngredientController(ingredientService service.IngredientService) *IngredientController {
	return &IngredientController{ingredientService: ingredientService}
}

// List returns the catalog, filtered by ?name= prefix and ranked by ?search=
// GET /api/ingredients/
func (ctrl *IngredientController) List(c *gin.Context) {
	ingredients, err := ctrl.ingredientService.ListIngredients(c.Request.Context(), c.Query("name"), c.Query("search"))
	if err != nil {
		respondError(c, err, "list ingredients")
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// Get returns one ingredient
// GET /api/ingredients/:id/
func (ctrl *IngredientController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ingredient, err := ctrl.ingredientService.GetIngredient(id)
	if err != nil {
		respondError(c, err, "get ingredient")
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
