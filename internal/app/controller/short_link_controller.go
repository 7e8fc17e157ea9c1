package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
)

type ShortLinkController struct {
	shortLinkService service.ShortLinkService
	urls             *URLBuilder
}

func NewShortLinkController(shortLinkService service.ShortLinkService, urls *URLBuilder) *ShortLinkController {
	return &ShortLinkController{shortLinkService: shortLinkService, urls: urls}
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// GetLink returns the recipe's short link, creating it on first use
// GET /api/recipes/:id/get-link/
func (ctrl *ShortLinkController) GetLink(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	code, err := ctrl.shortLinkService.GetOrCreate(recipeID)
	if err != nil {
		respondError(c, err, "get recipe link")
		return
	}
	c.JSON(http.StatusOK, ShortLinkResponse{ShortLink: ctrl.urls.Absolute(c, "/s/"+code)})
}

// Redirect sends a short link to the recipe page
// GET /s/:code
func (ctrl *ShortLinkController) Redirect(c *gin.Context) {
	recipeID, err := ctrl.shortLinkService.Resolve(c.Param("code"))
	if err != nil {
		respondError(c, err, "resolve short link")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", recipeID))
}
