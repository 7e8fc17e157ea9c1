package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
)

type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{tagService: tagService}
}

// List returns all tags
// GET /api/tags/
func (ctrl *TagController) List(c *gin.Context) {
	tags, err := ctrl.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err, "list tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Get returns one tag
// GET /api/tags/:id/
func (ctrl *TagController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	tag, err := ctrl.tagService.GetTag(id)
	if err != nil {
		respondError(c, err, "get tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}
