package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
	authService service.AuthService
	paginator   *Paginator
	presenter   *Presenter
}

func NewUserController(
	userService service.UserService,
	authService service.AuthService,
	paginator *Paginator,
	presenter *Presenter,
) *UserController {
	return &UserController{
		userService: userService,
		authService: authService,
		paginator:   paginator,
		presenter:   presenter,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// recipesLimit reads the recipes_limit query parameter. Anything that is not
// a non-negative integer means no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return service.AllRecipes
	}
	return n
}

// Register creates an account
// POST /api/users/
func (ctrl *UserController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.authService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusCreated, CreatedUserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// List returns users page by page
// GET /api/users/
func (ctrl *UserController) List(c *gin.Context) {
	page, ok := ctrl.paginator.Parse(c)
	if !ok {
		return
	}

	users, total, err := ctrl.userService.List(currentUserID(c), page.Offset(), page.Size)
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	ctrl.paginator.Respond(c, ctrl.presenter.urls, page, total, ctrl.presenter.Users(c, users))
}

// Get returns one user
// GET /api/users/:id/
func (ctrl *UserController) Get(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	details, err := ctrl.userService.Get(currentUserID(c), userID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, ctrl.presenter.User(c, details.User, details.IsSubscribed))
}

// Me returns the authenticated user
// GET /api/users/me/
func (ctrl *UserController) Me(c *gin.Context) {
	userID := currentUserID(c)
	details, err := ctrl.userService.Get(userID, userID)
	if err != nil {
		respondError(c, err, "get current user")
		return
	}
	c.JSON(http.StatusOK, ctrl.presenter.User(c, details.User, false))
}

// SetPassword changes the authenticated user's password
// POST /api/users/set_password/
func (ctrl *UserController) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.authService.SetPassword(currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "set password")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAvatar uploads a new avatar
// PUT /api/users/me/avatar/
func (ctrl *UserController) SetAvatar(c *gin.Context) {
	var req AvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.userService.SetAvatar(c.Request.Context(), currentUserID(c), req.Avatar)
	if err != nil {
		respondError(c, err, "set avatar")
		return
	}
	c.JSON(http.StatusOK, AvatarResponse{Avatar: ctrl.presenter.mediaURL(c, *user.Avatar)})
}

// DeleteAvatar removes the avatar
// DELETE /api/users/me/avatar/
func (ctrl *UserController) DeleteAvatar(c *gin.Context) {
	if err := ctrl.userService.DeleteAvatar(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err, "delete avatar")
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the user follows
// GET /api/users/subscriptions/
func (ctrl *UserController) Subscriptions(c *gin.Context) {
	page, ok := ctrl.paginator.Parse(c)
	if !ok {
		return
	}

	authors, total, err := ctrl.userService.ListSubscriptions(currentUserID(c), page.Offset(), page.Size, recipesLimit(c))
	if err != nil {
		respondError(c, err, "list subscriptions")
		return
	}

	results := make([]UserWithRecipesResponse, 0, len(authors))
	for i := range authors {
		results = append(results, ctrl.presenter.AuthorWithRecipes(c, &authors[i]))
	}
	ctrl.paginator.Respond(c, ctrl.presenter.urls, page, total, results)
}

// Subscribe follows an author
// POST /api/users/:id/subscribe/
func (ctrl *UserController) Subscribe(c *gin.Context) {
	authorID, ok := idParam(c, "id")
	if !ok {
		return
	}

	author, err := ctrl.userService.Subscribe(currentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		respondError(c, err, "subscribe to author")
		return
	}
	c.JSON(http.StatusCreated, ctrl.presenter.AuthorWithRecipes(c, author))
}

// Unsubscribe stops following an author
// DELETE /api/users/:id/subscribe/
func (ctrl *UserController) Unsubscribe(c *gin.Context) {
	authorID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.Unsubscribe(currentUserID(c), authorID); err != nil {
		respondError(c, err, "unsubscribe from author")
		return
	}
	c.Status(http.StatusNoContent)
}
