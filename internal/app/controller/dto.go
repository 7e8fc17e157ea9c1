package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/service"
)

type UserResponse struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// CreatedUserResponse is returned by registration.
type CreatedUserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RecipeMinifiedResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type UserWithRecipesResponse struct {
	UserResponse
	Recipes      []RecipeMinifiedResponse `json:"recipes"`
	RecipesCount int64                    `json:"recipes_count"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []model.Tag                `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// Presenter renders models into response DTOs with absolute media URLs.
type Presenter struct {
	urls   *URLBuilder
	images service.ImageService
}

func NewPresenter(urls *URLBuilder, images service.ImageService) *Presenter {
	return &Presenter{urls: urls, images: images}
}

func (p *Presenter) mediaURL(c *gin.Context, key string) string {
	return p.urls.Absolute(c, p.images.URL(key))
}

func (p *Presenter) User(c *gin.Context, user *model.User, isSubscribed bool) UserResponse {
	resp := UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
	if user.Avatar != nil {
		avatar := p.mediaURL(c, *user.Avatar)
		resp.Avatar = &avatar
	}
	return resp
}

func (p *Presenter) Users(c *gin.Context, users []service.UserDetails) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, details := range users {
		result = append(result, p.User(c, details.User, details.IsSubscribed))
	}
	return result
}

func (p *Presenter) Minified(c *gin.Context, recipe *model.Recipe) RecipeMinifiedResponse {
	return RecipeMinifiedResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       p.mediaURL(c, recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

func (p *Presenter) AuthorWithRecipes(c *gin.Context, author *service.AuthorWithRecipes) UserWithRecipesResponse {
	recipes := make([]RecipeMinifiedResponse, 0, len(author.Recipes))
	for i := range author.Recipes {
		recipes = append(recipes, p.Minified(c, &author.Recipes[i]))
	}
	return UserWithRecipesResponse{
		UserResponse: p.User(c, author.User, author.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: author.RecipesCount,
	}
}

func (p *Presenter) Recipe(c *gin.Context, details *service.RecipeDetails) RecipeResponse {
	recipe := details.Recipe

	tags := make([]model.Tag, 0, len(recipe.Tags))
	for _, link := range recipe.Tags {
		tags = append(tags, link.Tag)
	}
	ingredients := make([]RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              line.Ingredient.ID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           p.User(c, &recipe.Author, details.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      details.IsFavorited,
		IsInShoppingCart: details.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            p.mediaURL(c, recipe.Image),
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func (p *Presenter) Recipes(c *gin.Context, list []service.RecipeDetails) []RecipeResponse {
	result := make([]RecipeResponse, 0, len(list))
	for i := range list {
		result = append(result, p.Recipe(c, &list[i]))
	}
	return result
}
