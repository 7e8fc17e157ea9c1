package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserController_Register(t *testing.T) {
	srv := setupTestServer(t)
	srv.signUp("chef")

	tests := []struct {
		name        string
		body        gin.H
		wantStatus  int
		wantFields  []string
		wantMissing []string
	}{
		{
			name: "created",
			body: gin.H{
				"email": "new@example.com", "username": "newbie",
				"first_name": "Иван", "last_name": "Петров", "password": "Sup3rSecret!",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       gin.H{"email": "x@example.com"},
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"username", "first_name", "last_name", "password"},
		},
		{
			name: "bad email and username",
			body: gin.H{
				"email": "not-an-email", "username": "bad name!",
				"first_name": "Иван", "last_name": "Петров", "password": "Sup3rSecret!",
			},
			wantStatus:  http.StatusBadRequest,
			wantFields:  []string{"email", "username"},
			wantMissing: []string{"password"},
		},
		{
			name: "email taken",
			body: gin.H{
				"email": "CHEF@example.com", "username": "other",
				"first_name": "Иван", "last_name": "Петров", "password": "Sup3rSecret!",
			},
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/api/users/", "", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decode(t, w)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "newbie", body["username"])
				assert.NotContains(t, body, "password")
				assert.NotContains(t, body, "is_subscribed")
				return
			}
			for _, field := range tt.wantFields {
				assert.Contains(t, body, field)
			}
			for _, field := range tt.wantMissing {
				assert.NotContains(t, body, field)
			}
		})
	}
}

func TestUserController_LoginAndLogout(t *testing.T) {
	srv := setupTestServer(t)
	_, token := srv.signUp("chef")

	w := srv.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{
		"email": "chef@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "non_field_errors")

	w = srv.do(http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef", decode(t, w)["username"])

	w = srv.do(http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/api/users/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserController_MeRequiresAuth(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(http.MethodGet, "/api/users/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w), "detail")
}

func TestUserController_SetPassword(t *testing.T) {
	srv := setupTestServer(t)
	_, token := srv.signUp("chef")

	w := srv.do(http.MethodPost, "/api/users/set_password/", token, gin.H{
		"current_password": "nope", "new_password": "An0therSecret!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "current_password")

	w = srv.do(http.MethodPost, "/api/users/set_password/", token, gin.H{
		"current_password": "Sup3rSecret!", "new_password": "An0therSecret!",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{
		"email": "chef@example.com", "password": "An0therSecret!",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserController_Avatar(t *testing.T) {
	srv := setupTestServer(t)
	_, token := srv.signUp("chef")

	w := srv.do(http.MethodPut, "/api/users/me/avatar/", token, gin.H{"avatar": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "avatar")

	w = srv.do(http.MethodPut, "/api/users/me/avatar/", token, gin.H{"avatar": testPNG})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Regexp(t, `^http://example\.com/media/.+\.png$`, decode(t, w)["avatar"])

	w = srv.do(http.MethodGet, "/api/users/me/", token, nil)
	assert.NotNil(t, decode(t, w)["avatar"])

	w = srv.do(http.MethodDelete, "/api/users/me/avatar/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/api/users/me/", token, nil)
	assert.Nil(t, decode(t, w)["avatar"])
}

func TestUserController_Subscriptions(t *testing.T) {
	srv := setupTestServer(t)
	chefID, chefToken := srv.signUp("chef")
	authorID, authorToken := srv.signUp("author")
	flour := srv.ingredient("мука", "г")
	for i := 0; i < 3; i++ {
		srv.publish(authorToken, fmt.Sprintf("Блюдо %d", i), flour, 100)
	}

	subscribePath := fmt.Sprintf("/api/users/%d/subscribe/", authorID)

	w := srv.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", chefID), chefToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "errors")

	w = srv.do(http.MethodPost, subscribePath+"?recipes_limit=2", chefToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["is_subscribed"])
	assert.Equal(t, float64(3), body["recipes_count"])
	assert.Len(t, body["recipes"], 2)

	w = srv.do(http.MethodPost, subscribePath, chefToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPost, "/api/users/999/subscribe/", chefToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(http.MethodGet, "/api/users/subscriptions/", chefToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["count"])

	tests := []struct {
		query       string
		wantRecipes int
	}{
		{query: "", wantRecipes: 3},
		{query: "?recipes_limit=0", wantRecipes: 0},
		{query: "?recipes_limit=1", wantRecipes: 1},
		{query: "?recipes_limit=-1", wantRecipes: 3},
		{query: "?recipes_limit=abc", wantRecipes: 3},
	}
	for _, tt := range tests {
		w = srv.do(http.MethodGet, "/api/users/subscriptions/"+tt.query, chefToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		entry := decode(t, w)["results"].([]interface{})[0].(map[string]interface{})
		assert.Len(t, entry["recipes"], tt.wantRecipes, "query %q", tt.query)
		assert.Equal(t, float64(3), entry["recipes_count"], "query %q", tt.query)
	}

	w = srv.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", authorID), chefToken, nil)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])

	w = srv.do(http.MethodDelete, subscribePath, chefToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodDelete, subscribePath, chefToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserController_ListPagination(t *testing.T) {
	srv := setupTestServer(t)
	for i := 0; i < 8; i++ {
		srv.signUp(fmt.Sprintf("user%d", i))
	}

	w := srv.do(http.MethodGet, "/api/users/?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(8), body["count"])
	assert.Len(t, body["results"], 5)
	assert.Equal(t, "http://example.com/api/users/?limit=5&page=2", body["next"])
	assert.Nil(t, body["previous"])

	w = srv.do(http.MethodGet, "/api/users/?limit=5&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["results"], 3)
	assert.Nil(t, body["next"])
	assert.Equal(t, "http://example.com/api/users/?limit=5", body["previous"])

	for _, page := range []string{"3", "0", "abc"} {
		w = srv.do(http.MethodGet, "/api/users/?limit=5&page="+page, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "page=%s", page)
		assert.Equal(t, "Неправильная страница", decode(t, w)["detail"])
	}
}
