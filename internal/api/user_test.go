package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEndpoints(t *testing.T) {
	a := setupTestAPI(t)

	body := map[string]interface{}{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Pat",
		"last_name":  "Cook",
		"password":   "hunter2hunter2",
	}
	w := a.request(t, "POST", "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.request(t, "POST", "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.request(t, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "cook@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AuthToken string `json:"auth_token"`
	}
	decodeJSON(t, w, &login)
	require.NotEmpty(t, login.AuthToken)

	w = a.request(t, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "cook@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the issued token works against a protected route
	w = a.request(t, "GET", "/api/v1/users/me", login.AuthToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserView
	decodeJSON(t, w, &me)
	assert.Equal(t, "cook", me.Username)
}

func TestMeRequiresAuth(t *testing.T) {
	a := setupTestAPI(t)
	w := a.request(t, "GET", "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvatarEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.newUserToken(t, "cook")

	w := a.request(t, "DELETE", "/api/v1/users/me/avatar", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, "PUT", "/api/v1/users/me/avatar", token, map[string]interface{}{
		"avatar": tinyPNG,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Avatar string `json:"avatar"`
	}
	decodeJSON(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.Avatar, "data:image/png;base64,"))

	w = a.request(t, "PUT", "/api/v1/users/me/avatar", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.request(t, "DELETE", "/api/v1/users/me/avatar", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSubscribeEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	follower, followerToken := a.newUserToken(t, "follower")
	author, authorToken := a.newUserToken(t, "writer")

	// give the author a recipe so subscription views carry it
	w := a.request(t, "POST", "/api/v1/recipes", authorToken, a.validRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)

	path := "/api/v1/users/" + author.ID.String() + "/subscribe"

	w = a.request(t, "POST", "/api/v1/users/"+follower.ID.String()+"/subscribe", followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "self-subscribe")

	w = a.request(t, "POST", path, followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub SubscriptionView
	decodeJSON(t, w, &sub)
	assert.Equal(t, "writer", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 1, sub.RecipesCount)
	require.Len(t, sub.Recipes, 1)

	w = a.request(t, "POST", path, followerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.request(t, "GET", "/api/v1/users/subscriptions?recipes_limit=1", followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Count   int64              `json:"count"`
		Results []SubscriptionView `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 1)

	// the author profile now shows as subscribed to the follower
	w = a.request(t, "GET", "/api/v1/users/"+author.ID.String(), followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile UserView
	decodeJSON(t, w, &profile)
	assert.True(t, profile.IsSubscribed)

	w = a.request(t, "DELETE", path, followerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.request(t, "DELETE", path, followerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsersPagination(t *testing.T) {
	a := setupTestAPI(t)
	for _, name := range []string{"alice", "bob", "carol"} {
		a.newUserToken(t, name)
	}

	w := a.request(t, "GET", "/api/v1/users?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Count    int64      `json:"count"`
		Next     *string    `json:"next"`
		Previous *string    `json:"previous"`
		Results  []UserView `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.True(t, strings.HasPrefix(*page.Next, "http://example.com/api/v1/users?"), *page.Next)
	assert.Nil(t, page.Previous)

	// limit clamps at the maximum page size
	w = a.request(t, "GET", "/api/v1/users?limit=50", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &page)
	assert.Len(t, page.Results, 3)
}

func TestCatalogEndpoints(t *testing.T) {
	a := setupTestAPI(t)

	w := a.request(t, "GET", "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.request(t, "GET", "/api/v1/tags/99999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, "GET", "/api/v1/ingredients?name=fl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []struct {
		Name string `json:"name"`
	}
	decodeJSON(t, w, &ingredients)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "flour", ingredients[0].Name)
}
