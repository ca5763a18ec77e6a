package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/ashureev/tiny-arcade/internal/catalog"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamesRoutes(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/games/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[GameList](t, w)
	assert.Equal(t, len(catalog.All()), list.Total)
	assert.Len(t, list.Games, list.Total)

	w = ts.do(t, http.MethodGet, "/api/games/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[map[string][]catalog.Category](t, w)
	assert.Equal(t, catalog.Categories(), cats["categories"])

	first := catalog.All()[0]
	w = ts.do(t, http.MethodGet, "/api/games/category/"+first.Category, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(catalog.ByCategory(first.Category)), decode[GameList](t, w).Total)

	w = ts.do(t, http.MethodGet, "/api/games/category/astrophysics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGamesByAge(t *testing.T) {
	ts := newTestServer(t, false)

	age := catalog.All()[0].Ages.Min
	w := ts.do(t, http.MethodGet, "/api/games/age/"+strconv.Itoa(age), nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, g := range decode[GameList](t, w).Games {
		assert.True(t, g.Ages.Contains(age), g.ID)
	}

	w = ts.do(t, http.MethodGet, "/api/games/age/old", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/games/age/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetGame(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/games/"+string(domain.GameMazeRabbit), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, string(domain.GameMazeRabbit), body["id"])
	game, _ := catalog.Lookup(domain.GameMazeRabbit)
	assert.EqualValues(t, game.DurationSeconds(), body["duration_seconds"])

	w = ts.do(t, http.MethodGet, "/api/games/chess", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeGameNotFound, decode[ErrorBody](t, w).Error)
}
