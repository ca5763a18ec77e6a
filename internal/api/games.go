package api

import (
	"net/http"
	"strconv"

	"github.com/ashureev/tiny-arcade/internal/catalog"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GamesHandler serves the static game catalog.
type GamesHandler struct{}

// NewGamesHandler creates a catalog handler.
func NewGamesHandler() *GamesHandler {
	return &GamesHandler{}
}

// GameList is the response of every catalog listing.
type GameList struct {
	Games []domain.Game `json:"games"`
	Total int           `json:"total"`
}

func listOf(games []domain.Game) GameList {
	if games == nil {
		games = []domain.Game{}
	}
	return GameList{Games: games, Total: len(games)}
}

// RegisterRoutes registers catalog routes.
func (h *GamesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/category/{category}", h.ByCategory)
		r.Get("/age/{age}", h.ByAge)
		r.Get("/{gameID}", h.Get)
	})
}

// List returns every game.
func (h *GamesHandler) List(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, listOf(catalog.All()))
}

// Categories returns the category names with their game counts.
func (h *GamesHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"categories": catalog.Categories(),
	})
}

// ByCategory returns the games of one category.
func (h *GamesHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	games := catalog.ByCategory(category)
	if len(games) == 0 {
		ErrorMessage(w, http.StatusNotFound, "category_not_found", "no games in category "+strconv.Quote(category))
		return
	}
	JSON(w, http.StatusOK, listOf(games))
}

// ByAge returns the games suitable for an age in years.
func (h *GamesHandler) ByAge(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(chi.URLParam(r, "age"))
	if err != nil || age < 0 {
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "age must be a whole number of years")
		return
	}
	games := catalog.ForAge(age)
	if len(games) == 0 {
		ErrorMessage(w, http.StatusNotFound, CodeGameNotFound, "no games for age "+strconv.Itoa(age))
		return
	}
	JSON(w, http.StatusOK, listOf(games))
}

// Get returns one game.
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := domain.GameID(chi.URLParam(r, "gameID"))
	game, ok := catalog.Lookup(id)
	if !ok {
		Error(w, http.StatusNotFound, CodeGameNotFound)
		return
	}
	JSON(w, http.StatusOK, game)
}
