// Package catalog holds the static, read-only metadata of every mini-game.
package catalog

import (
	"sort"
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

var games = []domain.Game{
	{
		ID:            domain.GameCountingFruits,
		Name:          "Counting Fruits 🍎",
		Description:   "Count the fruits and pick the right number",
		Category:      "counting",
		Difficulty:    "easy",
		Ages:          domain.AgeRange{Min: 2, Max: 5},
		Icon:          "🍎",
		Duration:      120 * time.Second,
		QuestionCount: 10,
		Rewards:       domain.Rewards{Correct: 10, Completion: 50},
	},
	{
		ID:            domain.GameFindMatch,
		Name:          "Animal Match 🦁",
		Description:   "Match every animal with its favourite food",
		Category:      "matching",
		Difficulty:    "easy",
		Ages:          domain.AgeRange{Min: 2, Max: 5},
		Icon:          "🦁",
		Duration:      150 * time.Second,
		QuestionCount: 8,
		Rewards:       domain.Rewards{Correct: 15, Completion: 50},
	},
	{
		ID:            domain.GameMazeRabbit,
		Name:          "Rabbit Maze 🐰",
		Description:   "Help the rabbit find the way to the carrot",
		Category:      "puzzle",
		Difficulty:    "medium",
		Ages:          domain.AgeRange{Min: 3, Max: 5},
		Icon:          "🐰",
		Duration:      180 * time.Second,
		QuestionCount: 5,
		Rewards:       domain.Rewards{Correct: 20, Completion: 50},
	},
	{
		ID:            domain.GameColorLearn,
		Name:          "Learn Colors 🌈",
		Description:   "Find the color that is asked for",
		Category:      "learning",
		Difficulty:    "easy",
		Ages:          domain.AgeRange{Min: 2, Max: 4},
		Icon:          "🌈",
		Duration:      100 * time.Second,
		QuestionCount: 10,
		Rewards:       domain.Rewards{Correct: 10, Completion: 40},
	},
	{
		ID:            domain.GameShapes,
		Name:          "Know Your Shapes 🟠",
		Description:   "Recognize circles, squares, stars and more",
		Category:      "learning",
		Difficulty:    "easy",
		Ages:          domain.AgeRange{Min: 3, Max: 5},
		Icon:          "🟠",
		Duration:      120 * time.Second,
		QuestionCount: 8,
		Rewards:       domain.Rewards{Correct: 10, Completion: 45},
	},
	{
		ID:            domain.GameAlphabetQuiz,
		Name:          "Alphabet Quiz A-Z 🔤",
		Description:   "Pick the letter that is asked for",
		Category:      "learning",
		Difficulty:    "medium",
		Ages:          domain.AgeRange{Min: 3, Max: 5},
		Icon:          "🔤",
		Duration:      150 * time.Second,
		QuestionCount: 15,
		Rewards:       domain.Rewards{Correct: 8, Completion: 50},
	},
	{
		ID:            domain.GameMemoryPairs,
		Name:          "Memory Pairs 🧠",
		Description:   "Flip the cards and find the matching pairs",
		Category:      "memory",
		Difficulty:    "easy",
		Ages:          domain.AgeRange{Min: 3, Max: 6},
		Icon:          "🧠",
		Duration:      120 * time.Second,
		QuestionCount: 6,
		Rewards:       domain.Rewards{Correct: 12, Completion: 60},
	},
}

var byID = func() map[domain.GameID]domain.Game {
	m := make(map[domain.GameID]domain.Game, len(games))
	for _, g := range games {
		m[g.ID] = g
	}
	return m
}()

// Category is a category name with the number of games in it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// All returns every game in catalog order.
func All() []domain.Game {
	return append([]domain.Game(nil), games...)
}

// Lookup returns the game with the given id.
func Lookup(id domain.GameID) (domain.Game, bool) {
	g, ok := byID[id]
	return g, ok
}

// ByCategory returns the games in a category.
func ByCategory(category string) []domain.Game {
	var out []domain.Game
	for _, g := range games {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// ForAge returns the games whose age range includes age.
func ForAge(age int) []domain.Game {
	var out []domain.Game
	for _, g := range games {
		if g.Ages.Contains(age) {
			out = append(out, g)
		}
	}
	return out
}

// Categories returns every category with its game count, sorted by name.
func Categories() []Category {
	counts := make(map[string]int)
	for _, g := range games {
		counts[g.Category]++
	}
	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
