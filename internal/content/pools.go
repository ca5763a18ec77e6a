package content

import "github.com/ashureev/tiny-arcade/internal/domain"

// AllPairsMatched is the winning condition of the pair-matching and memory items.
const AllPairsMatched = "all_pairs_matched"

type motif struct {
	emoji string
	name  string
}

var fruits = []motif{
	{"🍎", "apples"},
	{"🍌", "bananas"},
	{"🍇", "grapes"},
	{"🍊", "oranges"},
	{"🍓", "strawberries"},
	{"🍍", "pineapples"},
	{"🍐", "pears"},
	{"🍒", "cherries"},
}

var colors = []domain.Option{
	{Value: "red", Label: "Red", Emoji: "🔴"},
	{Value: "blue", Label: "Blue", Emoji: "🔵"},
	{Value: "green", Label: "Green", Emoji: "🟢"},
	{Value: "yellow", Label: "Yellow", Emoji: "🟡"},
	{Value: "purple", Label: "Purple", Emoji: "🟣"},
	{Value: "brown", Label: "Brown", Emoji: "🟤"},
	{Value: "orange", Label: "Orange", Emoji: "🟠"},
	{Value: "black", Label: "Black", Emoji: "⚫"},
	{Value: "white", Label: "White", Emoji: "⚪"},
	{Value: "pink", Label: "Pink", Emoji: "🩷"},
}

var shapes = []domain.Option{
	{Value: "circle", Label: "Circle", Emoji: "⚪"},
	{Value: "square", Label: "Square", Emoji: "⬛"},
	{Value: "triangle", Label: "Triangle", Emoji: "🔺"},
	{Value: "star", Label: "Star", Emoji: "⭐"},
	{Value: "heart", Label: "Heart", Emoji: "❤️"},
	{Value: "oval", Label: "Oval", Emoji: "🥚"},
}

var letters = func() []domain.Option {
	out := make([]domain.Option, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, domain.Option{Value: string(c), Label: string(c)})
	}
	return out
}()

type animalPair struct {
	id     string
	animal string
	food   string
}

var animals = []animalPair{
	{"monkey", "🐒", "🍌"},
	{"cat", "🐱", "🐟"},
	{"rabbit", "🐰", "🥕"},
	{"dog", "🐶", "🦴"},
	{"cow", "🐮", "🌿"},
	{"bee", "🐝", "🌻"},
	{"mouse", "🐭", "🧀"},
	{"panda", "🐼", "🎋"},
}

var memorySymbols = []string{"🐶", "🐱", "🐵", "🐰", "🐻", "🦊", "🐼", "🐯", "🦁", "🐸", "🐷"}

// mazeLayout is the rabbit maze. Exactly one goal cell is reachable from the
// start under 4-directional movement.
var mazeLayout = [][]int{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 2, 0, 0, 1, 0, 0, 0, 0, 1},
	{1, 1, 1, 0, 1, 0, 1, 1, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1, 0, 1},
	{1, 0, 1, 1, 1, 1, 0, 1, 0, 1},
	{1, 0, 1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 1, 0, 1, 1, 1, 1, 0, 1},
	{1, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	{1, 1, 1, 0, 0, 0, 1, 1, 3, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
}

var mazeStart = domain.Point{X: 1, Y: 1}

func copyLayout(layout [][]int) [][]int {
	out := make([][]int, len(layout))
	for i, row := range layout {
		out[i] = append([]int(nil), row...)
	}
	return out
}
