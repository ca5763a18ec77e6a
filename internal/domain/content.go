package domain

// Maze cell codes.
const (
	CellOpen  = 0
	CellWall  = 1
	CellStart = 2
	CellGoal  = 3
)

// MazeCompleted is the submission value of a maze completion event.
const MazeCompleted = "completed"

// Option is one selectable answer of a quiz item.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// PairCard is one card of a pair-matching column. Cards with the same PairID
// belong together.
type PairCard struct {
	PairID string `json:"pair_id"`
	Emoji  string `json:"emoji"`
}

// Card is one card of a memory deck.
type Card struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// Point is a grid coordinate. X is the column, Y the row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ContentItem is one generated round of a game. Items are created by the
// content generator and never mutated after being attached to a session.
type ContentItem struct {
	ID     string   `json:"id"`
	Kind   GameKind `json:"kind"`
	Title  string   `json:"title,omitempty"`
	Answer string   `json:"answer"`

	// Quiz presentation.
	Emoji   string   `json:"emoji,omitempty"`
	Count   int      `json:"count,omitempty"`
	Options []Option `json:"options,omitempty"`

	// Pair-matching presentation.
	Left  []PairCard `json:"left,omitempty"`
	Right []PairCard `json:"right,omitempty"`

	// Memory presentation.
	Cards []Card `json:"cards,omitempty"`

	// Maze presentation.
	Layout      [][]int `json:"layout,omitempty"`
	Start       Point   `json:"start"`
	FinishValue int     `json:"finish_value,omitempty"`
}

// Slots returns how many answers the item accepts: one per pair for the
// matching games, one otherwise.
func (c ContentItem) Slots() int {
	switch c.Kind {
	case KindPairMatch:
		return len(c.Left)
	case KindMemoryPairs:
		return len(c.Cards) / 2
	}
	return 1
}

// Clone returns a deep copy of the item.
func (c ContentItem) Clone() ContentItem {
	out := c
	out.Options = append([]Option(nil), c.Options...)
	out.Left = append([]PairCard(nil), c.Left...)
	out.Right = append([]PairCard(nil), c.Right...)
	out.Cards = append([]Card(nil), c.Cards...)
	if c.Layout != nil {
		out.Layout = make([][]int, len(c.Layout))
		for i, row := range c.Layout {
			out.Layout[i] = append([]int(nil), row...)
		}
	}
	return out
}

// CloneItems deep-copies a content set.
func CloneItems(items []ContentItem) []ContentItem {
	if items == nil {
		return nil
	}
	out := make([]ContentItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
