// Package domain contains core domain types for the Tiny Arcade application.
package domain

import (
	"encoding/json"
	"time"
)

// GameID identifies one of the supported mini-games.
type GameID string

// Supported games.
const (
	GameCountingFruits GameID = "counting_fruits"
	GameColorLearn     GameID = "color_learn"
	GameShapes         GameID = "shape_recognition"
	GameAlphabetQuiz   GameID = "alphabet_quiz"
	GameFindMatch      GameID = "find_match_animals"
	GameMemoryPairs    GameID = "memory_pairs"
	GameMazeRabbit     GameID = "maze_rabbit"
)

// AnonymousPlayer marks an unidentified player. Results of anonymous players
// are never archived to the leaderboard.
const AnonymousPlayer = "anonymous"

// GameKind is the gameplay variant behind a GameID. Every component that
// behaves differently per game switches on the kind, never on the raw id.
type GameKind int

// Game kinds.
const (
	KindUnknown GameKind = iota
	KindCounting
	KindColor
	KindShape
	KindAlphabet
	KindPairMatch
	KindMemoryPairs
	KindMaze
)

var kindNames = map[GameKind]string{
	KindCounting:    "counting",
	KindColor:       "color",
	KindShape:       "shape",
	KindAlphabet:    "alphabet",
	KindPairMatch:   "pair_match",
	KindMemoryPairs: "memory_pairs",
	KindMaze:        "maze",
}

// String returns the wire name of the kind.
func (k GameKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k GameKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode to KindUnknown.
func (k *GameKind) UnmarshalText(text []byte) error {
	*k = KindUnknown
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			break
		}
	}
	return nil
}

// Valid reports whether k is a known kind.
func (k GameKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsQuiz reports whether the kind is one of the sequential quiz variants.
func (k GameKind) IsQuiz() bool {
	switch k {
	case KindCounting, KindColor, KindShape, KindAlphabet:
		return true
	}
	return false
}

// Kind returns the gameplay variant for the game id.
func (id GameID) Kind() GameKind {
	switch id {
	case GameCountingFruits:
		return KindCounting
	case GameColorLearn:
		return KindColor
	case GameShapes:
		return KindShape
	case GameAlphabetQuiz:
		return KindAlphabet
	case GameFindMatch:
		return KindPairMatch
	case GameMemoryPairs:
		return KindMemoryPairs
	case GameMazeRabbit:
		return KindMaze
	}
	return KindUnknown
}

// Rewards holds the point table of a game.
type Rewards struct {
	Correct    int `json:"correct"`
	Completion int `json:"completion"`
}

// AgeRange is an inclusive age band in years.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age falls inside the band.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Game is the static catalog entry of a mini-game.
type Game struct {
	ID            GameID        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Difficulty    string        `json:"difficulty"`
	Ages          AgeRange      `json:"age_range"`
	Icon          string        `json:"icon"`
	Duration      time.Duration `json:"-"`
	QuestionCount int           `json:"question_count"`
	Rewards       Rewards       `json:"rewards"`
}

// DurationSeconds returns the total session duration in whole seconds.
func (g Game) DurationSeconds() int {
	return int(g.Duration / time.Second)
}

// MarshalJSON adds the duration in seconds to the encoded game.
func (g Game) MarshalJSON() ([]byte, error) {
	type plain Game
	return json.Marshal(struct {
		plain
		DurationSeconds int `json:"duration_seconds"`
	}{plain(g), g.DurationSeconds()})
}
