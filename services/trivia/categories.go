package trivia

import (
	"sort"
	"strconv"
	"strings"
)

// categoryIDs maps the category names the clients offer to Open Trivia DB ids.
var categoryIDs = map[string]int{
	"general knowledge": 9,
	"books":             10,
	"movies":            11,
	"music":             12,
	"science":           17,
	"nature":            17,
	"technology":        18,
	"computer science":  18,
	"mathematics":       19,
	"sports":            21,
	"geography":         22,
	"history":           23,
	"politics":          24,
	"art":               25,
}

var categoryNames = []string{
	"General Knowledge", "Science", "Mathematics", "History", "Geography",
	"Sports", "Politics", "Music", "Art", "Technology", "Books", "Movies",
	"Computer Science", "Nature",
}

// CategoryID resolves a category name (case-insensitive) or a numeric Open
// Trivia DB id. An empty name or "any" means no category filter and returns
// (0, true).
func CategoryID(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "any" {
		return 0, true
	}
	if id, ok := categoryIDs[key]; ok {
		return id, true
	}
	if id, err := strconv.Atoi(key); err == nil && id > 0 {
		return id, true
	}
	return 0, false
}

// Categories lists the supported category names, sorted.
func Categories() []string {
	out := append([]string(nil), categoryNames...)
	sort.Strings(out)
	return out
}

// ValidDifficulty accepts "", "any", easy, medium and hard.
func ValidDifficulty(difficulty string) bool {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "", "any", "easy", "medium", "hard":
		return true
	}
	return false
}
