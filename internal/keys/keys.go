package keys

import (
	"strconv"

	"github.com/gosimple/slug"
)

// CardName produces a canonical key for a card name: lower-cased ASCII with
// separators collapsed to dashes, so "Fire Elf" and "fire-elf" collide.
func CardName(name string) string {
	return slug.Make(name)
}

// Scoreboard is the request-collapsing key for a scoreboard page.
func Scoreboard(limit int) string {
	return "top:" + strconv.Itoa(limit)
}
