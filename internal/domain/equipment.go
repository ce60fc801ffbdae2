package domain

import "strings"

type IconKind string

const (
	IconBall   IconKind = "ball"
	IconRacket IconKind = "racket"
	IconBasket IconKind = "basket"
)

// Equipment is a read-mostly snapshot of a lendable item. Stock counts are
// owned by the server; the client only ever replaces the whole list.
type Equipment struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Available int      `json:"available"`
	Total     int      `json:"total"`
	Icon      IconKind `json:"icon"`
}

// IconFor picks an icon from the server-provided key, falling back to a
// heuristic on the display name.
func IconFor(key, name string) IconKind {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "ball":
		return IconBall
	case "racket":
		return IconRacket
	case "basket":
		return IconBasket
	}

	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "bola") && strings.Contains(n, "futsal"):
		return IconBall
	case strings.Contains(n, "raket"):
		return IconRacket
	case strings.Contains(n, "basket"):
		return IconBasket
	default:
		return IconBall
	}
}
