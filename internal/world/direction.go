package world

import "strings"

// Direction is one of the fixed set of exit directions. The declaration
// order is the canonical display order for exit listings.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	Up
	Down
)

var directionNames = map[Direction]string{
	North: "north",
	East:  "east",
	South: "south",
	West:  "west",
	Up:    "up",
	Down:  "down",
}

// Directions returns every direction in canonical order.
func Directions() []Direction {
	return []Direction{North, East, South, West, Up, Down}
}

func (d Direction) String() string {
	return directionNames[d]
}

// ParseDirection maps a full direction name to its Direction. Movement
// shorthand is handled by the command synonym table, not here.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "north":
		return North, true
	case "east":
		return East, true
	case "south":
		return South, true
	case "west":
		return West, true
	case "up":
		return Up, true
	case "down":
		return Down, true
	default:
		return 0, false
	}
}
