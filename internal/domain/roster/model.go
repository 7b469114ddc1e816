package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Position represents the on-pitch roles used for balancing.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DF"
	PositionMidfielder Position = "MID"
	PositionStriker    Position = "ST"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionStriker:    {},
}

// ParsePosition maps a raw position string onto the enum. Input is
// trimmed and upper-cased before lookup.
func ParsePosition(raw string) (Position, bool) {
	pos := Position(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := AllPositions[pos]
	return pos, ok
}

const (
	MinSkill = 1
	MaxSkill = 5
	MinAge   = 5
	MaxAge   = 100

	// DefaultSkill is applied only when the caller explicitly opts in;
	// an absent skill is otherwise a hard validation failure.
	DefaultSkill = 3
)

var ErrInvalidEntry = errors.New("invalid roster entry")

// Entry is one raw check-in record before normalization. Zero values
// mean "absent" for Skill, Age, and AltPosition.
type Entry struct {
	ID           string
	Name         string
	Skill        int
	Age          int
	MainPosition string
	AltPosition  string
}

// Player is a normalized roster member ready for balancing.
type Player struct {
	ID           string
	Name         string
	Skill        int
	Age          int
	MainPosition Position
	AltPosition  Position // empty when the player has no alternate
}

// GKCapable reports whether the player can keep goal, by main or
// alternate position.
func (p Player) GKCapable() bool {
	return p.MainPosition == PositionGoalkeeper || p.AltPosition == PositionGoalkeeper
}

// Options controls normalization behavior.
type Options struct {
	// ApplyDefaultSkill substitutes DefaultSkill for entries missing a
	// skill value instead of rejecting them.
	ApplyDefaultSkill bool
}

// Normalize validates raw entries and shapes them into Players. The
// output is deduplicated by id keeping the first occurrence, and keeps
// the input order otherwise. Every rejected entry is reported with the
// offending id (or index when the id itself is missing).
func Normalize(entries []Entry, opts Options) ([]Player, error) {
	players := make([]Player, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for i, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d: player id is required", ErrInvalidEntry, i)
		}
		if _, dup := seen[id]; dup {
			continue
		}

		if strings.TrimSpace(entry.MainPosition) == "" {
			return nil, fmt.Errorf("%w: player %s: main position is required", ErrInvalidEntry, id)
		}
		main, ok := ParsePosition(entry.MainPosition)
		if !ok {
			return nil, fmt.Errorf("%w: player %s: unknown position %q", ErrInvalidEntry, id, entry.MainPosition)
		}

		var alt Position
		if strings.TrimSpace(entry.AltPosition) != "" {
			alt, ok = ParsePosition(entry.AltPosition)
			if !ok {
				return nil, fmt.Errorf("%w: player %s: unknown alternate position %q", ErrInvalidEntry, id, entry.AltPosition)
			}
			if alt == main {
				alt = ""
			}
		}

		if entry.Age == 0 {
			return nil, fmt.Errorf("%w: player %s: age is required", ErrInvalidEntry, id)
		}
		if entry.Age < MinAge || entry.Age > MaxAge {
			return nil, fmt.Errorf("%w: player %s: age must be between %d and %d, got %d", ErrInvalidEntry, id, MinAge, MaxAge, entry.Age)
		}

		skill := entry.Skill
		if skill == 0 {
			if !opts.ApplyDefaultSkill {
				return nil, fmt.Errorf("%w: player %s: skill is required", ErrInvalidEntry, id)
			}
			skill = DefaultSkill
		}
		if skill < MinSkill || skill > MaxSkill {
			return nil, fmt.Errorf("%w: player %s: skill must be between %d and %d, got %d", ErrInvalidEntry, id, MinSkill, MaxSkill, skill)
		}

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = id
		}

		seen[id] = struct{}{}
		players = append(players, Player{
			ID:           id,
			Name:         name,
			Skill:        skill,
			Age:          entry.Age,
			MainPosition: main,
			AltPosition:  alt,
		})
	}

	return players, nil
}

// CountGKCapable returns how many players can keep goal.
func CountGKCapable(players []Player) int {
	count := 0
	for _, p := range players {
		if p.GKCapable() {
			count++
		}
	}
	return count
}
