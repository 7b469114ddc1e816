package roster

import (
	"errors"
	"testing"
)

func validEntries() []Entry {
	return []Entry{
		{ID: "p1", Name: "Andi", Skill: 4, Age: 28, MainPosition: "GK"},
		{ID: "p2", Name: "Budi", Skill: 3, Age: 31, MainPosition: "DF", AltPosition: "MID"},
		{ID: "p3", Name: "Candra", Skill: 5, Age: 24, MainPosition: "MID"},
		{ID: "p4", Name: "Dimas", Skill: 2, Age: 35, MainPosition: "ST", AltPosition: "GK"},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func([]Entry, *Options)
		targetErr error
	}{
		{
			name:      "valid entries",
			mutate:    func(_ []Entry, _ *Options) {},
			targetErr: nil,
		},
		{
			name: "missing id",
			mutate: func(entries []Entry, _ *Options) {
				entries[1].ID = "   "
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "missing main position",
			mutate: func(entries []Entry, _ *Options) {
				entries[2].MainPosition = ""
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "unknown main position",
			mutate: func(entries []Entry, _ *Options) {
				entries[0].MainPosition = "WINGER"
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "unknown alternate position",
			mutate: func(entries []Entry, _ *Options) {
				entries[1].AltPosition = "LB"
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "missing age",
			mutate: func(entries []Entry, _ *Options) {
				entries[3].Age = 0
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "age below range",
			mutate: func(entries []Entry, _ *Options) {
				entries[0].Age = 4
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "age above range",
			mutate: func(entries []Entry, _ *Options) {
				entries[0].Age = 101
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "missing skill without default",
			mutate: func(entries []Entry, _ *Options) {
				entries[2].Skill = 0
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "missing skill with default applied",
			mutate: func(entries []Entry, opts *Options) {
				entries[2].Skill = 0
				opts.ApplyDefaultSkill = true
			},
			targetErr: nil,
		},
		{
			name: "skill above range",
			mutate: func(entries []Entry, _ *Options) {
				entries[1].Skill = 6
			},
			targetErr: ErrInvalidEntry,
		},
		{
			name: "skill below range even with default",
			mutate: func(entries []Entry, opts *Options) {
				entries[1].Skill = -1
				opts.ApplyDefaultSkill = true
			},
			targetErr: ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := append([]Entry(nil), validEntries()...)
			var opts Options
			tt.mutate(entries, &opts)

			players, err := Normalize(entries, opts)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(players) != len(entries) {
					t.Fatalf("expected %d players, got %d", len(entries), len(players))
				}
				return
			}

			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestNormalizeDefaultSkillValue(t *testing.T) {
	entries := []Entry{{ID: "p1", Age: 30, MainPosition: "MID"}}

	players, err := Normalize(entries, Options{ApplyDefaultSkill: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if players[0].Skill != DefaultSkill {
		t.Fatalf("expected default skill %d, got %d", DefaultSkill, players[0].Skill)
	}
}

func TestNormalizeDeduplicatesKeepingFirst(t *testing.T) {
	entries := []Entry{
		{ID: "p1", Skill: 5, Age: 20, MainPosition: "GK"},
		{ID: "p2", Skill: 3, Age: 25, MainPosition: "DF"},
		{ID: "p1", Skill: 1, Age: 40, MainPosition: "ST"},
		{ID: "p3", Skill: 2, Age: 30, MainPosition: "MID"},
	}

	players, err := Normalize(entries, Options{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("expected 3 players after dedup, got %d", len(players))
	}
	if players[0].ID != "p1" || players[1].ID != "p2" || players[2].ID != "p3" {
		t.Fatalf("unexpected order: %v", players)
	}
	if players[0].Skill != 5 {
		t.Fatalf("expected first occurrence kept, got skill %d", players[0].Skill)
	}
}

func TestNormalizeAltEqualMainDropsAlt(t *testing.T) {
	entries := []Entry{{ID: "p1", Skill: 3, Age: 30, MainPosition: "MID", AltPosition: "mid"}}

	players, err := Normalize(entries, Options{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if players[0].AltPosition != "" {
		t.Fatalf("expected alternate dropped, got %q", players[0].AltPosition)
	}
}

func TestGKCapable(t *testing.T) {
	tests := []struct {
		name   string
		player Player
		want   bool
	}{
		{name: "main goalkeeper", player: Player{MainPosition: PositionGoalkeeper}, want: true},
		{name: "alternate goalkeeper", player: Player{MainPosition: PositionStriker, AltPosition: PositionGoalkeeper}, want: true},
		{name: "outfield only", player: Player{MainPosition: PositionDefender, AltPosition: PositionMidfielder}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.player.GKCapable(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCountGKCapable(t *testing.T) {
	players := []Player{
		{ID: "p1", MainPosition: PositionGoalkeeper},
		{ID: "p2", MainPosition: PositionDefender, AltPosition: PositionGoalkeeper},
		{ID: "p3", MainPosition: PositionMidfielder},
	}
	if got := CountGKCapable(players); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
