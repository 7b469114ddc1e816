package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
)

const DemoOrgID = "org-senayan-weekend"

// SeedRosterEntries returns the demo check-in list: sixteen players with
// three goalkeeper-capable members, enough for two teams of seven plus
// two substitutes.
func SeedRosterEntries() []roster.Entry {
	return []roster.Entry{
		{ID: "pm-01", Name: "Andri Wibowo", Skill: 4, Age: 29, MainPosition: "GK"},
		{ID: "pm-02", Name: "Teja Saputra", Skill: 3, Age: 34, MainPosition: "GK", AltPosition: "DF"},
		{ID: "pm-03", Name: "Hansamu Pratama", Skill: 4, Age: 27, MainPosition: "DF"},
		{ID: "pm-04", Name: "Nick Halim", Skill: 5, Age: 31, MainPosition: "DF", AltPosition: "MID"},
		{ID: "pm-05", Name: "Ricky Fajar", Skill: 2, Age: 22, MainPosition: "DF"},
		{ID: "pm-06", Name: "Dimas Nugroho", Skill: 3, Age: 25, MainPosition: "DF"},
		{ID: "pm-07", Name: "Marc Santoso", Skill: 5, Age: 30, MainPosition: "MID", AltPosition: "ST"},
		{ID: "pm-08", Name: "Bruno Siregar", Skill: 4, Age: 28, MainPosition: "MID"},
		{ID: "pm-09", Name: "Eber Gunawan", Skill: 3, Age: 36, MainPosition: "MID", AltPosition: "DF"},
		{ID: "pm-10", Name: "Maciej Hartono", Skill: 2, Age: 19, MainPosition: "MID"},
		{ID: "pm-11", Name: "Gustavo Ramdani", Skill: 5, Age: 26, MainPosition: "ST", AltPosition: "MID"},
		{ID: "pm-12", Name: "David Mulyadi", Skill: 4, Age: 33, MainPosition: "ST"},
		{ID: "pm-13", Name: "Ilija Permana", Skill: 3, Age: 24, MainPosition: "ST"},
		{ID: "pm-14", Name: "Sandi Kurnia", Skill: 1, Age: 17, MainPosition: "MID"},
		{ID: "pm-15", Name: "Yogi Prasetyo", Skill: 2, Age: 38, MainPosition: "DF", AltPosition: "GK"},
		{ID: "pm-16", Name: "Rafael Simanjuntak", Skill: 3, Age: 23, MainPosition: "ST", AltPosition: "DF"},
	}
}

// RosterProvider serves check-in rosters from memory. Dates without an
// explicit roster fall back to the seed list, which keeps local
// environments usable without a check-in backend.
type RosterProvider struct {
	mu       sync.RWMutex
	rosters  map[string][]roster.Entry
	fallback []roster.Entry
}

func NewRosterProvider(fallback []roster.Entry) *RosterProvider {
	return &RosterProvider{
		rosters:  make(map[string][]roster.Entry),
		fallback: append([]roster.Entry(nil), fallback...),
	}
}

func (p *RosterProvider) SetRoster(orgID, runDate string, entries []roster.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rosters[teamRunKey(orgID, runDate)] = append([]roster.Entry(nil), entries...)
}

func (p *RosterProvider) FetchRoster(_ context.Context, orgID, runDate string) ([]roster.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if entries, ok := p.rosters[teamRunKey(orgID, runDate)]; ok {
		return append([]roster.Entry(nil), entries...), nil
	}
	if len(p.fallback) > 0 {
		return append([]roster.Entry(nil), p.fallback...), nil
	}
	return nil, fmt.Errorf("no roster recorded for %s on %s", orgID, runDate)
}
