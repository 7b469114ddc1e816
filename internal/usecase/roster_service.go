package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/optimizer"
)

type ValidateRosterInput struct {
	Players           []roster.Entry
	ApplyDefaultSkill bool
}

// RosterValidation previews what a generate call would do with the
// submitted roster. Errors list entries that would be rejected outright;
// Warnings flag rosters that solve but deserve a second look.
type RosterValidation struct {
	Valid       bool
	PlayerCount int
	TeamSizes   []int
	SubCount    int
	Errors      []string
	Warnings    []string
}

type RosterService struct{}

func NewRosterService() *RosterService {
	return &RosterService{}
}

// Validate normalizes every entry individually so admins see all
// rejections at once instead of fixing them one request at a time.
func (s *RosterService) Validate(ctx context.Context, input ValidateRosterInput) RosterValidation {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Validate")
	defer span.End()

	opts := roster.Options{ApplyDefaultSkill: input.ApplyDefaultSkill}
	out := RosterValidation{}

	for _, entry := range input.Players {
		if _, err := roster.Normalize([]roster.Entry{entry}, opts); err != nil {
			out.Errors = append(out.Errors, err.Error())
		}
	}
	if len(out.Errors) > 0 {
		return out
	}
	out.Valid = true

	players, err := roster.Normalize(input.Players, opts)
	if err != nil {
		out.Valid = false
		out.Errors = append(out.Errors, err.Error())
		return out
	}
	out.PlayerCount = len(players)
	if dropped := len(input.Players) - len(players); dropped > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d duplicate entries ignored, first occurrence kept", dropped))
	}

	topo, err := optimizer.PlanTopology(len(players))
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("not enough players to form teams: have %d, need %d", len(players), optimizer.MinPlayersToPlay))
		return out
	}
	out.TeamSizes = topo.TeamSizes
	out.SubCount = topo.SubCount

	capable := roster.CountGKCapable(players)
	teams := topo.TeamCount()
	if capable == 0 {
		out.Warnings = append(out.Warnings, "no goalkeeper-capable players; every team will play without a keeper")
	} else if capable < teams {
		out.Warnings = append(out.Warnings, fmt.Sprintf("only %d goalkeeper-capable players for %d teams", capable, teams))
	}
	return out
}
