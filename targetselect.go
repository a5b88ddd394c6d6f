package main

import (
	"math"
)

// TargetSelector picks a target for owner, or returns nil
type TargetSelector interface {
	Select(owner Positioned) Entity
}

// TargetFunc adapts a function to TargetSelector
type TargetFunc func(owner Positioned) Entity

func (f TargetFunc) Select(owner Positioned) Entity {
	return f(owner)
}

// TieredSelector prefers close threats, then capital ships, then anything within
// engagement range, then the nearest opponent overall.
type TieredSelector struct {
	World    *World
	Opponent Team
	// EmergencyRadius and EngageRadius are derived from the AI profile
	EmergencyRadius float64
	EngageRadius    float64
}

func NewTieredSelector(world *World, opponent Team, profile AIProfile) *TieredSelector {
	return &TieredSelector{
		World:           world,
		Opponent:        opponent,
		EmergencyRadius: math.Max(120, profile.StandoffDistance*0.6),
		EngageRadius:    math.Max(profile.AttackDistance*1.6, 240),
	}
}

type candidate struct {
	e    Entity
	dist float64
}

func (s *TieredSelector) candidates(owner Positioned) []candidate {
	var out []candidate
	origin := owner.Position()
	for _, e := range s.World.Query() {
		if e == Entity(owner) || teamOf(e) != s.Opponent || !isAlive(e) {
			continue
		}
		p, ok := e.(Positioned)
		if !ok {
			continue
		}
		out = append(out, candidate{e: e, dist: Distance(origin, p.Position())})
	}
	return out
}

func nearestWhere(list []candidate, keep func(candidate) bool) Entity {
	var best Entity
	bestDist := math.Inf(1)
	for _, c := range list {
		if keep(c) && c.dist < bestDist {
			best, bestDist = c.e, c.dist
		}
	}
	return best
}

func (s *TieredSelector) Select(owner Positioned) Entity {
	list := s.candidates(owner)
	if len(list) == 0 {
		return nil
	}
	if t := nearestWhere(list, func(c candidate) bool { return c.dist <= s.EmergencyRadius }); t != nil {
		return t
	}
	if t := nearestWhere(list, func(c candidate) bool { return isCapitalShip(c.e) }); t != nil {
		return t
	}
	if t := nearestWhere(list, func(c candidate) bool { return c.dist <= s.EngageRadius }); t != nil {
		return t
	}
	return nearestWhere(list, func(candidate) bool { return true })
}

// NearestSelector returns the nearest alive, visible opponent
type NearestSelector struct {
	World    *World
	Opponent Team
}

func (s *NearestSelector) Select(owner Positioned) Entity {
	var list []candidate
	origin := owner.Position()
	for _, e := range s.World.Query() {
		if teamOf(e) != s.Opponent || !isAlive(e) || !isVisible(e) {
			continue
		}
		if p, ok := e.(Positioned); ok {
			list = append(list, candidate{e: e, dist: Distance(origin, p.Position())})
		}
	}
	return nearestWhere(list, func(candidate) bool { return true })
}
