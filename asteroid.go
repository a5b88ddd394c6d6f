package main

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type ObstacleConfig struct {
	Count         int        `json:"count"`
	RadiusRange   [2]float64 `json:"radiusRange"`
	DistanceRange [2]float64 `json:"distanceRange"`
}

func DefaultObstacleConfig() ObstacleConfig {
	return ObstacleConfig{Count: 30, RadiusRange: [2]float64{8, 30}, DistanceRange: [2]float64{200, 800}}
}

// Asteroid is a fixed obstacle. It never moves and cannot be damaged or targeted.
type Asteroid struct {
	Body
	Radius float64
}

// NewAsteroid places an asteroid of nominal radius at pos. The collider grows a
// little past the nominal radius for surface roughness.
func NewAsteroid(pos mgl64.Vec3, radius float64, rng *rand.Rand) *Asteroid {
	rough := 1.0
	if rng != nil {
		rough += rng.Float64() * 0.125
	}
	a := &Asteroid{Body: newBody(pos), Radius: radius * rough}
	if rng != nil {
		a.Rot = eulerYXZ(rng.Float64()*math.Pi, rng.Float64()*math.Pi, rng.Float64()*math.Pi)
	}
	return a
}

func (a *Asteroid) ColliderRadius() float64 { return a.Radius }

func (a *Asteroid) Targetable() bool { return false }

func randomInRange(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// ObstacleField scatters cfg.Count asteroids uniformly over spherical shells around
// the origin.
func ObstacleField(cfg ObstacleConfig, rng *rand.Rand) []SpawnParams {
	out := make([]SpawnParams, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		radius := randomInRange(rng, cfg.RadiusRange[0], cfg.RadiusRange[1])
		dist := randomInRange(rng, cfg.DistanceRange[0], cfg.DistanceRange[1])
		theta := rng.Float64() * math.Pi * 2
		phi := math.Acos(2*rng.Float64() - 1)
		pos := mgl64.Vec3{
			dist * math.Sin(phi) * math.Cos(theta),
			dist * math.Cos(phi),
			dist * math.Sin(phi) * math.Sin(theta),
		}
		out = append(out, SpawnParams{"position": pos, "radius": radius})
	}
	return out
}
