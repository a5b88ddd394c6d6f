package main

import "math"

type LaserConfig struct {
	Damage   float64 `json:"damage"`
	Range    float64 `json:"range"`
	FireRate float64 `json:"fireRate"`
	Recoil   float64 `json:"recoil"`
}

func DefaultLaserConfig() LaserConfig {
	return LaserConfig{Damage: 10, Range: 500, FireRate: 4, Recoil: 0.2}
}

// Laser is a hitscan weapon. Each shot damages at most one entity, the nearest
// collider the beam enters within range.
type Laser struct {
	weaponBase
	Config LaserConfig

	// Scale factors applied on top of Config, used by enrage
	DamageScale float64
	RateScale   float64

	Muzzle VecFunc
	Aim    VecFunc
	OnFire ShotFunc

	shots int
}

func NewLaser(owner Positioned, world *World, cfg LaserConfig) *Laser {
	return &Laser{
		weaponBase:  weaponBase{owner: owner, world: world, enabled: true},
		Config:      cfg,
		DamageScale: 1,
		RateScale:   1,
	}
}

// Shots returns how many times the laser has fired
func (l *Laser) Shots() int {
	return l.shots
}

func (l *Laser) Update(dt float64) {
	if l.owner == nil || l.world == nil {
		return
	}
	if l.cooldown > 0 {
		l.cooldown = math.Max(0, l.cooldown-dt)
	}
	if !l.firing || !l.enabled || l.cooldown > 0 {
		return
	}
	l.Fire()
	rate := l.Config.FireRate * l.RateScale
	if rate > 0 {
		l.cooldown = 1 / rate
	}
}

// Fire resolves one shot immediately, ignoring the cooldown
func (l *Laser) Fire() Shot {
	origin, dir := aimFrom(l.owner, l.Muzzle, l.Aim)
	hit, dist := castRay(l.world, l.owner, origin, dir, l.Config.Range)
	shot := Shot{Origin: origin, HitPoint: origin.Add(dir.Mul(dist)), Hit: hit}
	l.shots++

	if r, ok := l.owner.(Recoiler); ok && l.Config.Recoil > 0 {
		r.ApplyRecoil(l.Config.Recoil)
	}
	if l.OnFire != nil {
		l.OnFire(shot)
	}
	if d, ok := hit.(Damageable); ok {
		d.Damage(l.Config.Damage*l.DamageScale, l.owner)
	}
	return shot
}
