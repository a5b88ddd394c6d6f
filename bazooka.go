package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BazookaConfig struct {
	Damage          float64 `json:"damage"`
	Range           float64 `json:"range"`
	FireRate        float64 `json:"fireRate"`
	ClipSize        int     `json:"clipSize"`
	ReloadDuration  float64 `json:"reloadDuration"`
	ProjectileSpeed float64 `json:"projectileSpeed"`
	SplashRadius    float64 `json:"splashRadius"`
	SplashDamage    float64 `json:"splashDamage"`
	Recoil          float64 `json:"recoil"`
}

func DefaultBazookaConfig() BazookaConfig {
	return BazookaConfig{
		Damage:          40,
		Range:           600,
		FireRate:        1.5,
		ClipSize:        4,
		ReloadDuration:  2.5,
		ProjectileSpeed: 220,
		SplashRadius:    12,
		SplashDamage:    20,
		Recoil:          0.6,
	}
}

// Bazooka fires rockets from a clip and reloads when it runs dry
type Bazooka struct {
	weaponBase
	Config BazookaConfig

	Muzzle VecFunc
	Aim    VecFunc
	OnFire ShotFunc

	manager *EntityManager
	ammo    int
	reload  float64
	rockets []*Rocket
}

func NewBazooka(owner Positioned, manager *EntityManager, cfg BazookaConfig) *Bazooka {
	return &Bazooka{
		weaponBase: weaponBase{owner: owner, world: manager.world},
		Config:     cfg,
		manager:    manager,
		ammo:       cfg.ClipSize,
	}
}

func (b *Bazooka) Ammo() int { return b.ammo }

func (b *Bazooka) Reloading() bool { return b.reload > 0 }

// InFlight returns the rockets that have not detonated yet
func (b *Bazooka) InFlight() []*Rocket {
	return b.rockets
}

func (b *Bazooka) Update(dt float64) {
	if b.owner == nil {
		return
	}
	if b.cooldown > 0 {
		b.cooldown = math.Max(0, b.cooldown-dt)
	}
	if b.reload > 0 {
		b.reload = math.Max(0, b.reload-dt)
		if b.reload == 0 {
			b.ammo = b.Config.ClipSize
		}
	}
	b.pruneRockets()
	if !b.firing || !b.enabled || b.cooldown > 0 || b.reload > 0 || b.ammo <= 0 {
		return
	}
	b.launch()
	if b.Config.FireRate > 0 {
		b.cooldown = 1 / b.Config.FireRate
	}
	b.ammo--
	if b.ammo == 0 {
		b.reload = b.Config.ReloadDuration
		b.firing = false
	}
}

func (b *Bazooka) launch() *Rocket {
	origin, dir := aimFrom(b.owner, b.Muzzle, b.Aim)
	r := &Rocket{
		Body:     newBody(origin),
		launcher: b,
		origin:   origin,
		vel:      dir.Mul(b.Config.ProjectileSpeed),
	}
	r.Rot = lookRotation(dir)
	b.manager.world.Add(r)
	b.rockets = append(b.rockets, r)

	if rc, ok := b.owner.(Recoiler); ok && b.Config.Recoil > 0 {
		rc.ApplyRecoil(b.Config.Recoil)
	}
	return r
}

func (b *Bazooka) pruneRockets() {
	live := b.rockets[:0]
	for _, r := range b.rockets {
		if !r.done {
			live = append(live, r)
		}
	}
	for i := len(live); i < len(b.rockets); i++ {
		b.rockets[i] = nil
	}
	b.rockets = live
}

// Destroy removes rockets still in flight
func (b *Bazooka) Destroy() {
	for _, r := range b.rockets {
		if !r.done {
			r.done = true
			b.manager.Destroy(r)
		}
	}
	b.rockets = nil
}

// Rocket is a bazooka projectile. It sweeps its path each tick and detonates on the
// first collider it meets or at the end of its range.
type Rocket struct {
	Body
	launcher  *Bazooka
	origin    mgl64.Vec3
	vel       mgl64.Vec3
	travelled float64
	done      bool
}

func (r *Rocket) Velocity() *mgl64.Vec3 { return &r.vel }

func (r *Rocket) Update(dt float64) {
	if r.done {
		return
	}
	b := r.launcher
	step := r.vel.Mul(dt)
	stepLen := step.Len()
	if remaining := b.Config.Range - r.travelled; stepLen > remaining {
		step = step.Mul(remaining / stepLen)
		stepLen = remaining
	}
	from, to := r.Pos, r.Pos.Add(step)

	var hit Entity
	best := math.Inf(1)
	for _, e := range b.world.QueryNearby(from.Add(step.Mul(0.5)), stepLen/2+b.world.MaxColliderRadius()) {
		if e == Entity(r) || !hitFilter(b.owner, e) {
			continue
		}
		rad, _ := colliderOf(e)
		t, ok := segmentSphereIntersect(from, to, e.(Positioned).Position(), rad)
		if ok && t < best {
			hit, best = e, t
		}
	}

	if hit != nil {
		r.Pos = from.Add(step.Mul(best))
		r.detonate(hit)
		return
	}
	r.Pos = to
	r.travelled += stepLen
	if r.travelled >= b.Config.Range-1e-9 {
		r.detonate(nil)
	}
}

func (r *Rocket) detonate(direct Entity) {
	b := r.launcher
	r.done = true
	r.Hidden = true
	point := r.Pos

	if b.OnFire != nil {
		b.OnFire(Shot{Origin: r.origin, HitPoint: point, Hit: direct})
	}
	if d, ok := direct.(Damageable); ok {
		d.Damage(b.Config.Damage, b.owner)
	}
	if b.Config.SplashRadius > 0 && b.Config.SplashDamage > 0 {
		for _, e := range b.world.QueryNearby(point, b.Config.SplashRadius) {
			if e == direct || e == Entity(r) || !hitFilter(b.owner, e) {
				continue
			}
			d, ok := e.(Damageable)
			if !ok {
				continue
			}
			dist := Distance(point, e.(Positioned).Position())
			if dist >= b.Config.SplashRadius {
				continue
			}
			d.Damage(b.Config.SplashDamage*(1-dist/b.Config.SplashRadius), b.owner)
		}
	}
	b.manager.Destroy(r)
}
