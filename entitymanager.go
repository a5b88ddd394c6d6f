package main

import (
	"errors"
	"fmt"
)

var (
	ErrNoFactory         = errors.New("entity factory is not set")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// SpawnParams carries per-spawn data to a factory
type SpawnParams map[string]any

// EntityFactory builds entities by type name
type EntityFactory interface {
	Create(kind string, params SpawnParams) (Entity, error)
}

// FactoryFunc adapts a function to EntityFactory
type FactoryFunc func(kind string, params SpawnParams) (Entity, error)

func (f FactoryFunc) Create(kind string, params SpawnParams) (Entity, error) {
	return f(kind, params)
}

// EntityManager is the spawn/destroy indirection over a World
type EntityManager struct {
	world   *World
	factory EntityFactory
}

func NewEntityManager(world *World, factory EntityFactory) *EntityManager {
	return &EntityManager{world: world, factory: factory}
}

// SetFactory attaches the factory after construction
func (m *EntityManager) SetFactory(f EntityFactory) {
	m.factory = f
}

// Spawn creates an entity through the factory and adds it to the world. A missing
// factory or an unknown type is a wiring bug and is returned as an error.
func (m *EntityManager) Spawn(kind string, params SpawnParams) (Entity, error) {
	if m.factory == nil {
		return nil, ErrNoFactory
	}
	e, err := m.factory.Create(kind, params)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", kind, err)
	}
	if e == nil {
		return nil, fmt.Errorf("spawn %q: %w", kind, ErrUnknownEntityType)
	}
	m.world.Add(e)
	return e, nil
}

// MustSpawn is Spawn for startup wiring, where an error means a programming mistake
func (m *EntityManager) MustSpawn(kind string, params SpawnParams) Entity {
	e, err := m.Spawn(kind, params)
	if err != nil {
		panic(err)
	}
	return e
}

// Destroy removes e from the world and lets it release what it owns
func (m *EntityManager) Destroy(e Entity) {
	m.world.Remove(e)
	if d, ok := e.(Destroyer); ok {
		d.Destroy()
	}
}

// Find returns the first member (by id) matching pred, or nil
func (m *EntityManager) Find(pred func(Entity) bool) Entity {
	for _, e := range m.world.Query() {
		if pred(e) {
			return e
		}
	}
	return nil
}
