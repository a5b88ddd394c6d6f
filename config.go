package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
)

var ErrInvalidConfig = errors.New("invalid config")

type SpatialConfig struct {
	CellSize float64 `json:"cellSize"` // 0 disables the grid
}

type LoopConfig struct {
	FixedStep     float64 `json:"fixedStep"`
	MaxFrameDelta float64 `json:"maxFrameDelta"`
}

type CollisionConfig struct {
	Restitution float64 `json:"restitution"`
	Slop        float64 `json:"slop"`
}

// Config holds every tunable of a battle
type Config struct {
	Gameplay    GameplayConfig         `json:"gameplay"`
	Player      PlayerConfig           `json:"player"`
	Enemies     map[string]FighterType `json:"enemies"`
	Allies      map[string]FighterType `json:"allies"`
	Battleships BattleshipConfig       `json:"battleships"`
	Decoy       DecoyConfig            `json:"decoy"`
	Obstacles   ObstacleConfig         `json:"obstacles"`
	Targeting   TargetingConfig        `json:"targeting"`
	Spatial     SpatialConfig          `json:"spatial"`
	Collision   CollisionConfig        `json:"collision"`
	Loop        LoopConfig             `json:"loop"`
}

// DefaultConfig returns the stock battle settings
func DefaultConfig() Config {
	return Config{
		Gameplay:    DefaultGameplayConfig(),
		Player:      DefaultPlayerConfig(),
		Enemies:     DefaultEnemyTypes(),
		Allies:      DefaultAllyTypes(),
		Battleships: DefaultBattleshipConfig(),
		Decoy:       DecoyConfig{RespawnDelay: 6},
		Obstacles:   DefaultObstacleConfig(),
		Targeting:   DefaultTargetingConfig(),
		Spatial:     SpatialConfig{CellSize: 50},
		Collision:   CollisionConfig{Restitution: 0.6, Slop: 0.01},
		Loop:        LoopConfig{FixedStep: FixedStep, MaxFrameDelta: MaxFrameDelta},
	}
}

// LoadConfig reads a JSON file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Loop.FixedStep <= 0:
		return fmt.Errorf("%w: loop.fixedStep must be positive", ErrInvalidConfig)
	case c.Loop.MaxFrameDelta < c.Loop.FixedStep:
		return fmt.Errorf("%w: loop.maxFrameDelta below fixedStep", ErrInvalidConfig)
	case c.Gameplay.Lives <= 0:
		return fmt.Errorf("%w: gameplay.lives must be at least 1", ErrInvalidConfig)
	case c.Spatial.CellSize < 0:
		return fmt.Errorf("%w: spatial.cellSize is negative", ErrInvalidConfig)
	case c.Player.HP <= 0:
		return fmt.Errorf("%w: player.hp must be positive", ErrInvalidConfig)
	case c.Obstacles.RadiusRange[0] > c.Obstacles.RadiusRange[1]:
		return fmt.Errorf("%w: obstacles.radiusRange is inverted", ErrInvalidConfig)
	case c.Obstacles.DistanceRange[0] > c.Obstacles.DistanceRange[1]:
		return fmt.Errorf("%w: obstacles.distanceRange is inverted", ErrInvalidConfig)
	case len(c.Battleships.EnemyPositions) == 0 || len(c.Battleships.AllyPositions) == 0:
		return fmt.Errorf("%w: each fleet needs at least one battleship", ErrInvalidConfig)
	}
	if _, ok := c.Enemies["grunt"]; !ok {
		return fmt.Errorf("%w: enemies.grunt is required", ErrInvalidConfig)
	}
	if _, ok := c.Allies["wing"]; !ok {
		return fmt.Errorf("%w: allies.wing is required", ErrInvalidConfig)
	}
	return nil
}

// ConfigSchema describes the config file format
func ConfigSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Config))
	schema.Title = "Space combat battle config"
	schema.Description = "Overrides for DefaultConfig, loaded with -config"
	return schema
}
