// Package config loads engine and material settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/setanarut/rigid"
	"github.com/setanarut/rigid/geom"
)

// Octree configures the broad phase.
type Octree struct {
	Enabled     bool       `toml:"enabled"`
	Center      [3]float64 `toml:"center"`
	Size        float64    `toml:"size"`
	MinCellSize float64    `toml:"min_cell_size"`
}

// Engine is the TOML form of the engine settings.
type Engine struct {
	Timestep        float64    `toml:"timestep"`
	Gravity         [3]float64 `toml:"gravity"`
	PushSlop        float64    `toml:"push_slop"`
	RestingFactor   float64    `toml:"resting_factor"`
	FaceDedupCosine float64    `toml:"face_dedup_cosine"`
	MaxBuffer       float64    `toml:"max_buffer"`
	Iterations      int        `toml:"iterations"`
	Octree          Octree     `toml:"octree"`
}

// Material holds the per-body physical parameters.
type Material struct {
	Density      float64 `toml:"density"`
	Friction     float64 `toml:"friction"`
	Restitution  float64 `toml:"restitution"`
	Fixed        bool    `toml:"fixed"`
	TrackHistory bool    `toml:"track_history"`
}

// Config is a whole configuration file.
type Config struct {
	Engine    Engine              `toml:"engine"`
	Materials map[string]Material `toml:"materials"`
}

// Default returns the engine defaults and a "default" material.
func Default() Config {
	g := rigid.DefaultGravity
	return Config{
		Engine: Engine{
			Timestep:        rigid.DefaultTimestep,
			Gravity:         [3]float64(g),
			PushSlop:        rigid.DefaultPushSlop,
			RestingFactor:   rigid.DefaultRestingFactor,
			FaceDedupCosine: rigid.DefaultFaceDedupCosine,
			MaxBuffer:       rigid.DefaultMaxBuffer,
			Iterations:      rigid.DefaultIterations,
			Octree: Octree{
				Enabled:     true,
				Size:        rigid.DefaultOctreeSize,
				MinCellSize: rigid.DefaultOctreeMinCell,
			},
		},
		Materials: map[string]Material{
			"default": {Density: 1, Friction: 0.5},
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML over the defaults. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Validate checks the values an engine would reject.
func (c Config) Validate() error {
	var errs []error
	e := c.Engine
	if !(e.Timestep > 0) {
		errs = append(errs, fmt.Errorf("engine.timestep: %w", rigid.ErrInvalidTimestep))
	}
	if e.RestingFactor <= 0 {
		errs = append(errs, errors.New("engine.resting_factor must be positive"))
	}
	if e.PushSlop < 0 {
		errs = append(errs, errors.New("engine.push_slop must not be negative"))
	}
	if !(e.FaceDedupCosine >= -1 && e.FaceDedupCosine <= 1) {
		errs = append(errs, errors.New("engine.face_dedup_cosine must be within [-1, 1]"))
	}
	if e.Iterations < 0 {
		errs = append(errs, errors.New("engine.iterations must not be negative"))
	}
	if e.Octree.Enabled && (e.Octree.Size <= 0 || e.Octree.MinCellSize <= 0) {
		errs = append(errs, errors.New("engine.octree size and min_cell_size must be positive"))
	}
	for name, m := range c.Materials {
		if m.Density < 0 {
			errs = append(errs, fmt.Errorf("materials.%s.density must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

// Options converts the engine settings to engine options.
func (e Engine) Options() []rigid.Option {
	opts := []rigid.Option{
		rigid.WithTimestep(e.Timestep),
		rigid.WithGravity(geom.Vec3(e.Gravity)),
		rigid.WithPushSlop(e.PushSlop),
		rigid.WithRestingFactor(e.RestingFactor),
		rigid.WithFaceDedupCosine(e.FaceDedupCosine),
		rigid.WithMaxBuffer(e.MaxBuffer),
		rigid.WithIterations(e.Iterations),
	}
	if e.Octree.Enabled {
		opts = append(opts, rigid.WithOctree(geom.Vec3(e.Octree.Center), e.Octree.Size, e.Octree.MinCellSize))
	} else {
		opts = append(opts, rigid.WithoutOctree())
	}
	return opts
}

// Material returns the named material, falling back to "default".
func (c Config) Material(name string) Material {
	if m, ok := c.Materials[name]; ok {
		return m
	}
	return c.Materials["default"]
}

// BodyDef fills a body definition with the material and hulls.
func (m Material) BodyDef(hulls ...*rigid.ConvexHull) rigid.BodyDef {
	return rigid.BodyDef{
		Hulls:        hulls,
		Density:      m.Density,
		Friction:     m.Friction,
		Restitution:  m.Restitution,
		Fixed:        m.Fixed,
		TrackHistory: m.TrackHistory,
	}
}
