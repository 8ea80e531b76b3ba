// Package config loads viewer and renderer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings file. Zero values in a loaded file keep
// the defaults.
type Config struct {
	Model    string   `yaml:"model,omitempty"`
	Camera   Camera   `yaml:"camera"`
	Lighting Lighting `yaml:"lighting"`
	Material Material `yaml:"material"`
	Render   Render   `yaml:"render"`
}

// Camera places the viewer.
type Camera struct {
	Origin [3]float64 `yaml:"origin"`
	Target [3]float64 `yaml:"target"`
	FOV    float64    `yaml:"fov"` // vertical, degrees
	Near   float64    `yaml:"near"`
	Far    float64    `yaml:"far"`
}

// Lighting describes the directional light.
type Lighting struct {
	Direction [3]float64 `yaml:"direction"`
	Intensity float64    `yaml:"intensity"`
	Shininess float64    `yaml:"shininess"`
	Ambient   float64    `yaml:"ambient"`
}

// Material holds texture paths. Relative paths resolve against the
// directory of the config file.
type Material struct {
	Diffuse    string `yaml:"diffuse,omitempty"`
	Normal     string `yaml:"normal,omitempty"`
	Specular   string `yaml:"specular,omitempty"`
	Glossiness string `yaml:"glossiness,omitempty"`
}

// Render selects the pipeline modes.
type Render struct {
	Mode          string     `yaml:"mode"`
	Shading       string     `yaml:"shading"`
	NormalMapping *bool      `yaml:"normal_mapping,omitempty"` // pointer to distinguish unset vs false
	Cull          string     `yaml:"cull"`
	Interpolation string     `yaml:"interpolation"`
	Workers       int        `yaml:"workers"`
	Background    string     `yaml:"background"`
	DepthRange    [2]float64 `yaml:"depth_range"`
}

var (
	cullModes = map[string]render.CullMode{
		"back": render.CullBack,
		"none": render.CullNone,
	}
	interpolations = map[string]render.Interpolation{
		"view-w": render.InterpolateViewW,
		"ndc-z":  render.InterpolateNDCZ,
	}
)

// Default returns the built-in settings.
func Default() Config {
	l := render.DefaultLighting()
	d := render.DefaultDepthRange()
	normalMapping := true
	return Config{
		Camera: Camera{
			Origin: [3]float64{0, 0, 10},
			FOV:    60,
			Near:   0.1,
			Far:    100,
		},
		Lighting: Lighting{
			Direction: [3]float64{0.577, -0.577, 0.577},
			Intensity: l.Intensity,
			Shininess: l.Shininess,
			Ambient:   l.Ambient.R,
		},
		Render: Render{
			Mode:          render.RenderDefault.String(),
			Shading:       render.ShadeCombined.String(),
			NormalMapping: &normalMapping,
			Cull:          "back",
			Interpolation: "view-w",
			Workers:       1,
			Background:    "#646464",
			DepthRange:    [2]float64{d.Near, d.Far},
		},
	}
}

// Load reads path and overlays it on Default. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Model = resolve(dir, cfg.Model)
	cfg.Material.Diffuse = resolve(dir, cfg.Material.Diffuse)
	cfg.Material.Normal = resolve(dir, cfg.Material.Normal)
	cfg.Material.Specular = resolve(dir, cfg.Material.Specular)
	cfg.Material.Glossiness = resolve(dir, cfg.Material.Glossiness)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	return nil
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov %v outside (0, 180)", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near %v and far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if vec3(c.Camera.Origin) == vec3(c.Camera.Target) {
		errs = append(errs, errors.New("camera.origin equals camera.target"))
	}
	if vec3(c.Lighting.Direction).Len() == 0 {
		errs = append(errs, errors.New("lighting.direction is zero"))
	}
	if _, ok := render.ParseRenderMode(c.Render.Mode); !ok {
		errs = append(errs, fmt.Errorf("unknown render.mode %q", c.Render.Mode))
	}
	if _, ok := render.ParseShadingMode(c.Render.Shading); !ok {
		errs = append(errs, fmt.Errorf("unknown render.shading %q", c.Render.Shading))
	}
	if _, ok := cullModes[c.Render.Cull]; !ok {
		errs = append(errs, fmt.Errorf("unknown render.cull %q", c.Render.Cull))
	}
	if _, ok := interpolations[c.Render.Interpolation]; !ok {
		errs = append(errs, fmt.Errorf("unknown render.interpolation %q", c.Render.Interpolation))
	}
	if c.Render.Workers < 1 {
		errs = append(errs, fmt.Errorf("render.workers %d must be at least 1", c.Render.Workers))
	}
	if _, err := colorful.Hex(c.Render.Background); err != nil {
		errs = append(errs, fmt.Errorf("render.background: %w", err))
	}
	if r := c.Render.DepthRange; r[1] <= r[0] {
		errs = append(errs, fmt.Errorf("render.depth_range %v is empty", r))
	}
	return errors.Join(errs...)
}

// NewCamera builds the camera for a width x height target.
func (c Config) NewCamera(width, height int) *render.Camera {
	cam := render.NewCamera(vec3(c.Camera.Origin), c.Camera.FOV, 1, c.Camera.Near, c.Camera.Far)
	cam.SetAspect(width, height)
	cam.LookAt(vec3(c.Camera.Target))
	return cam
}

// Lights returns the configured light.
func (c Config) Lights() render.Lighting {
	return render.Lighting{
		Direction: vec3(c.Lighting.Direction).Normalize(),
		Intensity: c.Lighting.Intensity,
		Shininess: c.Lighting.Shininess,
		Ambient:   colorful.Color{R: c.Lighting.Ambient, G: c.Lighting.Ambient, B: c.Lighting.Ambient},
	}
}

// Shader returns a shader with the configured modes and light. The
// material is left empty; the renderer takes it from each mesh.
func (c Config) Shader() render.Shader {
	sh := render.NewShader()
	sh.Lighting = c.Lights()
	if m, ok := render.ParseRenderMode(c.Render.Mode); ok {
		sh.Render = m
	}
	if m, ok := render.ParseShadingMode(c.Render.Shading); ok {
		sh.Shading = m
	}
	if c.Render.NormalMapping != nil {
		sh.NormalMapping = *c.Render.NormalMapping
	}
	sh.Depth = render.DepthRange{Near: c.Render.DepthRange[0], Far: c.Render.DepthRange[1]}
	return sh
}

// Options returns the renderer options.
func (c Config) Options() render.Options {
	opts := render.DefaultOptions()
	if m, ok := cullModes[c.Render.Cull]; ok {
		opts.Cull = m
	}
	if m, ok := interpolations[c.Render.Interpolation]; ok {
		opts.Interpolation = m
	}
	opts.Workers = max(c.Render.Workers, 1)
	if bg, err := colorful.Hex(c.Render.Background); err == nil {
		r, g, b := bg.RGB255()
		opts.Background = render.RGB(r, g, b)
	}
	return opts
}

// LoadMaterial loads the configured textures. Unset slots stay nil so the
// shader falls back to its defaults.
func (c Config) LoadMaterial() (render.Material, error) {
	var m render.Material
	slots := []struct {
		path string
		dst  *render.Sampler
	}{
		{c.Material.Diffuse, &m.Diffuse},
		{c.Material.Normal, &m.Normal},
		{c.Material.Specular, &m.Specular},
		{c.Material.Glossiness, &m.Glossiness},
	}
	for _, s := range slots {
		if s.path == "" {
			continue
		}
		tex, err := render.LoadTexture(s.path)
		if err != nil {
			return render.Material{}, err
		}
		*s.dst = tex
	}
	return m, nil
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}
