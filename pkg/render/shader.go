package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/prism/pkg/math3d"
)

// ShadingMode selects the reflectance term written by RenderDefault.
type ShadingMode int

const (
	ShadeObservedArea ShadingMode = iota // cosine term only, grayscale
	ShadeDiffuse                         // observed area times Lambert
	ShadeSpecular                        // observed area times Phong
	ShadeCombined                        // Lambert and Phong plus ambient
	shadingModeCount
)

var shadingModeNames = [...]string{
	ShadeObservedArea: "observed-area",
	ShadeDiffuse:      "diffuse",
	ShadeSpecular:     "specular",
	ShadeCombined:     "combined",
}

func (m ShadingMode) String() string {
	if m < 0 || m >= shadingModeCount {
		return "unknown"
	}
	return shadingModeNames[m]
}

// NextShadingMode returns the mode after m, wrapping around.
func NextShadingMode(m ShadingMode) ShadingMode {
	return (m + 1) % shadingModeCount
}

// ParseShadingMode looks up a mode by its String form.
func ParseShadingMode(s string) (ShadingMode, bool) {
	for i, name := range shadingModeNames {
		if name == s {
			return ShadingMode(i), true
		}
	}
	return 0, false
}

// RenderMode selects what the shader visualizes.
type RenderMode int

const (
	RenderDefault RenderMode = iota // lit, according to the ShadingMode
	RenderDepth                     // remapped depth as gray
	RenderUnlit                     // diffuse texture or vertex color
	renderModeCount
)

var renderModeNames = [...]string{
	RenderDefault: "default",
	RenderDepth:   "depth",
	RenderUnlit:   "unlit",
}

func (m RenderMode) String() string {
	if m < 0 || m >= renderModeCount {
		return "unknown"
	}
	return renderModeNames[m]
}

// NextRenderMode returns the mode after m, wrapping around.
func NextRenderMode(m RenderMode) RenderMode {
	return (m + 1) % renderModeCount
}

// ParseRenderMode looks up a mode by its String form.
func ParseRenderMode(s string) (RenderMode, bool) {
	for i, name := range renderModeNames {
		if name == s {
			return RenderMode(i), true
		}
	}
	return 0, false
}

// Lighting is a single directional light.
type Lighting struct {
	// Direction the light travels in, normalized.
	Direction math3d.Vec3
	Intensity float64
	// Shininess scales the sampled glossiness into a Phong exponent.
	Shininess float64
	Ambient   colorful.Color
}

// DefaultLighting returns the stock directional light.
func DefaultLighting() Lighting {
	return Lighting{
		Direction: math3d.V3(0.577, -0.577, 0.577).Normalize(),
		Intensity: 7,
		Shininess: 25,
		Ambient:   gray(0.025),
	}
}

// DepthRange is the window of depth values stretched over black..white in
// RenderDepth mode.
type DepthRange struct {
	Near float64
	Far  float64
}

// DefaultDepthRange covers the band most geometry lands in with a
// zero-to-one projection.
func DefaultDepthRange() DepthRange {
	return DepthRange{Near: 0.985, Far: 1}
}

// Fragment is an interpolated surface sample handed to the shader.
type Fragment struct {
	X, Y    int
	Depth   float64
	Normal  math3d.Vec3
	Tangent math3d.Vec3
	ViewDir math3d.Vec3
	Color   colorful.Color
	UV      math3d.Vec2
}

// Shader turns fragments into colors. The zero value is not useful; start
// from NewShader.
type Shader struct {
	Lighting      Lighting
	Material      Material
	Shading       ShadingMode
	Render        RenderMode
	NormalMapping bool
	Depth         DepthRange
}

// NewShader returns a shader with the default light, combined shading and
// normal mapping enabled.
func NewShader() Shader {
	return Shader{
		Lighting:      DefaultLighting(),
		Shading:       ShadeCombined,
		Render:        RenderDefault,
		NormalMapping: true,
		Depth:         DefaultDepthRange(),
	}
}

type renderFunc func(s *Shader, f *Fragment) colorful.Color

// surface holds the per-fragment terms shared by every shading mode.
type surface struct {
	observedArea float64
	lambert      colorful.Color
	specular     colorful.Color
}

type shadeFunc func(s *Shader, t *surface) colorful.Color

var renderFuncs = [...]renderFunc{
	RenderDefault: shadeLit,
	RenderDepth:   shadeDepth,
	RenderUnlit:   shadeUnlit,
}

var shadeFuncs = [...]shadeFunc{
	ShadeObservedArea: func(_ *Shader, t *surface) colorful.Color {
		return gray(t.observedArea)
	},
	ShadeDiffuse: func(_ *Shader, t *surface) colorful.Color {
		return scaled(t.lambert, t.observedArea)
	},
	ShadeSpecular: func(_ *Shader, t *surface) colorful.Color {
		return scaled(t.specular, t.observedArea)
	},
	ShadeCombined: func(s *Shader, t *surface) colorful.Color {
		return added(added(scaled(t.lambert, t.observedArea), t.specular), s.Lighting.Ambient)
	},
}

// Shade returns the final 8-bit color of f. Every channel is clamped to
// [0,1] before packing.
func (s *Shader) Shade(f *Fragment) Color {
	mode := s.Render
	if mode < 0 || mode >= renderModeCount {
		mode = RenderDefault
	}
	return pack(renderFuncs[mode](s, f))
}

func shadeLit(s *Shader, f *Fragment) colorful.Color {
	n := s.shadingNormal(f)
	l := s.Lighting.Direction

	t := surface{
		observedArea: clamp01(n.Dot(l.Negate())),
	}

	diffuse := sampleOr(s.Material.Diffuse, f.UV, colorful.Color{R: 1, G: 1, B: 1})
	t.lambert = scaled(diffuse, s.Lighting.Intensity/math.Pi)

	spec := sampleOr(s.Material.Specular, f.UV, colorful.Color{})
	gloss := sampleOr(s.Material.Glossiness, f.UV, colorful.Color{}).R
	cosAlpha := clamp01(l.Negate().Reflect(n).Dot(f.ViewDir.Normalize()))
	t.specular = scaled(spec, math.Pow(cosAlpha, gloss*s.Lighting.Shininess))

	mode := s.Shading
	if mode < 0 || mode >= shadingModeCount {
		mode = ShadeCombined
	}
	return shadeFuncs[mode](s, &t)
}

func shadeDepth(s *Shader, f *Fragment) colorful.Color {
	span := s.Depth.Far - s.Depth.Near
	if span <= 0 {
		return gray(f.Depth)
	}
	return gray((f.Depth - s.Depth.Near) / span)
}

func shadeUnlit(s *Shader, f *Fragment) colorful.Color {
	if s.Material.Diffuse == nil {
		return f.Color
	}
	return linear(s.Material.Diffuse.Sample(f.UV.X, f.UV.Y))
}

// shadingNormal returns the unit normal used for lighting, perturbed by the
// tangent-space normal map when one is bound and enabled.
func (s *Shader) shadingNormal(f *Fragment) math3d.Vec3 {
	n := f.Normal.Normalize()
	if !s.NormalMapping || s.Material.Normal == nil {
		return n
	}

	t := f.Tangent.Normalize()
	b := n.Cross(t)

	c := linear(s.Material.Normal.Sample(f.UV.X, f.UV.Y))
	local := math3d.V3(2*c.R-1, 2*c.G-1, 2*c.B-1)

	return t.Scale(local.X).Add(b.Scale(local.Y)).Add(n.Scale(local.Z)).Normalize()
}

func sampleOr(s Sampler, uv math3d.Vec2, fallback colorful.Color) colorful.Color {
	if s == nil {
		return fallback
	}
	return linear(s.Sample(uv.X, uv.Y))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}
