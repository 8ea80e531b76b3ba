package render

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/prism/pkg/math3d"
)

// testShader lights straight down -Z with no ambient term so expected
// values are easy to derive.
func testShader(mode ShadingMode) *Shader {
	sh := NewShader()
	sh.Lighting.Direction = math3d.V3(0, 0, -1)
	sh.Lighting.Ambient = colorful.Color{}
	sh.Shading = mode
	return &sh
}

// facing returns a fragment whose normal points back at the light.
func facing() *Fragment {
	return &Fragment{
		Normal:  math3d.V3(0, 0, 1),
		Tangent: math3d.V3(1, 0, 0),
		ViewDir: math3d.V3(0, 0, -1),
		UV:      math3d.V2(0.5, 0.5),
	}
}

func gray8(v uint8) Color { return RGB(v, v, v) }

func nearColor(a, b Color, tol int) bool {
	return absDiff(a.R, b.R) <= tol && absDiff(a.G, b.G) <= tol && absDiff(a.B, b.B) <= tol && a.A == b.A
}

func TestShadeObservedArea(t *testing.T) {
	sh := testShader(ShadeObservedArea)

	tests := []struct {
		name   string
		normal math3d.Vec3
		want   Color
	}{
		{"facing", math3d.V3(0, 0, 1), gray8(255)},
		{"grazing", math3d.V3(1, 0, 0), gray8(0)},
		{"away", math3d.V3(0, 0, -1), gray8(0)},
		{"unnormalized", math3d.V3(0, 0, 5), gray8(255)},
		// cos 60 = 0.5
		{"tilted", math3d.V3(0, 0.8660254037844386, 0.5), gray8(128)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := facing()
			f.Normal = tt.normal
			if got := sh.Shade(f); !nearColor(got, tt.want, 1) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShadeDiffuse(t *testing.T) {
	sh := testShader(ShadeDiffuse)
	sh.Material.Diffuse = NewSolidTexture(gray8(50))

	// 50/255 * 7/pi = 0.4369
	if got := sh.Shade(facing()); !nearColor(got, gray8(111), 1) {
		t.Errorf("got %v", got)
	}

	f := facing()
	f.Normal = math3d.V3(1, 0, 0)
	if got := sh.Shade(f); got != gray8(0) {
		t.Errorf("unlit side should be black, got %v", got)
	}

	sh.Material.Diffuse = nil
	if got := sh.Shade(facing()); got != gray8(255) {
		t.Errorf("white default diffuse should saturate, got %v", got)
	}
}

func TestShadeSpecular(t *testing.T) {
	sh := testShader(ShadeSpecular)
	sh.Material.Specular = NewSolidTexture(ColorWhite)
	sh.Material.Glossiness = NewSolidTexture(ColorWhite)

	// reflect(-L, n) = L for n = -L; looking along L catches the highlight
	f := facing()
	f.ViewDir = sh.Lighting.Direction
	if got := sh.Shade(f); got != gray8(255) {
		t.Errorf("highlight: got %v", got)
	}

	f.ViewDir = math3d.V3(0, 1, 0)
	if got := sh.Shade(f); got != gray8(0) {
		t.Errorf("off highlight: got %v", got)
	}

	sh.Material.Specular = nil
	f.ViewDir = sh.Lighting.Direction
	if got := sh.Shade(f); got != gray8(0) {
		t.Errorf("no specular map should be black, got %v", got)
	}
}

func TestShadeCombinedAddsAmbient(t *testing.T) {
	sh := testShader(ShadeCombined)
	sh.Lighting.Ambient = colorful.Color{R: 0.1, G: 0.2, B: 0.3}

	f := facing()
	f.Normal = math3d.V3(1, 0, 0)
	if got := sh.Shade(f); !nearColor(got, RGB(26, 51, 77), 1) {
		t.Errorf("got %v", got)
	}

	sh.Material.Diffuse = NewSolidTexture(gray8(20))
	// 20/255 * 7/pi + 0.1 = 0.2748
	if got := sh.Shade(facing()); !nearColor(got, RGB(70, 96, 121), 1) {
		t.Errorf("got %v", got)
	}
}

func TestShadeNormalMapping(t *testing.T) {
	sh := testShader(ShadeObservedArea)
	// tangent-space +X: the shading normal becomes the tangent
	sh.Material.Normal = NewSolidTexture(RGB(255, 128, 128))

	f := facing()
	f.Normal = math3d.V3(1, 0, 0)
	f.Tangent = math3d.V3(0, 0, 1)
	if got := sh.Shade(f); got.R < 250 {
		t.Errorf("mapped normal should face the light, got %v", got)
	}

	sh.NormalMapping = false
	if got := sh.Shade(f); got != gray8(0) {
		t.Errorf("disabled mapping should use the geometric normal, got %v", got)
	}

	sh.NormalMapping = true
	sh.Material.Normal = NewFlatNormalTexture()
	if got := sh.Shade(facing()); got.R < 254 {
		t.Errorf("flat normal map should not change shading, got %v", got)
	}
}

func TestShadeDepth(t *testing.T) {
	sh := testShader(ShadeCombined)
	sh.Render = RenderDepth
	sh.Depth = DepthRange{Near: 0.9, Far: 1}

	tests := []struct {
		depth float64
		want  uint8
	}{
		{0.9, 0},
		{0.95, 128},
		{1, 255},
		{0.5, 0},
	}
	for _, tt := range tests {
		f := facing()
		f.Depth = tt.depth
		if got := sh.Shade(f); !nearColor(got, gray8(tt.want), 1) {
			t.Errorf("depth %v: got %v, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestShadeUnlit(t *testing.T) {
	sh := testShader(ShadeCombined)
	sh.Render = RenderUnlit

	f := facing()
	f.Color = linear(RGB(10, 20, 30))
	if got := sh.Shade(f); got != RGB(10, 20, 30) {
		t.Errorf("vertex color: got %v", got)
	}

	sh.Material.Diffuse = NewSolidTexture(RGB(200, 100, 50))
	if got := sh.Shade(f); got != RGB(200, 100, 50) {
		t.Errorf("texture color: got %v", got)
	}
}

func TestShadeUnknownModesFallBack(t *testing.T) {
	sh := testShader(ShadingMode(42))
	sh.Render = RenderMode(-1)
	if got := sh.Shade(facing()); got.A != 255 {
		t.Errorf("expected an opaque color, got %v", got)
	}
}

func TestModeCycling(t *testing.T) {
	m := ShadeObservedArea
	seen := map[ShadingMode]bool{}
	for range 4 {
		seen[m] = true
		m = NextShadingMode(m)
	}
	if m != ShadeObservedArea || len(seen) != 4 {
		t.Errorf("shading modes do not cycle: %v", seen)
	}

	if NextRenderMode(RenderDefault) != RenderDepth || NextRenderMode(RenderUnlit) != RenderDefault {
		t.Error("render modes do not cycle")
	}
}

func TestParseModes(t *testing.T) {
	for m := ShadeObservedArea; m < shadingModeCount; m++ {
		got, ok := ParseShadingMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseShadingMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	for m := RenderDefault; m < renderModeCount; m++ {
		got, ok := ParseRenderMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseRenderMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseShadingMode("phong"); ok {
		t.Error("unknown name accepted")
	}
}

func TestDefaultLighting(t *testing.T) {
	l := DefaultLighting()
	if d := l.Direction.Len(); d < 0.999999 || d > 1.000001 {
		t.Errorf("direction not normalized: %v", d)
	}
	if l.Intensity != 7 || l.Shininess != 25 || l.Ambient.R != 0.025 {
		t.Errorf("unexpected defaults %+v", l)
	}
}
