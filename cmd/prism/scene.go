package main

import (
	"fmt"
	"log/slog"

	"github.com/taigrr/prism/pkg/config"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// fitSize is the extent models are scaled to, which fills most of the view
// from the default camera.
const fitSize = 4

// loadMeshes loads a glTF model, or builds a textured cube when path is
// empty.
func loadMeshes(path string) ([]*render.Mesh, error) {
	if path == "" {
		cube := models.Cube(1)
		cube.Material = render.Material{
			Diffuse: render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100)),
			Normal:  render.NewFlatNormalTexture(),
		}
		return []*render.Mesh{cube}, nil
	}

	meshes, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return meshes, nil
}

// buildScene loads the model and textures named by cfg, frames the model
// and places the camera for a width x height target.
func buildScene(cfg config.Config, width, height, fps int) (*scene.Scene, error) {
	meshes, err := loadMeshes(cfg.Model)
	if err != nil {
		return nil, err
	}

	material, err := cfg.LoadMaterial()
	if err != nil {
		return nil, fmt.Errorf("load material: %w", err)
	}
	triangles := 0
	for _, m := range meshes {
		overlayMaterial(&m.Material, material)
		triangles += triangleCount(m)
	}
	models.Fit(meshes, fitSize)

	render.Logger().Info("scene loaded",
		slog.String("model", cfg.Model),
		slog.Int("meshes", len(meshes)),
		slog.Int("triangles", triangles),
	)
	return scene.New(cfg.NewCamera(width, height), fps, meshes...), nil
}

// overlayMaterial replaces the slots of dst that src sets.
func overlayMaterial(dst *render.Material, src render.Material) {
	if src.Diffuse != nil {
		dst.Diffuse = src.Diffuse
	}
	if src.Normal != nil {
		dst.Normal = src.Normal
	}
	if src.Specular != nil {
		dst.Specular = src.Specular
	}
	if src.Glossiness != nil {
		dst.Glossiness = src.Glossiness
	}
}

// newRenderer creates a renderer configured by cfg.
func newRenderer(cfg config.Config, width, height int) *render.Renderer {
	r := render.NewRenderer(width, height, cfg.Options())
	r.Shader = cfg.Shader()
	return r
}

func triangleCount(m *render.Mesh) int {
	if m.Topology == render.TriangleStrip {
		return max(len(m.Indices)-2, 0)
	}
	return len(m.Indices) / 3
}
