package main

import (
	"github.com/spf13/pflag"
	"github.com/taigrr/prism/pkg/config"
)

// overrides are command line settings that win over the settings file.
type overrides struct {
	flags *pflag.FlagSet

	workers       int
	mode          string
	shading       string
	cull          string
	interpolation string
	background    string
	normalMapping bool
}

func (o *overrides) register(fs *pflag.FlagSet) {
	o.flags = fs
	fs.IntVarP(&o.workers, "workers", "j", 1, "horizontal bands rasterized in parallel")
	fs.StringVar(&o.mode, "mode", "default", "render mode (default, depth, unlit)")
	fs.StringVar(&o.shading, "shading", "combined", "shading mode (observed-area, diffuse, specular, combined)")
	fs.StringVar(&o.cull, "cull", "back", "face culling (back, none)")
	fs.StringVar(&o.interpolation, "interpolation", "view-w", "attribute interpolation (view-w, ndc-z)")
	fs.StringVar(&o.background, "bg", "#646464", "background color")
	fs.BoolVar(&o.normalMapping, "normal-map", true, "sample the normal map")
}

// apply copies every flag set on the command line into cfg.
func (o *overrides) apply(cfg *config.Config) {
	changed := func(name string) bool {
		return o.flags != nil && o.flags.Changed(name)
	}
	if changed("workers") {
		cfg.Render.Workers = o.workers
	}
	if changed("mode") {
		cfg.Render.Mode = o.mode
	}
	if changed("shading") {
		cfg.Render.Shading = o.shading
	}
	if changed("cull") {
		cfg.Render.Cull = o.cull
	}
	if changed("interpolation") {
		cfg.Render.Interpolation = o.interpolation
	}
	if changed("bg") {
		cfg.Render.Background = o.background
	}
	if changed("normal-map") {
		nm := o.normalMapping
		cfg.Render.NormalMapping = &nm
	}
}
