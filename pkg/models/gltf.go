package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

var (
	// ErrNoGeometry is returned when a document has no triangle primitives.
	ErrNoGeometry = errors.New("no triangle geometry")
	// ErrIndexOutOfRange is returned when an index or accessor reference
	// points past the data it indexes.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Loader converts glTF documents into render meshes, one per triangle
// primitive.
type Loader struct {
	// ComputeNormals fills in smooth normals for primitives without them.
	ComputeNormals bool
	// ComputeTangents fills in tangents for primitives without them.
	ComputeTangents bool
	// Textures binds the base color texture of each material as the
	// diffuse map.
	Textures bool
}

// NewLoader returns a loader with every option enabled.
func NewLoader() *Loader {
	return &Loader{
		ComputeNormals:  true,
		ComputeTangents: true,
		Textures:        true,
	}
}

// Load reads a .gltf or .glb file with the default loader.
func Load(path string) ([]*render.Mesh, error) {
	return NewLoader().Load(path)
}

// Load reads a .gltf or .glb file. External buffers and images are resolved
// relative to the file.
func (l *Loader) Load(path string) ([]*render.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	meshes, err := l.FromDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return meshes, nil
}

// FromDocument converts an already decoded document. dir is used to
// resolve relative image URIs.
func (l *Loader) FromDocument(doc *gltf.Document, dir string) ([]*render.Mesh, error) {
	textures := make(map[int]*render.Texture)

	var meshes []*render.Mesh
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			mesh, err := l.primitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d (%q) primitive %d: %w", mi, m.Name, pi, err)
			}
			if mesh == nil {
				continue
			}
			mesh.Name = m.Name
			if len(m.Primitives) > 1 {
				mesh.Name = fmt.Sprintf("%s.%d", m.Name, pi)
			}
			if l.Textures {
				mesh.Material.Diffuse = l.baseColor(doc, prim, dir, textures)
			}
			meshes = append(meshes, mesh)
		}
	}

	if len(meshes) == 0 {
		return nil, ErrNoGeometry
	}
	return meshes, nil
}

func (l *Loader) primitive(doc *gltf.Document, prim *gltf.Primitive) (*render.Mesh, error) {
	var topology render.Topology
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		topology = render.TriangleList
	case gltf.PrimitiveTriangleStrip:
		topology = render.TriangleStrip
	default:
		render.Logger().Warn("skipping non-triangle primitive", slog.Any("mode", prim.Mode))
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		render.Logger().Warn("skipping primitive without positions")
		return nil, nil
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	vertices := make([]render.Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = render.Vertex{
			Position: vec3(p),
			Color:    render.ColorWhite,
		}
	}

	hasNormals, err := readAttribute(doc, prim, gltf.NORMAL, modeler.ReadNormal, func(i int, n [3]float32) {
		vertices[i].Normal = vec3(n)
	}, len(vertices))
	if err != nil {
		return nil, fmt.Errorf("read normals: %w", err)
	}
	hasTangents, err := readAttribute(doc, prim, gltf.TANGENT, modeler.ReadTangent, func(i int, t [4]float32) {
		vertices[i].Tangent = math3d.V3(float64(t[0]), float64(t[1]), float64(t[2]))
	}, len(vertices))
	if err != nil {
		return nil, fmt.Errorf("read tangents: %w", err)
	}
	// glTF texture coordinates already have their origin at the top-left
	if _, err := readAttribute(doc, prim, gltf.TEXCOORD_0, modeler.ReadTextureCoord, func(i int, uv [2]float32) {
		vertices[i].UV = math3d.V2(float64(uv[0]), float64(uv[1]))
	}, len(vertices)); err != nil {
		return nil, fmt.Errorf("read uvs: %w", err)
	}
	if _, err := readAttribute(doc, prim, gltf.COLOR_0, modeler.ReadColor, func(i int, c [4]uint8) {
		vertices[i].Color = render.RGB(c[0], c[1], c[2])
	}, len(vertices)); err != nil {
		return nil, fmt.Errorf("read colors: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(vertices) {
				return nil, fmt.Errorf("%w: vertex %d of %d", ErrIndexOutOfRange, i, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mesh := render.NewMesh("", vertices, flipWinding(topology, indices), topology)
	if !hasNormals && l.ComputeNormals {
		ComputeNormals(mesh)
	}
	if !hasTangents && l.ComputeTangents {
		ComputeTangents(mesh)
	}
	return mesh, nil
}

// flipWinding converts glTF's counter-clockwise front faces to the
// clockwise convention of the rasterizer. A strip is flipped by repeating
// its first index, which shifts the parity of every triangle at the cost
// of one degenerate triangle the assembler drops.
func flipWinding(topology render.Topology, indices []uint32) []uint32 {
	if len(indices) == 0 {
		return indices
	}
	if topology == render.TriangleStrip {
		return append([]uint32{indices[0]}, indices...)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
	return indices
}

// readAttribute reads an optional vertex attribute with a modeler reader
// and hands every element to set. It reports whether the attribute exists.
func readAttribute[T any](
	doc *gltf.Document,
	prim *gltf.Primitive,
	name string,
	read func(*gltf.Document, *gltf.Accessor, []T) ([]T, error),
	set func(int, T),
	count int,
) (bool, error) {
	idx, ok := prim.Attributes[name]
	if !ok {
		return false, nil
	}
	acr, err := accessor(doc, idx)
	if err != nil {
		return false, err
	}
	data, err := read(doc, acr, nil)
	if err != nil {
		return false, err
	}
	if len(data) != count {
		return false, fmt.Errorf("%s has %d elements, want %d", name, len(data), count)
	}
	for i, v := range data {
		set(i, v)
	}
	return true, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrIndexOutOfRange, idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}

// baseColor returns the decoded base color texture of the primitive's
// material, or nil. Textures that fail to load are logged and skipped.
func (l *Loader) baseColor(doc *gltf.Document, prim *gltf.Primitive, dir string, cache map[int]*render.Texture) render.Sampler {
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return nil
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return nil
	}
	texIdx := pbr.BaseColorTexture.Index
	if texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil
	}
	imgIdx := *doc.Textures[texIdx].Source

	if tex, ok := cache[imgIdx]; ok {
		return tex
	}
	img, err := decodeImage(doc, imgIdx, dir)
	if err != nil {
		render.Logger().Warn("skipping texture", slog.Int("image", imgIdx), slog.Any("error", err))
		return nil
	}
	tex := render.TextureFromImage(img)
	tex.FilterMode = render.FilterBilinear
	cache[imgIdx] = tex
	return tex
}

func decodeImage(doc *gltf.Document, idx int, dir string) (image.Image, error) {
	if idx < 0 || idx >= len(doc.Images) {
		return nil, fmt.Errorf("%w: image %d of %d", ErrIndexOutOfRange, idx, len(doc.Images))
	}
	img := doc.Images[idx]

	var (
		data []byte
		err  error
	)
	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("%w: buffer view %d", ErrIndexOutOfRange, *img.BufferView)
		}
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
	default:
		return nil, fmt.Errorf("image %d has no data", idx)
	}
	if err != nil {
		return nil, fmt.Errorf("read image %d: %w", idx, err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", idx, err)
	}
	return decoded, nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}
