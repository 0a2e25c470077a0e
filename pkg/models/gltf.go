package models

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/softrender/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// DefaultColor colors triangles whose primitive has no material.
	DefaultColor color.RGBA
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		DefaultColor: color.RGBA{200, 200, 200, 255},
	}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a validated Mesh.
//
// glTF is right-handed with counter-clockwise front faces. Z is negated to
// bring positions into the renderer's left-handed world, and each triangle's
// second and third index are swapped so front faces stay counter-clockwise.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := &Mesh{Name: filepath.Base(path)}
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return fmt.Errorf("position accessor %d out of range", posIdx)
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var indices []uint32
		if prim.Indices != nil {
			if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
				return fmt.Errorf("index accessor %d out of range", *prim.Indices)
			}
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]uint32, len(positions)-len(positions)%3)
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		baseVertex := len(mesh.Vertices)
		for _, p := range positions {
			mesh.Vertices = append(mesh.Vertices, math3d.V3(float64(p[0]), float64(p[1]), -float64(p[2])))
		}

		faceColor := l.primitiveColor(doc, prim)
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Indices = append(mesh.Indices,
				baseVertex+int(indices[i]),
				baseVertex+int(indices[i+2]), // swapped
				baseVertex+int(indices[i+1]), // swapped
			)
			mesh.FaceColors = append(mesh.FaceColors, faceColor)
		}
	}

	return nil
}

// primitiveColor returns the base color factor of the primitive's material.
func (l *GLTFLoader) primitiveColor(doc *gltf.Document, prim *gltf.Primitive) color.RGBA {
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return l.DefaultColor
	}
	mat := doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorFactor == nil {
		return l.DefaultColor
	}
	f := mat.PBRMetallicRoughness.BaseColorFactor
	return color.RGBA{
		R: unitToByte(f[0]),
		G: unitToByte(f[1]),
		B: unitToByte(f[2]),
		A: unitToByte(f[3]),
	}
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
