package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// summary describes one imported and built model.
type summary struct {
	Name        string
	BufferViews int
	Images      int
	Samplers    int
	Textures    int
	Materials   int
	Meshes      int
	Primitives  int
	Nodes       []nodeSummary
	Variants    []string
	Bundles     int
	Pipelines   int
	Programs    int
	BufferBytes uint64
	Min, Max    mgl32.Vec3
}

type nodeSummary struct {
	Index       int
	Name        string
	Mesh        string
	Primitives  int
	Translation mgl32.Vec3
}

// summarize collects counts from m and the device and the world-space bounds of every drawn position.
func summarize(m model.Model, device renderer.Renderer) summary {
	s := summary{
		Name:        m.Name(),
		BufferViews: len(m.BufferViews()),
		Images:      len(m.Images()),
		Samplers:    len(m.Samplers()),
		Textures:    len(m.Textures()),
		Materials:   len(m.Materials()),
		Meshes:      len(m.Meshes()),
		Bundles:     len(m.Bundles()),
	}
	s.Min, s.Max, _ = worldBounds(m)
	stats := device.Stats()
	s.Pipelines = stats.Count(renderer.ResourceRenderPipeline)
	s.Programs = stats.Count(renderer.ResourceShaderModule)
	s.BufferBytes = stats.BufferBytes

	for _, mesh := range m.Meshes() {
		if mesh != nil {
			s.Primitives += len(mesh.Primitives)
		}
	}

	for _, n := range m.Nodes() {
		ns := nodeSummary{Index: n.Index, Name: n.Name, Translation: n.World.Col(3).Vec3()}
		if n.Mesh != nil {
			ns.Mesh = n.Mesh.Name
			ns.Primitives = len(n.Mesh.Primitives)
			for _, prim := range n.Mesh.Primitives {
				if key := prim.Features().Key(); !slices.Contains(s.Variants, key) {
					s.Variants = append(s.Variants, key)
				}
			}
		}
		s.Nodes = append(s.Nodes, ns)
	}
	slices.Sort(s.Variants)
	return s
}

// worldBounds returns the axis-aligned box around every drawn position in world space.
// ok is false when the model draws nothing.
func worldBounds(m model.Model) (lo, hi mgl32.Vec3, ok bool) {
	lo = mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi = mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, n := range m.Nodes() {
		if n.Mesh == nil {
			continue
		}
		for _, prim := range n.Mesh.Primitives {
			for i := 0; i < prim.Positions.Count(); i++ {
				p, err := prim.Positions.Float32s(i)
				if err != nil || len(p) < 3 {
					break
				}
				w := mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, n.World)
				for c := 0; c < 3; c++ {
					lo[c] = min(lo[c], w[c])
					hi[c] = max(hi[c], w[c])
				}
				ok = true
			}
		}
	}
	return lo, hi, ok
}

func (s summary) print(w io.Writer) {
	fmt.Fprintf(w, "model %q\n", s.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  buffer views\t%d\n", s.BufferViews)
	fmt.Fprintf(tw, "  images\t%d\n", s.Images)
	fmt.Fprintf(tw, "  samplers\t%d\n", s.Samplers)
	fmt.Fprintf(tw, "  textures\t%d\n", s.Textures)
	fmt.Fprintf(tw, "  materials\t%d\n", s.Materials)
	fmt.Fprintf(tw, "  meshes\t%d (%d primitives)\n", s.Meshes, s.Primitives)
	fmt.Fprintf(tw, "  nodes\t%d\n", len(s.Nodes))
	fmt.Fprintf(tw, "  variants\t%v\n", s.Variants)
	fmt.Fprintf(tw, "  render bundles\t%d\n", s.Bundles)
	fmt.Fprintf(tw, "  pipelines\t%d\n", s.Pipelines)
	fmt.Fprintf(tw, "  shader programs\t%d\n", s.Programs)
	fmt.Fprintf(tw, "  buffer bytes\t%d\n", s.BufferBytes)
	if len(s.Nodes) > 0 {
		fmt.Fprintf(tw, "  bounds\t[%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n", s.Min[0], s.Min[1], s.Min[2], s.Max[0], s.Max[1], s.Max[2])
	}
	tw.Flush()

	for _, n := range s.Nodes {
		fmt.Fprintf(w, "  node %d %q mesh %q primitives %d at (%.3f, %.3f, %.3f)\n",
			n.Index, n.Name, n.Mesh, n.Primitives, n.Translation[0], n.Translation[1], n.Translation[2])
	}
}
