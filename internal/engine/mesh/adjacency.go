package mesh

// MaxNeighbors is the capacity of one adjacency row.
const MaxNeighbors = 10

// Default adjacency tolerances.
const (
	DefaultVertexEpsilon = 1e-6
	// DefaultOpposingDot rejects neighbor pairs whose normals point in
	// opposite directions, such as the two sides of thin double-sided geometry.
	DefaultOpposingDot = -0.9
)

// AdjacencyOptions controls how shared edges are detected.
type AdjacencyOptions struct {
	// VertexEpsilon is the distance under which two vertex positions coincide.
	VertexEpsilon float64
	// OpposingDot is the normal dot product a pair must exceed to be adjacent.
	OpposingDot float64
}

// DefaultAdjacencyOptions returns the default tolerances.
func DefaultAdjacencyOptions() AdjacencyOptions {
	return AdjacencyOptions{
		VertexEpsilon: DefaultVertexEpsilon,
		OpposingDot:   DefaultOpposingDot,
	}
}

// Row is the bounded neighbor list of one face.
type Row struct {
	Neighbors [MaxNeighbors]int
	Count     int
}

// Graph answers which faces share an edge with a face and face roughly the same way.
// Rows are parallel to Mesh.Faces and never change after construction.
type Graph struct {
	rows    []Row
	dropped int
}

// BuildAdjacency builds the face adjacency graph pairwise over all faces.
// Two faces are adjacent when exactly two of their corners coincide and their
// normals are not opposing. A pair is only linked when both rows have room,
// which keeps the graph symmetric.
func BuildAdjacency(m *Mesh, opts AdjacencyOptions) *Graph {
	if m.IsEmpty() {
		return &Graph{}
	}

	g := &Graph{rows: make([]Row, len(m.Faces))}
	epsSq := opts.VertexEpsilon * opts.VertexEpsilon

	for i := 0; i < len(m.Faces); i++ {
		ci := m.Corners(i)
		ni := m.Faces[i].Normal
		for j := i + 1; j < len(m.Faces); j++ {
			cj := m.Corners(j)

			shared := 0
			for _, a := range ci {
				for _, b := range cj {
					d := a.Sub(b)
					if d.Dot(d) <= epsSq {
						shared++
						break
					}
				}
			}
			if shared != 2 {
				continue
			}
			if ni.Dot(m.Faces[j].Normal) <= opts.OpposingDot {
				continue
			}

			ri, rj := &g.rows[i], &g.rows[j]
			if ri.Count >= MaxNeighbors || rj.Count >= MaxNeighbors {
				g.dropped++
				continue
			}
			ri.Neighbors[ri.Count] = j
			ri.Count++
			rj.Neighbors[rj.Count] = i
			rj.Count++
		}
	}

	return g
}

// Neighbors returns the adjacent faces of face f.
// The returned slice aliases the graph and must not be modified.
func (g *Graph) Neighbors(f int) []int {
	if f < 0 || f >= len(g.rows) {
		return nil
	}
	r := &g.rows[f]
	return r.Neighbors[:r.Count]
}

// Adjacent reports whether faces a and b share an edge in the graph.
func (g *Graph) Adjacent(a, b int) bool {
	for _, n := range g.Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

// FaceCount returns the number of rows.
func (g *Graph) FaceCount() int {
	return len(g.rows)
}

// Dropped returns how many adjacent pairs were discarded because a row was full.
func (g *Graph) Dropped() int {
	return g.dropped
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for i := range g.rows {
		total += g.rows[i].Count
	}
	return total / 2
}
