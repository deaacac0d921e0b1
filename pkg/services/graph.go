package services

import (
	"sort"

	"github.com/wolfdata/schemascan/pkg/models"
)

// RelationshipGraph is the candidate-relationship graph of one session:
// nodes are datasets, edges are scored relationship candidates. Invariants:
// no self-loop edges, and at most one edge per unordered column pair (the
// highest-scoring orientation is retained).
type RelationshipGraph struct {
	nodes map[string]bool
	order []string
	edges map[string]models.RelationshipCandidate
}

// NewRelationshipGraph creates an empty graph.
func NewRelationshipGraph() *RelationshipGraph {
	return &RelationshipGraph{
		nodes: make(map[string]bool),
		edges: make(map[string]models.RelationshipCandidate),
	}
}

// AddDataset adds a node without any edges. Used so island datasets still
// appear in the rendered diagram.
func (g *RelationshipGraph) AddDataset(name string) {
	if !g.nodes[name] {
		g.nodes[name] = true
		g.order = append(g.order, name)
	}
}

// Add inserts a candidate edge. Self-loops are rejected; when both
// orientations of the same column pair are offered, the higher-scoring one
// wins. Reports whether the edge was stored.
func (g *RelationshipGraph) Add(c models.RelationshipCandidate) bool {
	if c.SourceDataset == c.TargetDataset {
		return false
	}
	g.AddDataset(c.SourceDataset)
	g.AddDataset(c.TargetDataset)

	key := c.PairKey()
	if existing, ok := g.edges[key]; ok && existing.MatchStrength >= c.MatchStrength {
		return false
	}
	g.edges[key] = c
	return true
}

// Datasets returns all nodes in insertion order.
func (g *RelationshipGraph) Datasets() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all candidate edges sorted by match strength descending.
func (g *RelationshipGraph) Edges() []models.RelationshipCandidate {
	out := make([]models.RelationshipCandidate, 0, len(g.edges))
	for _, c := range g.edges {
		out = append(out, c)
	}
	models.SortCandidates(out)
	return out
}

// ConnectedComponent is a group of datasets linked by candidate edges.
type ConnectedComponent struct {
	Datasets []string
	Size     int
}

// FindConnectedComponents identifies connected groups of datasets using
// DFS. Returns components of size two or more (largest first) and the
// island datasets that have no edges at all.
func (g *RelationshipGraph) FindConnectedComponents() ([]ConnectedComponent, []string) {
	adjacency := make(map[string][]string)
	for _, c := range g.edges {
		adjacency[c.SourceDataset] = append(adjacency[c.SourceDataset], c.TargetDataset)
		adjacency[c.TargetDataset] = append(adjacency[c.TargetDataset], c.SourceDataset)
	}

	visited := make(map[string]bool)
	var components []ConnectedComponent
	var islands []string

	for _, name := range g.order {
		if visited[name] {
			continue
		}
		component := g.dfs(name, adjacency, visited)
		sort.Strings(component)
		if len(component) == 1 {
			islands = append(islands, component[0])
			continue
		}
		components = append(components, ConnectedComponent{
			Datasets: component,
			Size:     len(component),
		})
	}

	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Size > components[j].Size
	})
	return components, islands
}

func (g *RelationshipGraph) dfs(start string, adjacency map[string][]string, visited map[string]bool) []string {
	var component []string
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node] {
			continue
		}
		visited[node] = true
		component = append(component, node)
		stack = append(stack, adjacency[node]...)
	}
	return component
}
