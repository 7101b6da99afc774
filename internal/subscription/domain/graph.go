// Package domain holds the module dependency graph and the limits catalog.
package domain

import (
	"fmt"
	"sort"
)

// Node is a module as the dependency graph sees it.
type Node struct {
	Code      string
	DependsOn []string
}

// Graph answers assignment questions for one plan. It is built from the
// full module list and the set of module codes assigned to the plan.
type Graph struct {
	deps       map[string][]string
	dependents map[string][]string
	assigned   map[string]bool
}

func NewGraph(nodes []Node, assigned []string) *Graph {
	g := &Graph{
		deps:       make(map[string][]string, len(nodes)),
		dependents: make(map[string][]string, len(nodes)),
		assigned:   make(map[string]bool, len(assigned)),
	}
	for _, n := range nodes {
		g.deps[n.Code] = append([]string(nil), n.DependsOn...)
		for _, dep := range n.DependsOn {
			g.dependents[dep] = append(g.dependents[dep], n.Code)
		}
	}
	for _, code := range assigned {
		g.assigned[code] = true
	}
	return g
}

func (g *Graph) IsAssigned(code string) bool {
	return g.assigned[code]
}

// IsBlocked reports whether some direct dependency of code is not assigned.
func (g *Graph) IsBlocked(code string) bool {
	for _, dep := range g.deps[code] {
		if !g.assigned[dep] {
			return true
		}
	}
	return false
}

// Dependents lists the assigned modules that directly require code.
func (g *Graph) Dependents(code string) []string {
	out := []string{}
	for _, other := range g.dependents[code] {
		if other != code && g.assigned[other] {
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out
}

// CantUnassign reports whether an assigned module still depends on code.
func (g *Graph) CantUnassign(code string) bool {
	return len(g.Dependents(code)) > 0
}

// MissingDependencies walks the dependencies of code transitively and
// returns the unassigned ones, dependencies before their dependents.
func (g *Graph) MissingDependencies(code string) []string {
	out := []string{}
	seen := map[string]bool{code: true}
	var walk func(string)
	walk = func(c string) {
		for _, dep := range g.deps[c] {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			walk(dep)
			if !g.assigned[dep] {
				out = append(out, dep)
			}
		}
	}
	walk(code)
	return out
}

// Assign marks codes as assigned on this graph.
func (g *Graph) Assign(codes ...string) {
	for _, code := range codes {
		g.assigned[code] = true
	}
}

func (g *Graph) Unassign(code string) {
	delete(g.assigned, code)
}

// CheckDependencies validates a proposed dependency list for code against
// the known module codes. Unknown codes, self references and cycles fail.
func CheckDependencies(code string, dependsOn []string, nodes []Node) error {
	known := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		known[n.Code] = n.DependsOn
	}
	if _, ok := known[code]; !ok {
		known[code] = nil
	}

	for _, dep := range dependsOn {
		if dep == code {
			return fmt.Errorf("module %q cannot depend on itself", code)
		}
		if _, ok := known[dep]; !ok {
			return fmt.Errorf("unknown module %q", dep)
		}
	}
	known[code] = dependsOn

	// Any path from a new dependency back to code closes a cycle.
	visiting := map[string]bool{}
	var reaches func(string) bool
	reaches = func(c string) bool {
		if c == code {
			return true
		}
		if visiting[c] {
			return false
		}
		visiting[c] = true
		for _, next := range known[c] {
			if reaches(next) {
				return true
			}
		}
		return false
	}
	for _, dep := range dependsOn {
		if reaches(dep) {
			return fmt.Errorf("dependency on %q creates a cycle", dep)
		}
	}
	return nil
}
