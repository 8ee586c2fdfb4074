package pipeline

import (
	"container/heap"
	"context"
	"slices"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

// Task is a named unit of work with ordering dependencies.
type Task struct {
	Name        string
	Description string
	DependsOn   []string
	Run         func(ctx context.Context) error
}

// Graph is an immutable set of tasks in declaration order.
type Graph struct {
	tasks    []Task
	index    map[string]int
	outgoing [][]int
	indeg    []int
}

// NewGraph validates tasks and builds the graph. Duplicate names, unknown
// dependencies and cycles are validation errors.
func NewGraph(tasks ...Task) (*Graph, error) {
	g := &Graph{
		tasks:    tasks,
		index:    make(map[string]int, len(tasks)),
		outgoing: make([][]int, len(tasks)),
		indeg:    make([]int, len(tasks)),
	}
	for i, t := range tasks {
		if _, dup := g.index[t.Name]; dup {
			return nil, errors.ValidationError("duplicate task").WithContext("task", t.Name).Build()
		}
		g.index[t.Name] = i
	}
	for i, t := range tasks {
		for _, dep := range t.DependsOn {
			d, ok := g.index[dep]
			if !ok {
				return nil, errors.ValidationError("task depends on unknown task").
					WithContext("task", t.Name).
					WithContext("dependency", dep).
					Build()
			}
			g.outgoing[d] = append(g.outgoing[d], i)
			g.indeg[i]++
		}
	}
	for i := range g.outgoing {
		slices.Sort(g.outgoing[i])
	}

	all := make([]bool, len(tasks))
	for i := range all {
		all[i] = true
	}
	if order := g.order(all); len(order) != len(tasks) {
		return nil, errors.ValidationError("task graph contains a cycle").
			WithContext("tasks", g.unordered(order)).
			Build()
	}
	return g, nil
}

// Names returns task names in declaration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.tasks))
	for i, t := range g.tasks {
		names[i] = t.Name
	}
	return names
}

// Task looks up a task by name.
func (g *Graph) Task(name string) (Task, bool) {
	i, ok := g.index[name]
	if !ok {
		return Task{}, false
	}
	return g.tasks[i], true
}

// Plan returns the tasks needed for targets in execution order. Ties between
// ready tasks are broken by declaration order.
func (g *Graph) Plan(targets []string) ([]string, error) {
	if len(targets) == 0 {
		return nil, errors.ValidationError("no targets requested").Build()
	}
	needed := make([]bool, len(g.tasks))
	var visit func(i int)
	visit = func(i int) {
		if needed[i] {
			return
		}
		needed[i] = true
		for _, dep := range g.tasks[i].DependsOn {
			visit(g.index[dep])
		}
	}
	for _, target := range targets {
		i, ok := g.index[target]
		if !ok {
			return nil, errors.ValidationError("unknown task").
				WithContext("task", target).
				WithContext("available", g.Names()).
				Build()
		}
		visit(i)
	}

	order := g.order(needed)
	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = g.tasks[idx].Name
	}
	return names, nil
}

// order is Kahn's algorithm restricted to the included nodes, with a
// min-heap of declaration indices as ready queue.
func (g *Graph) order(include []bool) []int {
	indeg := make([]int, len(g.tasks))
	for i, inc := range include {
		if !inc {
			continue
		}
		for _, dep := range g.tasks[i].DependsOn {
			if include[g.index[dep]] {
				indeg[i]++
			}
		}
	}

	ready := &indexHeap{}
	for i, inc := range include {
		if inc && indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	var out []int
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.outgoing[n] {
			if !include[m] {
				continue
			}
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

func (g *Graph) unordered(order []int) []string {
	done := make([]bool, len(g.tasks))
	for _, i := range order {
		done[i] = true
	}
	var names []string
	for i, t := range g.tasks {
		if !done[i] {
			names = append(names, t.Name)
		}
	}
	return names
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
