package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

func noop(context.Context) error { return nil }

func standardGraph(t *testing.T) *Graph {
	t.Helper()
	r := &run{}
	g, err := r.graph()
	require.NoError(t, err)
	return g
}

func TestGraph_PlanBuild(t *testing.T) {
	plan, err := standardGraph(t).Plan([]string{TaskBuild})
	require.NoError(t, err)
	assert.Equal(t, []string{TaskCompileJava, TaskJar, TaskShadowJar, TaskSourcesJar, TaskCheckstyleMain, TaskBuild}, plan)
}

func TestGraph_PlanSubset(t *testing.T) {
	g := standardGraph(t)

	plan, err := g.Plan([]string{TaskShadowJar})
	require.NoError(t, err)
	assert.Equal(t, []string{TaskCompileJava, TaskShadowJar}, plan)

	plan, err = g.Plan([]string{TaskSourcesJar, TaskJar, TaskJar})
	require.NoError(t, err)
	assert.Equal(t, []string{TaskCompileJava, TaskJar, TaskSourcesJar}, plan)

	plan, err = g.Plan([]string{TaskPublish})
	require.NoError(t, err)
	assert.Equal(t, TaskPublish, plan[len(plan)-1])
	assert.Len(t, plan, 7)
}

func TestGraph_PlanUnknownTarget(t *testing.T) {
	_, err := standardGraph(t).Plan([]string{"assemble"})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))

	_, err = standardGraph(t).Plan(nil)
	require.Error(t, err)
}

func TestGraph_DeclarationOrderBreaksTies(t *testing.T) {
	g, err := NewGraph(
		Task{Name: "root", Run: noop},
		Task{Name: "z", DependsOn: []string{"root"}, Run: noop},
		Task{Name: "a", DependsOn: []string{"root"}, Run: noop},
		Task{Name: "all", DependsOn: []string{"a", "z"}, Run: noop},
	)
	require.NoError(t, err)

	plan, err := g.Plan([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "z", "a", "all"}, plan)
}

func TestNewGraph_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
	}{
		{"cycle", []Task{
			{Name: "a", DependsOn: []string{"b"}},
			{Name: "b", DependsOn: []string{"a"}},
		}},
		{"self dependency", []Task{{Name: "a", DependsOn: []string{"a"}}}},
		{"unknown dependency", []Task{{Name: "a", DependsOn: []string{"missing"}}}},
		{"duplicate", []Task{{Name: "a"}, {Name: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.tasks...)
			require.Error(t, err)
			assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
		})
	}
}

func TestGraph_Names(t *testing.T) {
	g := standardGraph(t)
	assert.Equal(t, []string{
		TaskCompileJava, TaskJar, TaskShadowJar, TaskSourcesJar, TaskCheckstyleMain, TaskBuild, TaskPublish,
	}, g.Names())

	task, ok := g.Task(TaskBuild)
	require.True(t, ok)
	assert.Contains(t, task.DependsOn, TaskShadowJar)

	_, ok = g.Task("nope")
	assert.False(t, ok)
}
