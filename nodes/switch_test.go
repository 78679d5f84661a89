package nodes

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hdelmont/mediagraph/graph"
)

func switchInputs(values ...any) graph.Inputs {
	in := graph.Inputs{}
	for i, v := range values {
		in[fmt.Sprintf("input%d", i+1)] = v
	}
	return in
}

func selectOnce(t *testing.T, node graph.Node, in graph.Inputs) any {
	t.Helper()
	res, err := node.Execute(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Values, 1)
	return res.Values[0]
}

func TestCyclingSwitchRoundRobin(t *testing.T) {
	node := NewCyclingSwitch()
	in := switchInputs("a", "b", "c")

	got := make([]any, 0, 6)
	for i := 0; i < 6; i++ {
		got = append(got, selectOnce(t, node, in))
	}
	assert.Equal(t, []any{"a", "b", "c", "a", "b", "c"}, got)
}

func TestCyclingSwitchSkipsDisconnectedPorts(t *testing.T) {
	node := NewCyclingSwitch()
	// Ports 2 and 4 connected only.
	in := graph.Inputs{"input2": "x", "input4": "y"}

	assert.Equal(t, "x", selectOnce(t, node, in))
	assert.Equal(t, "y", selectOnce(t, node, in))
	assert.Equal(t, "x", selectOnce(t, node, in))
}

func TestCyclingSwitchNoInputs(t *testing.T) {
	assert.Equal(t, "", selectOnce(t, NewCyclingSwitch(), graph.Inputs{}))
	assert.Nil(t, selectOnce(t, NewCyclingSwitchAny(), graph.Inputs{}))
}

func TestCyclingSwitchSurvivesInputCountChange(t *testing.T) {
	node := NewCyclingSwitch()
	three := switchInputs("a", "b", "c")
	selectOnce(t, node, three)
	selectOnce(t, node, three)
	// Counter is now 2; with two inputs it must index modulo 2, not panic.
	assert.Equal(t, "a", selectOnce(t, node, switchInputs("a", "b")))
}

func TestCyclingSwitchPermutationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, switchPorts).Draw(t, "n")
		values := make([]any, n)
		for i := range values {
			values[i] = fmt.Sprintf("v%d", i)
		}
		node := NewCyclingSwitch()
		in := switchInputs(values...)

		// Any window of n consecutive invocations yields each input once.
		offset := rapid.IntRange(0, 3*n).Draw(t, "offset")
		for i := 0; i < offset; i++ {
			if _, err := node.Execute(context.Background(), in); err != nil {
				t.Fatalf("execute: %v", err)
			}
		}
		seen := map[any]int{}
		for i := 0; i < n; i++ {
			res, err := node.Execute(context.Background(), in)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			seen[res.Values[0]]++
		}
		for _, v := range values {
			if seen[v] != 1 {
				t.Fatalf("value %v selected %d times in one period", v, seen[v])
			}
		}
	})
}

func TestRandomSwitchSelectsConnectedValue(t *testing.T) {
	node := NewRandomSwitch()
	in := switchInputs("a", "b", "c")
	for i := 0; i < 20; i++ {
		assert.Contains(t, []any{"a", "b", "c"}, selectOnce(t, node, in))
	}
}

func TestRandomSwitchNoInputs(t *testing.T) {
	assert.Equal(t, "", selectOnce(t, NewRandomSwitch(), graph.Inputs{}))
	assert.Nil(t, selectOnce(t, NewRandomSwitchAny(), graph.Inputs{}))
}

func TestRandomSwitchCoversAllInputs(t *testing.T) {
	node := NewRandomSwitch()
	in := switchInputs("a", "b", "c")
	counts := map[any]int{}
	for i := 0; i < 300; i++ {
		counts[selectOnce(t, node, in)]++
	}
	// Uniform selection over 3 inputs: each expected ~100 draws. The chance
	// of any input landing below 40 is negligible.
	for _, v := range []any{"a", "b", "c"} {
		assert.Greater(t, counts[v], 40, "input %v drawn too rarely", v)
	}
}

func TestSwitchDescriptors(t *testing.T) {
	for _, node := range []graph.Node{
		NewCyclingSwitch(), NewRandomSwitch(),
		NewCyclingSwitchAny(), NewRandomSwitchAny(),
	} {
		desc := node.Describe()
		assert.Len(t, desc.Inputs, switchPorts)
		require.Len(t, desc.ReturnKinds, 1)
		for _, f := range desc.Inputs {
			assert.False(t, f.Required, "switch ports are all optional")
			assert.Equal(t, desc.ReturnKinds[0], f.Kind)
		}
	}
}
