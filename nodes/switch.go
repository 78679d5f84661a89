package nodes

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/hdelmont/mediagraph/graph"
)

// switchPorts is the number of optional input ports each selector exposes.
const switchPorts = 10

func switchFields(kind graph.Kind) []graph.Field {
	fields := make([]graph.Field, 0, switchPorts)
	for i := 1; i <= switchPorts; i++ {
		fields = append(fields, graph.Field{
			Name: fmt.Sprintf("input%d", i),
			Kind: kind,
		})
	}
	return fields
}

// connectedValues collects the values of connected ports in port order.
// Disconnected ports are skipped, so selection indexes only live inputs.
func connectedValues(in graph.Inputs) []any {
	var values []any
	for i := 1; i <= switchPorts; i++ {
		if v, ok := in.Value(fmt.Sprintf("input%d", i)); ok && v != nil {
			values = append(values, v)
		}
	}
	return values
}

// CyclingSwitch walks its connected inputs round-robin: invocation k returns
// connected[k mod n]. The counter survives across invocations and is indexed
// modulo the current input count, so adding or removing connections mid-run
// stays safe.
type CyclingSwitch struct {
	typeName string
	kind     graph.Kind
	empty    any
	counter  int
}

// NewCyclingSwitch returns the string-typed cycling selector.
func NewCyclingSwitch() *CyclingSwitch {
	return &CyclingSwitch{typeName: "CyclingSwitch", kind: graph.KindString, empty: ""}
}

// NewCyclingSwitchAny returns the type-agnostic cycling selector.
func NewCyclingSwitchAny() *CyclingSwitch {
	return &CyclingSwitch{typeName: "CyclingSwitchAny", kind: graph.KindAny, empty: nil}
}

func (s *CyclingSwitch) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        s.typeName,
		DisplayName: "Cycling Switch",
		Category:    "utils/switch",
		Inputs:      switchFields(s.kind),
		ReturnKinds: []graph.Kind{s.kind},
		ReturnNames: []string{"selected"},
	}
}

func (s *CyclingSwitch) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	values := connectedValues(in)
	if len(values) == 0 {
		return &graph.Result{Values: []any{s.empty}}, nil
	}
	selected := values[s.counter%len(values)]
	s.counter++
	return &graph.Result{Values: []any{selected}}, nil
}

// RandomSwitch picks one connected input uniformly at random, using a
// crypto-strength source so runs are not reproducible across restarts.
type RandomSwitch struct {
	typeName string
	kind     graph.Kind
	empty    any
}

// NewRandomSwitch returns the string-typed random selector.
func NewRandomSwitch() *RandomSwitch {
	return &RandomSwitch{typeName: "RandomSwitch", kind: graph.KindString, empty: ""}
}

// NewRandomSwitchAny returns the type-agnostic random selector.
func NewRandomSwitchAny() *RandomSwitch {
	return &RandomSwitch{typeName: "RandomSwitchAny", kind: graph.KindAny, empty: nil}
}

func (s *RandomSwitch) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        s.typeName,
		DisplayName: "Random Switch",
		Category:    "utils/switch",
		Inputs:      switchFields(s.kind),
		ReturnKinds: []graph.Kind{s.kind},
		ReturnNames: []string{"selected"},
	}
}

func (s *RandomSwitch) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	values := connectedValues(in)
	if len(values) == 0 {
		return &graph.Result{Values: []any{s.empty}}, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(values))))
	if err != nil {
		return nil, fmt.Errorf("random selection: %w", err)
	}
	return &graph.Result{Values: []any{values[n.Int64()]}}, nil
}
