// Package graph defines the contract between pipeline nodes and the host
// node-graph runtime: typed input schemas, output tuples, a registry with
// alias support, and an instrumented runner.
package graph

import "context"

// Kind identifies the declared type of a node input or output.
type Kind string

const (
	KindString Kind = "STRING"
	KindInt    Kind = "INT"
	KindFloat  Kind = "FLOAT"
	KindBool   Kind = "BOOLEAN"
	KindChoice Kind = "CHOICE"
	KindImage  Kind = "IMAGE"
	KindAny    Kind = "*"
)

// Field describes one declared node input.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     any
	Min         float64
	Max         float64
	Step        float64
	Choices     []string
	Multiline   bool
	Placeholder string
}

// Descriptor declares a node's schema to the host.
type Descriptor struct {
	Type        string
	DisplayName string
	Category    string
	Inputs      []Field
	ReturnKinds []Kind
	ReturnNames []string
	// OutputNode marks nodes the host always executes (file producers,
	// previews) even when nothing consumes their outputs.
	OutputNode bool
}

// Node is a single pipeline node. The host guarantees single-threaded,
// one-invocation-at-a-time execution per instance, so implementations may
// keep plain mutable state (e.g. selector counters).
type Node interface {
	Describe() Descriptor
	Execute(ctx context.Context, in Inputs) (*Result, error)
}

// Inputs carries the resolved input values for one invocation. Absent keys
// mean the corresponding port is not connected.
type Inputs map[string]any

// String returns the named string input and whether it was connected.
func (in Inputs) String(name string) (string, bool) {
	v, ok := in[name].(string)
	return v, ok
}

// StringOr returns the named string input or a default.
func (in Inputs) StringOr(name, def string) string {
	if v, ok := in.String(name); ok {
		return v
	}
	return def
}

// Int returns the named integer input. JSON-decoded graphs deliver numbers
// as float64, so both forms are accepted.
func (in Inputs) Int(name string) (int, bool) {
	switch v := in[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// IntOr returns the named integer input or a default.
func (in Inputs) IntOr(name string, def int) int {
	if v, ok := in.Int(name); ok {
		return v
	}
	return def
}

// Float returns the named float input.
func (in Inputs) Float(name string) (float64, bool) {
	switch v := in[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// FloatOr returns the named float input or a default.
func (in Inputs) FloatOr(name string, def float64) float64 {
	if v, ok := in.Float(name); ok {
		return v
	}
	return def
}

// Bool returns the named boolean input.
func (in Inputs) Bool(name string) (bool, bool) {
	v, ok := in[name].(bool)
	return v, ok
}

// BoolOr returns the named boolean input or a default.
func (in Inputs) BoolOr(name string, def bool) bool {
	if v, ok := in.Bool(name); ok {
		return v
	}
	return def
}

// Value returns the raw input value and whether the port is connected.
func (in Inputs) Value(name string) (any, bool) {
	v, ok := in[name]
	return v, ok
}

// Result is a node's output tuple plus an optional UI payload.
type Result struct {
	Values []any
	UI     *UIPayload
}

// UIPayload carries host-UI directives produced alongside node outputs.
type UIPayload struct {
	Videos []VideoPreview `json:"videos,omitempty"`
}

// VideoPreview describes a produced video file for in-app preview.
type VideoPreview struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
	Format    string `json:"format"`
}

// OutputVideoPreview returns the payload for a video written to the host
// output directory.
func OutputVideoPreview(filename string) *UIPayload {
	return &UIPayload{Videos: []VideoPreview{{
		Filename:  filename,
		Subfolder: "",
		Type:      "output",
		Format:    "video/mp4",
	}}}
}
