package estree

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// node is one ESTree object with its fields left undecoded until asked for.
type node map[string]json.RawMessage

func (n node) typ() string {
	return n.str("type")
}

func (n node) has(key string) bool {
	raw, ok := n[key]
	return ok && string(raw) != "null"
}

func (n node) str(key string) string {
	var s string
	if raw, ok := n[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (n node) bool(key string) bool {
	var b bool
	if raw, ok := n[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

func (n node) child(key string) (node, error) {
	raw, ok := n[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var c node
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", n.typ(), key)
	}
	return c, nil
}

// children decodes an array field. null elements stay nil.
func (n node) children(key string) ([]node, error) {
	raw, ok := n[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var list []node
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", n.typ(), key)
	}
	return list, nil
}

// span returns the source offsets of the node from either the esprima
// "range" or the acorn "start"/"end" fields.
func (n node) span() (start, end int, ok bool) {
	if raw, found := n["range"]; found {
		var r []int
		if json.Unmarshal(raw, &r) == nil && len(r) == 2 {
			return r[0], r[1], true
		}
	}
	if n.has("start") && n.has("end") {
		if json.Unmarshal(n["start"], &start) == nil && json.Unmarshal(n["end"], &end) == nil {
			return start, end, true
		}
	}
	return 0, 0, false
}
