// Package ir holds the shape tree produced by inference. Nodes live in an
// arena and are addressed by NodeID; a node is never mutated after it has been
// appended, so identity is the index. Slots are forward-reference cells that
// point at a node once one has been recorded for them.
package ir

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// Kind identifies a shape node variant.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindNull
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindString:  "string",
	KindInteger: "integer",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindNull:    "null",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsLeaf reports whether the kind carries no children.
func (k Kind) IsLeaf() bool { return k != KindArray && k != KindObject }

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("ir: unknown kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "int", "float" and "bool"
// are accepted as aliases.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "string":
		*k = KindString
	case "integer", "int":
		*k = KindInteger
	case "number", "float":
		*k = KindNumber
	case "boolean", "bool":
		*k = KindBoolean
	case "null":
		*k = KindNull
	case "array":
		*k = KindArray
	case "object":
		*k = KindObject
	default:
		return fmt.Errorf("ir: unknown kind %q", string(b))
	}
	return nil
}

// NodeID addresses a node in an Arena.
type NodeID int

// NoNode is the zero reference; it never addresses a node.
const NoNode NodeID = -1

// Fields maps field names to nodes in insertion order.
type Fields = orderedmap.OrderedMap[string, NodeID]

// NewFields returns an empty field map.
func NewFields() *Fields { return orderedmap.NewOrderedMap[string, NodeID]() }

// Node is one inferred shape. Element is set for arrays; Required and
// Optional for objects.
type Node struct {
	Kind     Kind
	Element  NodeID
	Required *Fields
	Optional *Fields
}

// SlotID addresses a slot in an Arena.
type SlotID int

// Arena owns every node and slot created during one compilation.
type Arena struct {
	nodes []Node
	slots []NodeID
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// Leaf appends a fresh leaf node of kind k.
func (a *Arena) Leaf(k Kind) NodeID {
	if !k.IsLeaf() {
		panic("ir: Leaf called with container kind " + k.String())
	}
	return a.push(Node{Kind: k, Element: NoNode})
}

// Array appends a fresh array node over elem.
func (a *Arena) Array(elem NodeID) NodeID {
	return a.push(Node{Kind: KindArray, Element: elem})
}

// Object appends a fresh object node. The maps are copied so later changes
// by the caller do not leak into the stored node.
func (a *Arena) Object(required, optional *Fields) NodeID {
	return a.push(Node{Kind: KindObject, Element: NoNode, Required: copyFields(required), Optional: copyFields(optional)})
}

func (a *Arena) push(n Node) NodeID {
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

// Node returns the node addressed by id.
func (a *Arena) Node(id NodeID) Node {
	return a.nodes[id]
}

// Len reports the number of nodes allocated so far.
func (a *Arena) Len() int { return len(a.nodes) }

// NewSlot allocates an empty slot.
func (a *Arena) NewSlot() SlotID {
	a.slots = append(a.slots, NoNode)
	return SlotID(len(a.slots) - 1)
}

// Fill points slot s at node id, replacing any previous content.
func (a *Arena) Fill(s SlotID, id NodeID) { a.slots[s] = id }

// Read returns the node held by slot s and whether the slot has been filled.
func (a *Arena) Read(s SlotID) (NodeID, bool) {
	id := a.slots[s]
	return id, id != NoNode
}

// ReadOrNull returns the node held by s, filling it with a fresh Null leaf
// when it is still empty.
func (a *Arena) ReadOrNull(s SlotID) NodeID {
	if id, ok := a.Read(s); ok {
		return id
	}
	id := a.Leaf(KindNull)
	a.slots[s] = id
	return id
}

func copyFields(src *Fields) *Fields {
	out := NewFields()
	if src == nil {
		return out
	}
	for el := src.Front(); el != nil; el = el.Next() {
		out.Set(el.Key, el.Value)
	}
	return out
}

// Each calls fn for every entry of f in insertion order.
func Each(f *Fields, fn func(name string, id NodeID)) {
	if f == nil {
		return
	}
	for el := f.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}
