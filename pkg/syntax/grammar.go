package syntax

// Kind classifies a node. Its meaning is defined by the Grammar the node belongs to.
type Kind uint16

// KindPlaceholder is reserved for synthetic nodes that stand in for the
// content of another node. It has no properties in any grammar.
const KindPlaceholder Kind = 0xFFFF

// PropertyID indexes the properties declared for a Kind.
type PropertyID uint8

// PropType describes what a property slot holds.
type PropType uint8

const (
	// PropNode holds at most one child node.
	PropNode PropType = iota

	// PropList holds an ordered sequence of child nodes.
	PropList

	// PropAttr holds a primitive value (name, operator, flags) with its own token range.
	PropAttr
)

// String returns a human-readable name for the property type.
func (t PropType) String() string {
	switch t {
	case PropNode:
		return "node"
	case PropList:
		return "list"
	case PropAttr:
		return "attr"
	default:
		return "unknown"
	}
}

// PropSpec declares a single property of a node kind.
type PropSpec struct {
	Name string
	Type PropType
}

// KindSpec declares the name and ordered properties of a node kind.
type KindSpec struct {
	Name  string
	Props []PropSpec
}

// Grammar is a read-only table of node kinds and their property slots.
// Bindings declare one package-level Grammar and never modify it afterwards.
type Grammar struct {
	Name  string
	Kinds []KindSpec
}

var placeholderSpec = KindSpec{Name: "placeholder"}

// Spec returns the declaration for kind. Unknown kinds yield an empty spec.
func (g *Grammar) Spec(kind Kind) KindSpec {
	if kind == KindPlaceholder {
		return placeholderSpec
	}
	if g == nil || int(kind) >= len(g.Kinds) {
		return KindSpec{Name: "invalid"}
	}
	return g.Kinds[kind]
}

// KindName returns the declared name of kind.
func (g *Grammar) KindName(kind Kind) string {
	return g.Spec(kind).Name
}

// Prop returns the declaration of property id on kind.
func (g *Grammar) Prop(kind Kind, id PropertyID) (PropSpec, bool) {
	spec := g.Spec(kind)
	if int(id) >= len(spec.Props) {
		return PropSpec{}, false
	}
	return spec.Props[id], true
}

// PropByName looks up a property of kind by its declared name.
func (g *Grammar) PropByName(kind Kind, name string) (PropertyID, bool) {
	for i, p := range g.Spec(kind).Props {
		if p.Name == name {
			return PropertyID(i), true
		}
	}
	return 0, false
}

// KindByName looks up a kind by its declared name.
func (g *Grammar) KindByName(name string) (Kind, bool) {
	if g == nil {
		return 0, false
	}
	for i, k := range g.Kinds {
		if k.Name == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Patch is a set of attribute changes for a node, keyed by property.
type Patch map[PropertyID]any
