package sdjwt

// Tag is the outer enum of the recursive disclosable schema: whether an
// element is always plain or may be selectively disclosed (spec.md §3/§4.1,
// §9 "Recursive tagged unions").
type Tag int

const (
	TagNever  Tag = iota // NeverSelectively: always emitted plain
	TagAlways            // AlwaysSelectively: becomes a disclosure + digest
)

func (t Tag) String() string {
	if t == TagAlways {
		return "AlwaysSelectively"
	}
	return "NeverSelectively"
}

// Shape is the inner enum of DisclosableValue: a leaf, an object, or an
// array.
type Shape int

const (
	ShapeID Shape = iota
	ShapeObject
	ShapeArray
)

// DisclosableValue is `DisclosableValue<K,A> ∈ {Id(A), Obj(...), Arr(...)}`
// from spec.md §3, generic over the leaf type A. K (the claim-key type) is
// fixed to string: every consumer in this codebase and the corpus it is
// grounded on keys objects by string claim names, so the extra generic
// dimension spec.md allows is not exercised.
type DisclosableValue[A any] struct {
	shape Shape
	leaf  A
	obj   *DisclosableObject[A]
	arr   *DisclosableArray[A]
}

// Id builds a leaf DisclosableValue.
func Id[A any](leaf A) DisclosableValue[A] {
	return DisclosableValue[A]{shape: ShapeID, leaf: leaf}
}

// Obj builds an object-shaped DisclosableValue.
func Obj[A any](o *DisclosableObject[A]) DisclosableValue[A] {
	return DisclosableValue[A]{shape: ShapeObject, obj: o}
}

// Arr builds an array-shaped DisclosableValue.
func Arr[A any](a *DisclosableArray[A]) DisclosableValue[A] {
	return DisclosableValue[A]{shape: ShapeArray, arr: a}
}

func (v DisclosableValue[A]) Shape() Shape             { return v.shape }
func (v DisclosableValue[A]) Leaf() A                  { return v.leaf }
func (v DisclosableValue[A]) Object() *DisclosableObject[A] { return v.obj }
func (v DisclosableValue[A]) Array() *DisclosableArray[A]   { return v.arr }

// DisclosableElement is `Disclosable<DisclosableValue>`: a tag plus a value.
type DisclosableElement[A any] struct {
	Tag   Tag
	Value DisclosableValue[A]
}

// NeverSelectively tags a value as always emitted plain.
func NeverSelectively[A any](v DisclosableValue[A]) DisclosableElement[A] {
	return DisclosableElement[A]{Tag: TagNever, Value: v}
}

// AlwaysSelectively tags a value as selectively disclosable.
func AlwaysSelectively[A any](v DisclosableValue[A]) DisclosableElement[A] {
	return DisclosableElement[A]{Tag: TagAlways, Value: v}
}

// IsSelective reports whether the element is tagged AlwaysSelectively.
func (e DisclosableElement[A]) IsSelective() bool { return e.Tag == TagAlways }

// DisclosableObject is `DisclosableObject<K,A> = mapping from K to
// DisclosableElement`. Keys preserves insertion order so that issuance is
// deterministic given a deterministic salt/decoy provider.
type DisclosableObject[A any] struct {
	Children   map[string]DisclosableElement[A]
	Keys       []string
	MinDigests *int // per-container floor; nil defers to the factory's fallbackMinimumDigests
}

// NewDisclosableObject returns an empty object container.
func NewDisclosableObject[A any]() *DisclosableObject[A] {
	return &DisclosableObject[A]{Children: map[string]DisclosableElement[A]{}}
}

// Set adds or replaces a child by key, preserving first-insertion order.
func (o *DisclosableObject[A]) Set(key string, el DisclosableElement[A]) *DisclosableObject[A] {
	if _, exists := o.Children[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Children[key] = el
	return o
}

// WithMinDigests sets this container's own `_sd` floor.
func (o *DisclosableObject[A]) WithMinDigests(n int) *DisclosableObject[A] {
	o.MinDigests = &n
	return o
}

// DisclosableArray is `DisclosableArray<K,A> = ordered sequence of
// DisclosableElement`.
type DisclosableArray[A any] struct {
	Elements   []DisclosableElement[A]
	MinDigests *int
}

// NewDisclosableArray returns an empty array container.
func NewDisclosableArray[A any]() *DisclosableArray[A] {
	return &DisclosableArray[A]{}
}

// Append adds an element to the end of the array.
func (a *DisclosableArray[A]) Append(el DisclosableElement[A]) *DisclosableArray[A] {
	a.Elements = append(a.Elements, el)
	return a
}

// WithMinDigests sets this array's own `_sd`-sentinel floor.
func (a *DisclosableArray[A]) WithMinDigests(n int) *DisclosableArray[A] {
	a.MinDigests = &n
	return a
}

// MapObject propagates fA through every leaf of o, preserving disclosability
// tags and container shape (the functor from spec.md §4.1).
func MapObject[A, B any](o *DisclosableObject[A], fA func(A) B) *DisclosableObject[B] {
	out := &DisclosableObject[B]{
		Children:   map[string]DisclosableElement[B]{},
		Keys:       append([]string{}, o.Keys...),
		MinDigests: o.MinDigests,
	}
	for _, k := range o.Keys {
		out.Children[k] = mapElement(o.Children[k], fA)
	}
	return out
}

// MapArray is MapObject's array-shaped counterpart.
func MapArray[A, B any](a *DisclosableArray[A], fA func(A) B) *DisclosableArray[B] {
	out := &DisclosableArray[B]{MinDigests: a.MinDigests}
	for _, e := range a.Elements {
		out.Elements = append(out.Elements, mapElement(e, fA))
	}
	return out
}

func mapElement[A, B any](e DisclosableElement[A], fA func(A) B) DisclosableElement[B] {
	return DisclosableElement[B]{Tag: e.Tag, Value: mapValue(e.Value, fA)}
}

func mapValue[A, B any](v DisclosableValue[A], fA func(A) B) DisclosableValue[B] {
	switch v.shape {
	case ShapeID:
		return Id(fA(v.leaf))
	case ShapeObject:
		return Obj(MapObject(v.obj, fA))
	case ShapeArray:
		return Arr(MapArray(v.arr, fA))
	default:
		panic("sdjwt: unknown disclosable shape")
	}
}

// Spec is the issuer-facing surface: a DisclosableObject whose leaves are
// concrete JSON values for one specific credential instance (spec.md §4.1
// "Spec surface").
type Spec = DisclosableObject[any]

// NewSpec returns an empty Spec container.
func NewSpec() *Spec { return NewDisclosableObject[any]() }
