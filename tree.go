package deepdist

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// nodeType defines all of the atoms in our universe, or the kinds of data we
// will encounter while comparing values
type nodeType uint8

const (
	ntUnknown nodeType = iota
	ntObject
	ntArray
	ntStruct
	ntString
	ntFloat
	ntInt
	ntBool
	ntNull
)

// node represents a value in a tree built for comparison
type node interface {
	Type() nodeType
	// a byte hash of this node's content & any child nodes
	Hash() []byte
	// the rough element count of the subtree rooted at this node
	Size() int
	// this node's parent, if one exists
	Parent() node
	// the name this node's parent has given it. for arrays this'll be the
	// string value of this node's index, for objects the key, for structs the
	// field name
	Name() string
	// the actual data this node is created from
	Value() interface{}
}

// compound represents a data type that can contain children:
// objects, arrays & structs
type compound interface {
	node
	// list children in deterministic order
	Children() []node
	// get a child by name
	Child(name string) node
}

type object struct {
	name   string
	hash   []byte
	parent node
	size   int
	value  interface{}

	names    []string
	children map[string]node
}

func (o object) Type() nodeType     { return ntObject }
func (o object) Name() string       { return o.name }
func (o object) Hash() []byte       { return o.hash }
func (o object) Size() int          { return o.size }
func (o object) Parent() node       { return o.parent }
func (o object) Value() interface{} { return o.value }
func (o object) Children() []node {
	nodes := make([]node, len(o.names))
	for i, name := range o.names {
		nodes[i] = o.children[name]
	}
	return nodes
}
func (o object) Child(name string) node { return o.children[name] }

type array struct {
	name   string
	hash   []byte
	parent node
	size   int
	value  interface{}

	children []node
}

func (c array) Type() nodeType     { return ntArray }
func (c array) Name() string       { return c.name }
func (c array) Hash() []byte       { return c.hash }
func (c array) Size() int          { return c.size }
func (c array) Parent() node       { return c.parent }
func (c array) Value() interface{} { return c.value }
func (c array) Children() []node   { return c.children }
func (c array) Child(name string) node {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= len(c.children) {
		return nil
	}
	return c.children[i]
}

// structure is a field-bearing value: a struct or pointer-to-struct, with
// exported fields as children in declaration order
type structure struct {
	name   string
	hash   []byte
	parent node
	size   int
	value  interface{}

	names    []string
	children map[string]node
}

func (s structure) Type() nodeType     { return ntStruct }
func (s structure) Name() string       { return s.name }
func (s structure) Hash() []byte       { return s.hash }
func (s structure) Size() int          { return s.size }
func (s structure) Parent() node       { return s.parent }
func (s structure) Value() interface{} { return s.value }
func (s structure) Children() []node {
	nodes := make([]node, len(s.names))
	for i, name := range s.names {
		nodes[i] = s.children[name]
	}
	return nodes
}
func (s structure) Child(name string) node { return s.children[name] }

type scalar struct {
	t      nodeType
	name   string
	hash   []byte
	parent node
	value  interface{}
}

func (s scalar) Type() nodeType     { return s.t }
func (s scalar) Name() string       { return s.name }
func (s scalar) Hash() []byte       { return s.hash }
func (s scalar) Size() int          { return 1 }
func (s scalar) Parent() node       { return s.parent }
func (s scalar) Value() interface{} { return s.value }

// tree builds a node for v & all of its descendants, computing content hashes
// and element counts bottom-up. every created node is sent to nodes when the
// channel is non-nil. unsupported kinds (funcs, channels) panic: they have no
// comparable representation and signal caller misuse
func tree(v interface{}, name string, parent node, nodes chan<- node) (n node) {
	switch x := v.(type) {
	case nil:
		n = &scalar{t: ntNull, name: name, hash: sumScalar('z', "null"), parent: parent, value: v}
	case bool:
		bstr := "false"
		if x {
			bstr = "true"
		}
		n = &scalar{t: ntBool, name: name, hash: sumScalar('b', bstr), parent: parent, value: v}
	case string:
		n = &scalar{t: ntString, name: name, hash: sumScalar('s', x), parent: parent, value: v}
	case float64:
		fstr := strconv.FormatFloat(x, 'f', -1, 64)
		n = &scalar{t: ntFloat, name: name, hash: sumScalar('f', fstr), parent: parent, value: v}
	case []interface{}:
		n = arrayNode(v, name, parent, nodes, func(fn func(interface{})) {
			for _, el := range x {
				fn(el)
			}
		}, len(x))
	case map[string]interface{}:
		names := make([]string, 0, len(x))
		for name := range x {
			names = append(names, name)
		}
		// gotta sort keys for consistent hashing :(
		sort.Strings(names)
		n = objectNode(v, name, parent, nodes, names, func(key string) interface{} { return x[key] })
	default:
		n = reflectTree(v, name, parent, nodes)
	}

	if nodes != nil {
		nodes <- n
	}
	return
}

// reflectTree covers values outside the fast JSON set: other numeric types,
// typed maps & slices, structs & pointers
func reflectTree(v interface{}, name string, parent node, nodes chan<- node) node {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &scalar{t: ntInt, name: name, hash: sumScalar('i', strconv.FormatInt(rv.Int(), 10)), parent: parent, value: v}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &scalar{t: ntInt, name: name, hash: sumScalar('i', strconv.FormatUint(rv.Uint(), 10)), parent: parent, value: v}
	case reflect.Float32:
		fstr := strconv.FormatFloat(rv.Float(), 'f', -1, 32)
		return &scalar{t: ntFloat, name: name, hash: sumScalar('f', fstr), parent: parent, value: v}
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return &scalar{t: ntNull, name: name, hash: sumScalar('z', "null"), parent: parent, value: nil}
		}
		if rv.Elem().Kind() == reflect.Struct {
			return structNode(v, rv.Elem(), name, parent, nodes)
		}
		return tree(rv.Elem().Interface(), name, parent, nodes)
	case reflect.Struct:
		return structNode(v, rv, name, parent, nodes)
	case reflect.Slice, reflect.Array:
		return arrayNode(v, name, parent, nodes, func(fn func(interface{})) {
			for i := 0; i < rv.Len(); i++ {
				fn(rv.Index(i).Interface())
			}
		}, rv.Len())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			panic(fmt.Sprintf("unexpected map key type: %s", rv.Type().Key()))
		}
		names := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}
		sort.Strings(names)
		return objectNode(v, name, parent, nodes, names, func(key string) interface{} {
			return rv.MapIndex(reflect.ValueOf(key)).Interface()
		})
	default:
		panic(fmt.Sprintf("unexpected type: %T", v))
	}
}

func arrayNode(v interface{}, name string, parent node, nodes chan<- node, each func(func(interface{})), length int) *array {
	hasher := NewHash()
	arr := &array{
		name:     name,
		parent:   parent,
		children: make([]node, 0, length),
		value:    v,
	}

	i := 0
	each(func(el interface{}) {
		child := tree(el, strconv.Itoa(i), arr, nodes)
		hasher.Write(child.Hash())
		arr.children = append(arr.children, child)
		i++
	})
	arr.hash = hasher.Sum(nil)

	arr.size = 1
	for _, ch := range arr.children {
		arr.size += ch.Size()
	}
	return arr
}

func objectNode(v interface{}, name string, parent node, nodes chan<- node, names []string, get func(string) interface{}) *object {
	hasher := NewHash()
	obj := &object{
		name:     name,
		parent:   parent,
		names:    names,
		children: map[string]node{},
		value:    v,
	}

	for _, key := range names {
		child := tree(get(key), key, obj, nodes)
		hasher.Write([]byte(key))
		hasher.Write(child.Hash())
		obj.children[key] = child
	}
	obj.hash = hasher.Sum(nil)

	// each key contributes one element alongside its value's count
	obj.size = 1
	for _, ch := range obj.children {
		obj.size += 1 + ch.Size()
	}
	return obj
}

func structNode(v interface{}, rv reflect.Value, name string, parent node, nodes chan<- node) *structure {
	hasher := NewHash()
	st := &structure{
		name:     name,
		parent:   parent,
		children: map[string]node{},
		value:    v,
	}

	t := rv.Type()
	hasher.Write([]byte(t.String()))
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		child := tree(rv.Field(i).Interface(), field.Name, st, nodes)
		hasher.Write([]byte(field.Name))
		hasher.Write(child.Hash())
		st.names = append(st.names, field.Name)
		st.children[field.Name] = child
	}
	st.hash = hasher.Sum(nil)

	st.size = 1
	for _, ch := range st.children {
		st.size += 1 + ch.Size()
	}
	return st
}

// sumScalar hashes a scalar's string form, prefixed with a kind tag so equal
// renderings of different kinds don't collide
func sumScalar(kind byte, s string) []byte {
	hasher := NewHash()
	hasher.Write([]byte{kind})
	hasher.Write([]byte(s))
	return hasher.Sum(nil)
}

// join extends a path with one more name component
func join(p, name string) string {
	if p == "/" {
		return "/" + name
	}
	return p + "/" + name
}

// walk a tree in top-down (prefix) order
func walk(tree node, path string, fn func(path string, n node) bool) {
	if tree.Name() != "" {
		path = join(path, tree.Name())
	}
	kontinue := fn(path, tree)
	if cmp, ok := tree.(compound); kontinue && ok {
		for _, n := range cmp.Children() {
			walk(n, path, fn)
		}
	}
}
