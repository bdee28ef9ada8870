package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Kind tells what a Node draws.
type Kind int

const (
	Group Kind = iota
	Mesh       // unit sphere scaled by Scale
	Line       // polyline through Points
)

func (k Kind) String() string {
	switch k {
	case Mesh:
		return "mesh"
	case Line:
		return "line"
	default:
		return "group"
	}
}

// Material is the flat surface description of a mesh or line.
type Material struct {
	Color colorful.Color
	// Emissive adds unlit color in 0..1; the sun uses 1.
	Emissive float64
}

// Node is an element of the scene graph. Rotation is Euler XYZ in radians and is
// applied as Rx·Ry·Rz, so a group tilted on X and turned on Y revolves in its tilted plane.
type Node struct {
	Name     string
	Kind     Kind
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
	Material Material
	Points   []mgl64.Vec3 // Line only, in local space
	Visible  bool

	parent   *Node
	children []*Node
}

// NewNode returns a visible node with unit scale.
func NewNode(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind, Scale: mgl64.Vec3{1, 1, 1}, Visible: true}
}

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) *Node {
	if child.parent != nil {
		child.parent.remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

func (n *Node) remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children.
func (n *Node) Children() []*Node { return n.children }

// SetScalar scales uniformly.
func (n *Node) SetScalar(s float64) *Node {
	n.Scale = mgl64.Vec3{s, s, s}
	return n
}

// Local is T·R·S.
func (n *Node) Local() mgl64.Mat4 {
	r := mgl64.HomogRotate3DX(n.Rotation.X()).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation.Z()))
	return mgl64.Translate3D(n.Position.Elem()).
		Mul4(r).
		Mul4(mgl64.Scale3D(n.Scale.Elem()))
}

// World composes Local up to the root.
func (n *Node) World() mgl64.Mat4 {
	m := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Local().Mul4(m)
	}
	return m
}

// Walk visits n and its descendants depth first with their world matrices.
// Invisible subtrees are skipped.
func (n *Node) Walk(fn func(*Node, mgl64.Mat4)) {
	var parentWorld mgl64.Mat4
	if n.parent != nil {
		parentWorld = n.parent.World()
	} else {
		parentWorld = mgl64.Ident4()
	}
	n.walk(parentWorld, fn)
}

func (n *Node) walk(parentWorld mgl64.Mat4, fn func(*Node, mgl64.Mat4)) {
	if !n.Visible {
		return
	}
	w := parentWorld.Mul4(n.Local())
	fn(n, w)
	for _, c := range n.children {
		c.walk(w, fn)
	}
}

// Find returns the first descendant (or n itself) with the given name.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}
