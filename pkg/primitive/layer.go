package primitive

// LayerRole identifies what a layer is used for on the board.
type LayerRole int

const (
	RoleFrontCopper LayerRole = iota // F.Cu
	RoleBackCopper                   // B.Cu
	RoleEdgeCuts                     // board outline
	RoleDrill                        // drill hits
)

func (r LayerRole) String() string {
	switch r {
	case RoleFrontCopper:
		return "f-cu"
	case RoleBackCopper:
		return "b-cu"
	case RoleEdgeCuts:
		return "edge-cuts"
	case RoleDrill:
		return "drill"
	default:
		return "unknown"
	}
}

// ParseRole maps a layer name to its role. Both the short DSL names and
// the KiCad layer names are accepted.
func ParseRole(name string) (LayerRole, bool) {
	switch name {
	case "f-cu", "F.Cu", "fcu":
		return RoleFrontCopper, true
	case "b-cu", "B.Cu", "bcu":
		return RoleBackCopper, true
	case "edge-cuts", "Edge.Cuts", "edge_cuts":
		return RoleEdgeCuts, true
	case "drill", "drl", "PTH", "NPTH":
		return RoleDrill, true
	}
	return 0, false
}

// Layer is an ordered sequence of primitives belonging to one board layer.
// Primitive order carries no meaning for routing.
type Layer struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

// NewLayer creates a layer with the given name and primitives.
func NewLayer(name string, prims ...Primitive) *Layer {
	return &Layer{Name: name, Primitives: prims}
}

// Add appends primitives to the layer.
func (l *Layer) Add(prims ...Primitive) {
	l.Primitives = append(l.Primitives, prims...)
}

// Len returns the number of primitives.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Primitives)
}

// IsEmpty returns true if the layer has no primitives.
func (l *Layer) IsEmpty() bool {
	return l.Len() == 0
}
