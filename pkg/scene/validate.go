package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidScene is wrapped by the error Check returns.
var ErrInvalidScene = errors.New("invalid scene")

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID  NodeID // which node has the problem (empty if scene-level)
	Message string
}

func (e ValidationError) Error() string {
	if e.NodeID == "" {
		return e.Message
	}
	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}

// Validate runs the structural checks on s and returns every finding. An
// empty slice means the scene can be tessellated. It never mutates s.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNodes(s)...)
	errs = append(errs, validateRoles(s)...)
	return errs
}

// Check is Validate folded into a single error wrapping ErrInvalidScene.
func Check(s *Scene) error {
	errs := Validate(s)
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(all...))
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:  id,
				Message: "cycle detected",
			})
			return true
		}
		color[id] = gray
		node, ok := s.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range s.Nodes {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child and role points at an
// existing node.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, node := range s.Nodes {
		for _, childID := range node.Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:  node.ID,
					Message: fmt.Sprintf("child reference %s does not exist", childID),
				})
			}
		}
	}
	for name, r := range map[string]*Role{"source": s.Source, "destination": s.Destination} {
		if r != nil {
			if _, ok := s.Nodes[r.Node]; !ok {
				errs = append(errs, ValidationError{
					Message: fmt.Sprintf("%s refers to missing node %s", name, r.Node),
				})
			}
		}
	}
	return errs
}

// validateNodes checks arity and dimensions per node kind.
func validateNodes(s *Scene) []ValidationError {
	var errs []ValidationError
	bad := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...)})
	}
	for id, n := range s.Nodes {
		switch d := n.Data.(type) {
		case PrimitiveData:
			if len(n.Children) != 0 {
				bad(id, "%s must not have children", d.Shape)
			}
			switch d.Shape {
			case ShapeBox:
				if d.Size[0] <= 0 || d.Size[1] <= 0 || d.Size[2] <= 0 {
					bad(id, "box size must be positive, got %v", d.Size)
				}
			case ShapeSphere:
				if d.Radius <= 0 {
					bad(id, "sphere radius must be positive, got %g", d.Radius)
				}
			case ShapeCylinder:
				if d.Radius <= 0 || d.Height <= 0 {
					bad(id, "cylinder radius and height must be positive, got r=%g h=%g", d.Radius, d.Height)
				}
			default:
				bad(id, "unknown shape %d", d.Shape)
			}
		case BooleanData:
			if len(n.Children) < 2 {
				bad(id, "%s needs at least two solids, got %d", d.Op, len(n.Children))
			}
		case TransformData:
			if len(n.Children) != 1 {
				bad(id, "transform needs exactly one solid, got %d", len(n.Children))
			}
		default:
			bad(id, "unexpected data type %T for %s node", n.Data, n.Kind)
		}
	}
	return errs
}

// validateRoles checks that both sides of the projection are declared.
func validateRoles(s *Scene) []ValidationError {
	var errs []ValidationError
	if s.Source == nil {
		errs = append(errs, ValidationError{Message: "no source declared"})
	}
	if s.Destination == nil {
		errs = append(errs, ValidationError{Message: "no destination declared"})
	}
	for name, r := range map[string]*Role{"source": s.Source, "destination": s.Destination} {
		if r == nil {
			continue
		}
		if r.Cells < 0 {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("%s cells must not be negative", name)})
		}
		if r.SmoothAngle < 0 || r.SmoothAngle > 180 {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("%s smooth angle %g outside [0, 180]", name, r.SmoothAngle)})
		}
	}
	return errs
}
