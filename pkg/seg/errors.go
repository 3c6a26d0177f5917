package seg

import "fmt"

// InvalidMeshError reports a mesh that cannot be segmented: no
// vertices, a degenerate vertical extent (geometric method), or missing
// normals (cluster method). The call returns no partial result.
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return "invalid mesh: " + e.Reason
}

// InvalidParameterError reports a parameter outside its valid range.
// It is returned before any computation starts.
type InvalidParameterError struct {
	Name   string
	Value  int
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%d: %s", e.Name, e.Value, e.Reason)
}
