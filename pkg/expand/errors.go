package expand

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfBounds reports a splice position that does not address the
// directive node inside its parent's content.
var ErrIndexOutOfBounds = errors.New("expand: index out of bounds")

// IndexError carries the failing splice position. The directive node it
// names is left unexpanded.
type IndexError struct {
	NodeType string
	Index    int
	Len      int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("expand: index %d out of bounds (len %d) for %q node", e.Index, e.Len, e.NodeType)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfBounds
}
