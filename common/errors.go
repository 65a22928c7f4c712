package common

import (
	"errors"
	"fmt"
)

// Errors reported by disassembly and reassembly. Callers are expected to
// check them with errors.Is, actual errors carry offending path.
var (
	// ErrNoNestedContent is returned for documents which root has only leaf
	// children, such documents cannot be disassembled.
	ErrNoNestedContent = errors.New("no nested elements found")
	// ErrResolution is returned when unique identifier of nested element
	// cannot be determined or cannot be used as a file name.
	ErrResolution = errors.New("unable to resolve unique identifier")
	// ErrNotADirectory is returned when directory was expected.
	ErrNotADirectory = errors.New("not a directory")
	// ErrNoRootElement is returned when no fragment under reassembly root
	// has parseable root element.
	ErrNoRootElement = errors.New("no root element found")
)

// DuplicateIdentifierWarning is reported when two nested elements with the
// same tag resolve to the same identifier. Second element is written under
// Renamed so no data is lost.
type DuplicateIdentifierWarning struct {
	Tag     string
	ID      string
	Renamed string
}

func (w *DuplicateIdentifierWarning) Error() string {
	return fmt.Sprintf("duplicate identifier %q for <%s>, stored as %q", w.ID, w.Tag, w.Renamed)
}
