package entity

import (
	"errors"
	"fmt"
)

// ErrClassMismatch is returned when the model output and the palette disagree
// on the number of classes.
var ErrClassMismatch = errors.New("class count does not match palette")

// ShapeError reports an image or tensor with an unexpected shape.
type ShapeError struct {
	Op   string
	Got  []int
	Want string
}

func (e *ShapeError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("%s: bad shape, want %s", e.Op, e.Want)
	}
	return fmt.Sprintf("%s: bad shape %v, want %s", e.Op, e.Got, e.Want)
}
