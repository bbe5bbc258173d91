package skytexture

import "errors"

var (
	// ErrUndefinedOrdering is returned when a lookup table is requested for a
	// map without ring or nested ordering.
	ErrUndefinedOrdering = errors.New("skytexture: undefined pixel ordering")
	// ErrUnknownColorTable is returned by ByName.
	ErrUnknownColorTable = errors.New("skytexture: unknown color table")
	// ErrInvalidRange is returned when the display range is empty.
	ErrInvalidRange = errors.New("skytexture: display maximum must exceed minimum")
	// ErrFillInProgress is returned by Highlight while a fill is running.
	ErrFillInProgress = errors.New("skytexture: fill in progress")
	// ErrNoTexture is returned when the texture has never been filled.
	ErrNoTexture = errors.New("skytexture: texture not built")
)
