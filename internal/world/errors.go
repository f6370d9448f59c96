package world

import "fmt"

// GenerationError reports that chunk generation failed. Nothing is cached for
// the affected coordinate; a later request retries from scratch.
type GenerationError struct {
	Coord ChunkCoord
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chunk %v: %v", e.Coord, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DeserializationError reports malformed or incomplete chunk payloads. The
// cache never substitutes regenerated data for a payload that fails to decode.
type DeserializationError struct {
	Field string
	Err   error
}

func (e *DeserializationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode chunk: %v", e.Err)
	}
	return fmt.Sprintf("decode chunk: field %q: %v", e.Field, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func decodeErr(field, format string, args ...any) *DeserializationError {
	return &DeserializationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// CoordinateRangeError reports a chunk request outside the practical
// addressable tile range.
type CoordinateRangeError struct {
	Coord ChunkCoord
}

func (e *CoordinateRangeError) Error() string {
	return fmt.Sprintf("chunk coordinate %v outside addressable range", e.Coord)
}
