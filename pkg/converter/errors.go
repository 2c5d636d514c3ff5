package converter

import "fmt"

// ConversionError reports a structural invariant violated during MIDI
// export: multiple tempos or time signatures, anchors away from time 0,
// or non-contiguous instrument numbering. No partial output accompanies
// it.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return "conversion error: " + e.Reason
}

// MalformedInputError reports a parsed MIDI structure missing required
// header fields. The conversion layer cannot repair such input, only
// surface it.
type MalformedInputError struct {
	Missing string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: missing or invalid %s", e.Missing)
}
