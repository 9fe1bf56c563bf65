package format

import "fmt"

// Reason classifies a deserialization failure where the format exposes it.
type Reason int

const (
	// ReasonUnknown is used by formats that give no usable classification.
	ReasonUnknown Reason = iota
	ReasonIO
	ReasonSyntax
	ReasonData
	ReasonEOF
)

func (r Reason) String() string {
	switch r {
	case ReasonIO:
		return "failure to read or write bytes on an IO stream"
	case ReasonSyntax:
		return "input that is not syntactically valid"
	case ReasonData:
		return "input data that is semantically incorrect"
	case ReasonEOF:
		return "unexpected end of the input data"
	default:
		return "deserialize failed"
	}
}

// DecodeError reports a failed Deserialize.
type DecodeError struct {
	Tag    Tag
	Reason Reason
	Err    error
}

// Error only carries detail for classified reasons.
func (e *DecodeError) Error() string {
	if e.Reason == ReasonUnknown {
		return fmt.Sprintf("%s: deserialize failed", e.Tag)
	}
	return fmt.Sprintf("%s: %s: %v", e.Tag, e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a failed Serialize.
type EncodeError struct {
	Tag Tag
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to serialize value as %s: %v", e.Tag, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
