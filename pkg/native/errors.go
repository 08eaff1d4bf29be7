package native

import "fmt"

// PeerError is an explicit failure reported by the connector. The message is
// connector-supplied text and is shown to the user verbatim.
type PeerError struct {
	Message string
}

func (e PeerError) Error() string {
	return e.Message
}

// MismatchError means the connector answered with a tag the caller did not
// expect. This signals a defect on one side of the channel, so the raw tag
// is kept for diagnostics.
type MismatchError struct {
	Expected string
	Received string
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("unexpected connector response %q (expected %q)", e.Received, e.Expected)
}
