package native

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Frames on the connector channel follow native-messaging framing: a 4-byte
// little-endian length followed by that many bytes of UTF-8 JSON.
const maxFrameSize = 64 << 20

// Request is one framed command sent to the connector.
type Request struct {
	Cmd    string `json:"cmd"`
	Params any    `json:"params,omitempty"`
}

// Envelope is the tagged union the connector answers with. Data stays raw
// until the caller's expected tag has been checked.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func writeFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > maxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", len(body))
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func readFrame(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size > maxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}
