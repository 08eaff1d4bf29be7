package native

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	// DefaultConnector is the binary looked up on PATH when
	// APPSHELL_CONNECTOR is not set.
	DefaultConnector = "appshell-connector"

	connectorEnv = "APPSHELL_CONNECTOR"
)

// Transport carries one framed request/response exchange. Implementations
// are not required to be safe for concurrent use; Client serializes calls.
type Transport interface {
	RoundTrip(req Request) (Envelope, error)
	Close() error
}

// streamTransport frames requests onto a writer and reads responses back
// from a reader. It backs both the connector process transport and tests.
type streamTransport struct {
	r io.Reader
	w io.Writer
	c io.Closer
}

// NewStreamTransport wraps an existing duplex channel to the connector.
func NewStreamTransport(r io.Reader, w io.Writer) Transport {
	return &streamTransport{r: r, w: w}
}

func (t *streamTransport) RoundTrip(req Request) (Envelope, error) {
	if err := writeFrame(t.w, req); err != nil {
		return Envelope{}, fmt.Errorf("send %s: %w", req.Cmd, err)
	}
	var env Envelope
	if err := readFrame(t.r, &env); err != nil {
		return Envelope{}, fmt.Errorf("receive %s response: %w", req.Cmd, err)
	}
	return env, nil
}

func (t *streamTransport) Close() error {
	if t.c != nil {
		return t.c.Close()
	}
	return nil
}

// processTransport owns a spawned connector process and exchanges frames
// over its stdio.
type processTransport struct {
	streamTransport
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// ConnectorPath returns the connector binary to spawn, honoring the
// APPSHELL_CONNECTOR override.
func ConnectorPath() string {
	if p := os.Getenv(connectorEnv); p != "" {
		return p
	}
	return DefaultConnector
}

// Spawn starts the connector process and returns a transport over its
// stdio. The connector's stderr passes through to ours so its own
// diagnostics stay visible.
func Spawn(path string) (Transport, error) {
	cmd := exec.Command(path)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start connector %s: %w", path, err)
	}

	return &processTransport{
		streamTransport: streamTransport{r: stdout, w: stdin},
		cmd:             cmd,
		stdin:           stdin,
	}, nil
}

func (t *processTransport) Close() error {
	// Closing stdin tells the connector to exit; wait so it is reaped.
	if err := t.stdin.Close(); err != nil {
		_ = t.cmd.Process.Kill()
		return err
	}
	return t.cmd.Wait()
}
