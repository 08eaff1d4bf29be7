package native

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamTransportRoundTrip(t *testing.T) {
	toPeer, fromCLI := io.Pipe()
	fromPeer, toCLI := io.Pipe()

	// A minimal connector: read one framed request, answer with the
	// matching tag.
	go func() {
		var req Request
		if err := readFrame(toPeer, &req); err != nil {
			return
		}
		_ = writeFrame(toCLI, Envelope{Type: TagSystemInfo, Data: []byte(`{"version":"1.2.0","platform":"linux"}`)})
	}()

	transport := NewStreamTransport(fromPeer, fromCLI)
	env, err := transport.RoundTrip(Request{Cmd: CmdGetSystemInfo})
	require.NoError(t, err)
	assert.Equal(t, TagSystemInfo, env.Type)
	assert.JSONEq(t, `{"version":"1.2.0","platform":"linux"}`, string(env.Data))
}

func TestConnectorPathDefault(t *testing.T) {
	t.Setenv("APPSHELL_CONNECTOR", "")
	assert.Equal(t, DefaultConnector, ConnectorPath())

	t.Setenv("APPSHELL_CONNECTOR", "/opt/appshell/connector")
	assert.Equal(t, "/opt/appshell/connector", ConnectorPath())
}
