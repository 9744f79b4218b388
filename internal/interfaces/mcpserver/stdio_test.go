package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/dataverse-mcp-server/internal/testutil"
)

// syncBuffer serializes concurrent writes from handler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStdioServer_ServesNewlineDelimitedRequests(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})
	server := NewStdioServer(d, nil)

	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
			`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n")
	out := &syncBuffer{}

	require.NoError(t, server.Serve(context.Background(), in, out))

	var responses []Response
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}

	// The notification produced no output.
	require.Len(t, responses, 2)
	ids := map[float64]bool{}
	for _, resp := range responses {
		assert.Equal(t, "2.0", resp.JSONRPC)
		assert.Nil(t, resp.Error)
		ids[resp.ID.(float64)] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[2])
}

func TestStdioServer_ParseErrorResponse(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})
	server := NewStdioServer(d, nil)

	in := strings.NewReader("{not json}\n")
	out := &syncBuffer{}
	require.NoError(t, server.Serve(context.Background(), in, out))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out.String()), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ParseErrorCode, resp.Error.Code)
}

func TestStdioServer_OversizedMessageIsSkippedNotFatal(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})
	server := NewStdioServer(d, nil)
	server.maxLine = 1024

	huge := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"pad":"` +
		strings.Repeat("x", 128*1024) + `"}}`
	in := strings.NewReader(huge + "\n" + `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n")
	out := &syncBuffer{}

	require.NoError(t, server.Serve(context.Background(), in, out))

	var responses []Response
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 2)

	byKind := map[bool]Response{}
	for _, resp := range responses {
		byKind[resp.Error != nil] = resp
	}
	require.NotNil(t, byKind[true].Error)
	assert.Equal(t, ParseErrorCode, byKind[true].Error.Code)
	assert.Contains(t, byKind[true].Error.Message, "too large")

	// The ping after the oversized line was still served.
	assert.Equal(t, float64(2), byKind[false].ID)
}

func TestStdioServer_BlankLinesIgnored(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})
	server := NewStdioServer(d, nil)

	in := strings.NewReader("\n\n" + `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n")
	out := &syncBuffer{}
	require.NoError(t, server.Serve(context.Background(), in, out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 1)
}
