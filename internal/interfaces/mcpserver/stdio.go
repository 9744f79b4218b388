package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
)

// defaultMaxLineBytes bounds one inbound message. Large enough for embedded
// images travelling as base64 tool arguments.
const defaultMaxLineBytes = 16 * 1024 * 1024

// errLineTooLong marks a message over the size limit. The offending line is
// discarded and serving continues.
var errLineTooLong = errors.New("message exceeds size limit")

// StdioServer reads newline-delimited JSON-RPC messages from an input stream
// and writes responses to an output stream. Each message is handled in its
// own goroutine; writes are serialized.
type StdioServer struct {
	dispatcher *Dispatcher
	logger     *logging.Logger
	maxLine    int

	writeMu sync.Mutex
}

// NewStdioServer creates a stdio server around a dispatcher.
func NewStdioServer(dispatcher *Dispatcher, logger *logging.Logger) *StdioServer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StdioServer{dispatcher: dispatcher, logger: logger, maxLine: defaultMaxLineBytes}
}

// Serve reads messages until the input stream closes or the context is
// cancelled. A closed stream is a clean shutdown, not an error. An oversized
// message is answered with a parse error and skipped, never fatal.
func (s *StdioServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReaderSize(in, 64*1024)

	var handlers sync.WaitGroup
	defer handlers.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.readLine(reader)
		if errors.Is(err, errLineTooLong) {
			s.logger.Warn("discarding oversized message")
			s.write(out, newErrorResponse(nil, ParseErrorCode, "message too large"))
			continue
		}
		if len(line) > 0 {
			copied := make([]byte, len(line))
			copy(copied, line)
			handlers.Add(1)
			go func(line []byte) {
				defer handlers.Done()
				s.handleLine(ctx, line, out)
			}(copied)
		}
		if err != nil {
			if err == io.EOF {
				s.logger.Info("input stream closed")
				return nil
			}
			s.logger.WithError(err).Error("input stream failed")
			return err
		}
	}
}

// readLine returns the next newline-delimited message, trimmed. A line over
// maxLine is consumed to its end and reported as errLineTooLong.
func (s *StdioServer) readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if err == bufio.ErrBufferFull {
			if len(line) > s.maxLine {
				if discardErr := discardLine(r); discardErr != nil {
					return nil, discardErr
				}
				return nil, errLineTooLong
			}
			continue
		}
		return bytes.TrimSpace(line), err
	}
}

func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

func (s *StdioServer) handleLine(ctx context.Context, line []byte, out io.Writer) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.WithError(err).Warn("discarding unparseable message")
		s.write(out, newErrorResponse(nil, ParseErrorCode, "parse error"))
		return
	}

	resp := s.dispatcher.Handle(ctx, &req)
	if resp == nil {
		return
	}
	s.write(out, resp)
}

func (s *StdioServer) write(out io.Writer, resp *Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithError(err).Error("response marshal failed")
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := out.Write(append(payload, '\n')); err != nil {
		s.logger.WithError(err).Error("response write failed")
	}
}
