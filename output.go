package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// lineSink receives rendered lines and delivers them somewhere on Close.
// Abort releases the sink after a failed render without delivering anything
// that has not already gone out.
type lineSink interface {
	WriteLine(line string) error
	Close() error
	Abort() error
}

// finishSink closes sink after a successful render, or aborts it and returns
// renderErr when the render failed.
func finishSink(sink lineSink, renderErr error) error {
	if renderErr != nil {
		_ = sink.Abort()
		return renderErr
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

// streamSink writes lines straight through to a writer.
type streamSink struct {
	w      *bufio.Writer
	closer io.Closer // nil when the underlying writer is not ours to close
}

func newStreamSink(w io.Writer) *streamSink {
	return &streamSink{w: bufio.NewWriter(w)}
}

func (s *streamSink) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *streamSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Abort flushes what was streamed so far. A stream has no way to take back
// lines already written.
func (s *streamSink) Abort() error {
	return s.Close()
}

// newFileSink creates (or truncates) path and streams lines into it.
func newFileSink(path string) (*streamSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file %s: %w", path, err)
	}
	s := newStreamSink(f)
	s.closer = f
	return s, nil
}

// clipboardSink collects the whole tree and copies it on Close. If the
// clipboard is unavailable the text goes to fallback instead.
type clipboardSink struct {
	b        strings.Builder
	fallback io.Writer
	logger   *zap.Logger
	write    func(string) error
}

func newClipboardSink(fallback io.Writer, logger *zap.Logger) *clipboardSink {
	return &clipboardSink{fallback: fallback, logger: logger, write: clipboard.WriteAll}
}

func (s *clipboardSink) WriteLine(line string) error {
	s.b.WriteString(line)
	s.b.WriteByte('\n')
	return nil
}

// Abort drops the collected text so a partial tree never reaches the clipboard.
func (s *clipboardSink) Abort() error {
	s.logger.Debug("render failed, clipboard left untouched", zap.Int("bytes", s.b.Len()))
	s.b.Reset()
	return nil
}

func (s *clipboardSink) Close() error {
	text := s.b.String()
	if err := s.write(text); err != nil {
		s.logger.Warn("clipboard unavailable, printing instead", zap.Error(err))
		_, werr := io.WriteString(s.fallback, text)
		return werr
	}
	s.logger.Info("output copied to clipboard", zap.Int("bytes", len(text)))
	return nil
}
