package transport

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Stdio is a line-framed transport over a reader/writer pair, used for
// driving the daemon from a terminal or a test harness without serial
// hardware.
type Stdio struct {
	w  io.Writer
	in chan []byte

	mu        sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewStdio builds a transport over the given reader and writer.
func NewStdio(r io.Reader, w io.Writer) *Stdio {
	s := &Stdio{
		w:    w,
		in:   make(chan []byte, inboundBuffer),
		done: make(chan struct{}),
	}
	go s.readPump(r)
	return s
}

// OpenStdio builds a transport over the process's stdin and stdout.
func OpenStdio() *Stdio {
	return NewStdio(os.Stdin, os.Stdout)
}

// Lines returns the inbound frame channel.
func (s *Stdio) Lines() <-chan []byte {
	return s.in
}

// WriteLine writes one framed message. Writes to a pipe or terminal do
// not meaningfully block, so no outbound queue is needed here.
func (s *Stdio) WriteLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	_, err := s.w.Write([]byte{'\n'})
	return err
}

// Close stops the reader.
func (s *Stdio) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *Stdio) readPump(r io.Reader) {
	defer close(s.in)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)

		select {
		case s.in <- frame:
		case <-s.done:
			return
		}
	}
}
