package transport

import (
	"bufio"
	"fmt"
	"sync"

	"go.bug.st/serial"

	"github.com/patkersoxton-bit/armen/internal/log"
)

const (
	// inboundBuffer bounds queued commands; the control loop drains it
	// every tick, so it only fills if the loop has stalled.
	inboundBuffer = 64

	// outboundBuffer bounds queued acks and telemetry.
	outboundBuffer = 64

	// maxLineBytes caps a single frame; longer lines are discarded.
	maxLineBytes = 4096
)

// Serial is a newline-framed transport over a serial port.
type Serial struct {
	port serial.Port
	in   chan []byte
	out  chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// OpenSerial opens the port and starts the read and write pumps.
func OpenSerial(portName string, baud int) (*Serial, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}

	s := &Serial{
		port: port,
		in:   make(chan []byte, inboundBuffer),
		out:  make(chan []byte, outboundBuffer),
		done: make(chan struct{}),
	}
	go s.readPump()
	go s.writePump()
	log.Info("serial transport open", "port", portName, "baud", baud)
	return s, nil
}

// Lines returns the inbound frame channel.
func (s *Serial) Lines() <-chan []byte {
	return s.in
}

// WriteLine queues one frame for transmission. When the outbound queue
// is full the frame is dropped and ErrBufferFull returned; the control
// loop never blocks on the link.
func (s *Serial) WriteLine(line []byte) error {
	framed := make([]byte, 0, len(line)+1)
	framed = append(framed, line...)
	framed = append(framed, '\n')

	select {
	case s.out <- framed:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close shuts the link down and closes the port.
func (s *Serial) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.port.Close()
	})
	return err
}

// readPump splits the byte stream into lines and queues them inbound.
// When the inbound queue is full the frame is dropped with a warning;
// the queue only fills if the control loop has stalled.
func (s *Serial) readPump() {
	defer close(s.in)

	scanner := bufio.NewScanner(s.port)
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
		default:
			log.Warn("inbound queue full, dropping frame", "bytes", len(frame))
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-s.done:
			// expected on Close
		default:
			log.Error("serial read failed", "err", err)
		}
	}
}

// writePump drains the outbound queue onto the port.
func (s *Serial) writePump() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.out:
			if _, err := s.port.Write(frame); err != nil {
				log.Error("serial write failed", "err", err)
			}
		}
	}
}
