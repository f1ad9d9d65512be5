// Package capture feeds a live serial-attached instrument's ASCII
// output into a touchstone session, exercising the streaming
// Receive(chunk) contract against a real transport instead of a file.
package capture

import (
	"context"
	"fmt"
	"io"

	serial "github.com/tarm/goserial"
)

// SerialSource reads raw bytes from a serial port at a configured
// baud rate and forwards them as chunks to onChunk.
type SerialSource struct {
	Port string
	Baud int

	port io.ReadWriteCloser
}

// Open opens the configured serial port. Baud defaults to 115200 when
// zero.
func (s *SerialSource) Open() error {
	if s.Baud == 0 {
		s.Baud = 115200
	}
	c := &serial.Config{Name: s.Port, Baud: s.Baud}
	p, err := serial.OpenPort(c)
	if err != nil {
		return fmt.Errorf("capture: open %s: %w", s.Port, err)
	}
	s.port = p
	return nil
}

// Close closes the underlying port.
func (s *SerialSource) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// Run reads available bytes in a loop and forwards them to onChunk
// until ctx is canceled or a read/onChunk error occurs. The port must
// already be open.
func (s *SerialSource) Run(ctx context.Context, onChunk func([]byte) error) error {
	if s.port == nil {
		return fmt.Errorf("capture: port not open")
	}
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := s.port.Read(buf)
		if err != nil {
			return fmt.Errorf("capture: read %s: %w", s.Port, err)
		}
		if n == 0 {
			continue
		}
		if err := onChunk(buf[:n]); err != nil {
			return fmt.Errorf("capture: onChunk: %w", err)
		}
	}
}
