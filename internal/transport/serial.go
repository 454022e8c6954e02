package transport

import (
	"context"
	"fmt"
	"io"
	"os"
)

// SerialSource opens a serial GNSS receiver. Device may be empty to
// auto-detect the usual USB adapter paths.
type SerialSource struct {
	Device string
	Baud   int
}

func (s SerialSource) Label() string {
	return fmt.Sprintf("serial %s@%d", s.Device, s.Baud)
}

func (s SerialSource) Open(_ context.Context) (io.ReadCloser, error) {
	device := s.Device
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			return nil, fmt.Errorf("serial auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
		}
	}
	baud := s.Baud
	if baud == 0 {
		baud = 9600
	}
	return openSerial(device, baud)
}

func autoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
