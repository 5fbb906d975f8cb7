package serialio

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"go.bug.st/serial"
)

// ErrNoPort is returned by DetectPort when no candidate device is
// attached.
var ErrNoPort = errors.New("serialio: no serial device detected")

// DefaultBaud matches the firmware on the gate controller and payment
// terminal.
const DefaultBaud = 9600

// DetectPort scans the attached serial devices and returns the first
// one that looks like the microcontroller for this platform.
func DetectPort() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("serialio: list ports: %w", err)
	}
	for _, p := range ports {
		if portMatches(runtime.GOOS, p) {
			return p, nil
		}
	}
	return "", ErrNoPort
}

func portMatches(goos, dev string) bool {
	switch goos {
	case "linux":
		return strings.Contains(dev, "ttyACM") || strings.Contains(dev, "ttyUSB")
	case "darwin":
		return strings.Contains(dev, "usbmodem") || strings.Contains(dev, "usbserial")
	case "windows":
		return strings.Contains(dev, "COM")
	}
	return false
}

// OpenPort opens path at baud (8N1) and returns it ready for a Channel.
// The microcontroller resets when the port opens; the settle delay lets
// it finish booting before the first command.
func OpenPort(path string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("serialio: set read timeout on %s: %w", path, err)
	}
	time.Sleep(2 * time.Second)
	return port, nil
}
