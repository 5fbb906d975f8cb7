package serialio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortMatches(t *testing.T) {
	cases := []struct {
		goos string
		dev  string
		want bool
	}{
		{"linux", "/dev/ttyACM0", true},
		{"linux", "/dev/ttyUSB1", true},
		{"linux", "/dev/ttyS0", false},
		{"darwin", "/dev/cu.usbmodem14101", true},
		{"darwin", "/dev/cu.usbserial-0001", true},
		{"darwin", "/dev/cu.Bluetooth-Incoming-Port", false},
		{"windows", "COM3", true},
		{"plan9", "/dev/ttyACM0", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, portMatches(tc.goos, tc.dev), "%s %s", tc.goos, tc.dev)
	}
}
