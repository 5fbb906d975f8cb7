package serialio

import (
	"errors"
	"strconv"
	"strings"
)

// Command bytes understood by the barrier controller firmware.
const (
	CmdGateOpen     byte = '1'
	CmdGateClose    byte = '0'
	CmdAlarmOn      byte = '2'
	CmdAlarmSilence byte = 'S'
)

// distancePrefix optionally tags sensor lines, e.g. "DIST:42.5".
const distancePrefix = "DIST:"

// ErrNoDevice is returned by actuation calls when the lane is running
// without hardware attached.
var ErrNoDevice = errors.New("serialio: no device attached")

// SensorGate is one barrier controller: an ultrasonic distance sensor
// and the gate/alarm actuators, multiplexed over a single serial link.
// A nil channel puts the gate in no-hardware mode — reads report no
// data and actuations fail with ErrNoDevice, so decision logic can keep
// running and be recorded without a device present.
type SensorGate struct {
	ch *Channel
}

// NewSensorGate wraps ch; ch may be nil for no-hardware mode.
func NewSensorGate(ch *Channel) *SensorGate {
	return &SensorGate{ch: ch}
}

// Available reports whether hardware is attached.
func (g *SensorGate) Available() bool { return g != nil && g.ch != nil }

// ReadDistance returns the latest distance reading in centimeters.
// Absence of data, a closed port, or an unparseable line all report
// ok=false — the caller treats every one of those as "no vehicle in the
// capture zone".
func (g *SensorGate) ReadDistance() (float64, bool) {
	if !g.Available() {
		return 0, false
	}
	line, ok := g.ch.TryReadLine()
	if !ok {
		return 0, false
	}
	line = strings.TrimPrefix(strings.TrimSpace(line), distancePrefix)
	d, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Open raises the barrier.
func (g *SensorGate) Open() error { return g.send(CmdGateOpen) }

// Close lowers the barrier.
func (g *SensorGate) Close() error { return g.send(CmdGateClose) }

// AlarmOn starts the payment-pending alarm.
func (g *SensorGate) AlarmOn() error { return g.send(CmdAlarmOn) }

// AlarmSilence stops any sounding alarm.
func (g *SensorGate) AlarmSilence() error { return g.send(CmdAlarmSilence) }

func (g *SensorGate) send(cmd byte) error {
	if !g.Available() {
		return ErrNoDevice
	}
	return g.ch.WriteByte(cmd)
}
