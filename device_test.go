package camdev

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/camdev/render"
)

// mockDevice records how it is driven.
type mockDevice struct {
	name      string
	caps      *Capabilities
	initErr   error
	renderErr error
	logger    *slog.Logger

	inits   int
	renders int
	closes  int
}

func (m *mockDevice) Name() string { return m.name }

func (m *mockDevice) Render(cam *Camera, ren *Renderer) error {
	if err := ValidateCall(cam, ren); err != nil {
		return err
	}
	m.renders++
	if m.renderErr != nil {
		return m.renderErr
	}
	ren.SetDrawState(ren.NewDrawState(m.name, cam))
	return nil
}

func (m *mockDevice) Init() error {
	m.inits++
	return m.initErr
}

func (m *mockDevice) Close() { m.closes++ }

func (m *mockDevice) SetLogger(l *slog.Logger) { m.logger = l }

// capableMock adds Capabilities to mockDevice.
type capableMock struct {
	mockDevice
}

func (c *capableMock) Capabilities() Capabilities { return *c.caps }

// plainDevice implements only Device.
type plainDevice struct{}

func (plainDevice) Name() string                   { return "plain" }
func (plainDevice) Render(*Camera, *Renderer) error { return nil }

func TestValidateCall(t *testing.T) {
	ren := NewRenderer(render.NewPixmapTarget(4, 4))
	tests := []struct {
		name string
		cam  *Camera
		ren  *Renderer
		want error
	}{
		{"ok", NewCamera(), ren, nil},
		{"nil camera", nil, ren, ErrNilCamera},
		{"nil renderer", NewCamera(), nil, ErrNilRenderer},
		{"nil target", NewCamera(), NewRenderer(nil), ErrNilTarget},
		{
			"inverted viewport", NewCamera(),
			NewRenderer(render.NewPixmapTarget(4, 4), WithViewport(Viewport{XMin: 0.8, YMin: 0, XMax: 0.2, YMax: 1})),
			ErrInvalidViewport,
		},
		{
			"viewport out of range", NewCamera(),
			NewRenderer(render.NewPixmapTarget(4, 4), WithViewport(Viewport{XMin: 0, YMin: 0, XMax: 1.5, YMax: 1})),
			ErrInvalidViewport,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCall(tt.cam, tt.ren)
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidateCall() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateCall() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCapabilitiesOf(t *testing.T) {
	want := Capabilities{Hardware: true, SupportsGPUTarget: true, MaxViewportSize: 4096}
	capable := &capableMock{mockDevice: mockDevice{name: "capable", caps: &want}}
	if got := CapabilitiesOf(capable); got != want {
		t.Errorf("CapabilitiesOf(capable) = %+v, want %+v", got, want)
	}
	if got := CapabilitiesOf(plainDevice{}); got != (Capabilities{}) {
		t.Errorf("CapabilitiesOf(plain) = %+v, want zero", got)
	}
}

func TestCloseDevice(t *testing.T) {
	m := &mockDevice{name: "m"}
	closeDevice(m)
	if m.closes != 1 {
		t.Errorf("closes = %d, want 1", m.closes)
	}
	// Devices without Close are ignored.
	closeDevice(plainDevice{})
}
