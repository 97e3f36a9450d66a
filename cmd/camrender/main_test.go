package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/camdev"
)

// runApp runs the CLI with args and returns stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	orig := camdev.Logger()
	t.Cleanup(func() { camdev.SetLogger(orig) })

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"camrender"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestRenderSoftware(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "frame.png")
	stdout, _, err := runApp(t, "render", "--device", "software", "--out", out, "--width", "32", "--height", "16")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("image size = %v, want 32x16", b)
	}

	for _, want := range []string{"software", "32x16", "2.000", out} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary missing %q:\n%s", want, stdout)
		}
	}
}

func TestRenderFromConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "job.png")
	job := filepath.Join(dir, "job.yaml")
	data := "device: software\nwidth: 8\nheight: 8\noutput: " + out + "\n" +
		"renderer:\n  background: \"#ff0000\"\n  viewport: [0, 0, 0.5, 1]\n"
	if err := os.WriteFile(job, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runApp(t, "render", "--config", job); err != nil {
		t.Fatalf("render error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, a := img.At(1, 4).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("left half not erased to red: r=%#x a=%#x", r, a)
	}
	if _, _, _, a := img.At(6, 4).RGBA(); a != 0 {
		t.Errorf("right half outside the viewport was drawn: a=%#x", a)
	}
}

func TestRenderVerboseLogs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	_, stderr, err := runApp(t, "-vv", "render", "--device", "software", "--out", out, "--width", "4", "--height", "4")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("-vv should enable debug logs, got:\n%s", stderr)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown device", []string{"render", "--device", "vulkan", "--out", filepath.Join(dir, "a.png")}, "forgotten import"},
		{"bad size", []string{"render", "--width", "-1", "--out", filepath.Join(dir, "b.png")}, "width and height"},
		{"missing config", []string{"render", "--config", filepath.Join(dir, "none.yaml")}, "read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runApp(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestListDevices(t *testing.T) {
	stdout, _, err := runApp(t, "list-devices")
	if err != nil {
		t.Fatalf("list-devices error = %v", err)
	}
	for _, want := range []string{"gpu", "software", "recording", "Requires CPU"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("device table missing %q:\n%s", want, stdout)
		}
	}
}

func TestDevicesTable(t *testing.T) {
	table := devicesTable([]deviceInfo{
		{Name: "software", Default: true, Caps: camdev.Capabilities{RequiresCPUTarget: true}},
		{Name: "broken", Err: camdev.ErrDeviceNotAvailable},
	})
	if !strings.Contains(table, "camdev: device not available") {
		t.Errorf("table should show the device error:\n%s", table)
	}
	if !strings.Contains(table, "TOTAL") {
		t.Errorf("table should have a total footer:\n%s", table)
	}
}

func TestFrameTable(t *testing.T) {
	table := frameTable(frameStats{
		Device: "gpu",
		Size:   "640x480",
		State: camdev.DrawState{
			Viewport: image.Rect(0, 0, 640, 480),
			Aspect:   640.0 / 480.0,
			Erased:   true,
			Frame:    1,
		},
		Output: "frame.png",
	})
	for _, want := range []string{"gpu", "307,200", "1.333", "true", "frame.png"} {
		if !strings.Contains(table, want) {
			t.Errorf("frame table missing %q:\n%s", want, table)
		}
	}
}
