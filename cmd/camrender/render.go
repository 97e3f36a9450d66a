package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/camdev"
	"github.com/gogpu/camdev/config"
	"github.com/gogpu/camdev/device/software"
	"github.com/gogpu/camdev/render"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// frameStats summarizes one rendered frame.
type frameStats struct {
	Device     string
	Size       string
	State      camdev.DrawState
	Output     string
	RenderTime time.Duration
}

// Render a still frame.
func renderFrame(ctx *cli.Context) error {
	cfg, err := loadJob(ctx)
	if err != nil {
		return err
	}
	logger := setupLogging(ctx, cfg.Level())

	target := render.NewPixmapTarget(cfg.Width, cfg.Height)
	opts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}
	ren := camdev.NewRenderer(target, opts...)

	cam := camdev.NewCamera(append(cfg.CameraOptions(), deviceOption(cfg, logger))...)
	defer cam.Close()

	start := time.Now()
	if err := cam.Render(ren); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := target.SavePNG(cfg.Output); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	logger.Info("frame written", "path", cfg.Output, "device", cam.DeviceName())

	fmt.Fprint(ctx.App.Writer, frameTable(frameStats{
		Device:     cam.DeviceName(),
		Size:       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		State:      ren.DrawState(),
		Output:     cfg.Output,
		RenderTime: elapsed,
	}))
	return nil
}

// loadJob reads the job file, if any, and applies command line overrides.
func loadJob(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ctx.IsSet("device") {
		cfg.Device = ctx.String("device")
	}
	if ctx.IsSet("out") {
		cfg.Output = ctx.String("out")
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deviceOption selects the camera device. Annotation is a software device
// option, so annotated jobs get a dedicated software device.
func deviceOption(cfg *config.Config, logger *slog.Logger) camdev.CameraOption {
	if cfg.Annotate {
		if cfg.Device == "" || cfg.Device == software.Name {
			return camdev.WithDevice(software.New(software.Options{Annotate: true}))
		}
		logger.Warn("annotate is only supported by the software device", "device", cfg.Device)
	}
	return camdev.WithDeviceName(cfg.Device)
}

func frameTable(stats frameStats) string {
	p := message.NewPrinter(language.English)
	vp := stats.State.Viewport

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Target", "Viewport", "Pixels", "Aspect", "Erased", "Frame"})
	table.Append([]string{
		stats.Device,
		stats.Size,
		vp.String(),
		p.Sprintf("%d", vp.Dx()*vp.Dy()),
		fmt.Sprintf("%.3f", stats.State.Aspect),
		fmt.Sprintf("%t", stats.State.Erased),
		fmt.Sprintf("%d", stats.State.Frame),
	})
	table.SetFooter([]string{"", "", "", "", "", stats.Output, stats.RenderTime.Round(time.Microsecond).String()})
	table.Render()
	return buf.String()
}
