package main

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/gogpu/camdev"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// deviceInfo describes one registered device.
type deviceInfo struct {
	Name    string
	Default bool
	Caps    camdev.Capabilities
	Err     error
}

// List registered render devices.
func listDevices(ctx *cli.Context) error {
	setupLogging(ctx, slog.LevelWarn)
	fmt.Fprint(ctx.App.Writer, devicesTable(collectDevices()))
	return nil
}

// collectDevices creates each registered device once to query its
// capabilities.
func collectDevices() []deviceInfo {
	defaultName := ""
	if d, err := camdev.DefaultDevice(); err == nil {
		defaultName = d.Name()
		closeDevice(d)
	}

	names := camdev.Devices()
	infos := make([]deviceInfo, 0, len(names))
	for _, name := range names {
		info := deviceInfo{Name: name, Default: name == defaultName}
		d, err := camdev.NewDevice(name)
		if err != nil {
			info.Err = err
		} else {
			info.Caps = camdev.CapabilitiesOf(d)
			closeDevice(d)
		}
		infos = append(infos, info)
	}
	return infos
}

func closeDevice(d camdev.Device) {
	if c, ok := d.(camdev.Closer); ok {
		c.Close()
	}
}

func devicesTable(infos []deviceInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Default", "Hardware", "Requires CPU", "GPU target", "Max viewport", "Status"})
	for _, info := range infos {
		status := "ok"
		if info.Err != nil {
			status = info.Err.Error()
		}
		maxViewport := "-"
		if info.Caps.MaxViewportSize > 0 {
			maxViewport = fmt.Sprintf("%d", info.Caps.MaxViewportSize)
		}
		table.Append([]string{
			info.Name,
			fmt.Sprintf("%t", info.Default),
			fmt.Sprintf("%t", info.Caps.Hardware),
			fmt.Sprintf("%t", info.Caps.RequiresCPUTarget),
			fmt.Sprintf("%t", info.Caps.SupportsGPUTarget),
			maxViewport,
			status,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", fmt.Sprintf("%d", len(infos))})
	table.Render()
	return buf.String()
}
