// Command camrender renders a single camera frame described by a YAML job
// file and writes it as PNG.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	_ "github.com/gogpu/camdev/device/gpu"
	_ "github.com/gogpu/camdev/device/recording"
	_ "github.com/gogpu/camdev/device/software"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "camrender: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "camrender"
	app.Usage = "render camera frames through pluggable render devices"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Build a render target, renderer and camera from a job file, render one frame
through the selected device and write the result as PNG.

Flags override the values of the job file. Without --config the built-in
defaults are used.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "YAML job file",
				},
				cli.StringFlag{
					Name:  "device, d",
					Usage: "registered device name (default: best available)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output PNG path",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height",
				},
			},
			Action: renderFrame,
		},
		{
			Name:   "list-devices",
			Usage:  "list registered render devices",
			Action: listDevices,
		},
	}
	return app
}
