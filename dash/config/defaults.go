package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultPages is the stock 320x240 layout.
func DefaultPages() []PageConfig {
	return []PageConfig{
		{
			Name: "overview",
			Elements: []ElementConfig{
				{Kind: KindGauge, Channel: "cpu_util", X: 0, Y: 0, W: 104, H: 104},
				{Kind: KindGauge, Channel: "gpu_util", X: 108, Y: 0, W: 104, H: 104},
				{Kind: KindGauge, Channel: "cpu_temp", X: 216, Y: 0, W: 104, H: 104},
				{Kind: KindGraph, Channel: "cpu_util", X: 0, Y: 108, W: 320, H: 60, Step: 2},
				{Kind: KindGrid, Channel: "cpu_core_util", X: 0, Y: 172, W: 156, H: 40, Rows: 2, Threshold: 10},
				{Kind: KindBar, Channel: "ram_used", X: 164, Y: 172, W: 156, H: 12},
				{Kind: KindReadout, Channel: "net_down", X: 164, Y: 188, W: 78, H: 28},
				{Kind: KindReadout, Channel: "net_up", X: 242, Y: 188, W: 78, H: 28},
				{Kind: KindText, Channel: "desktop_resolution", X: 0, Y: 216, W: 156, H: 24, Fallback: "-"},
				{Kind: KindReadout, Channel: "fps", X: 164, Y: 216, W: 156, H: 24},
			},
		},
		{
			Name: "gpu",
			Elements: []ElementConfig{
				{Kind: KindGauge, Channel: "gpu_temp", X: 0, Y: 0, W: 120, H: 120},
				{Kind: KindGauge, Channel: "gpu_fan", X: 124, Y: 0, W: 120, H: 120},
				{Kind: KindBar, Channel: "gpu_util", X: 252, Y: 0, W: 20, H: 120, Vertical: true},
				{Kind: KindBar, Channel: "gpu_mem_used", X: 284, Y: 0, W: 20, H: 120, Vertical: true},
				{Kind: KindGraph, Channel: "fps", X: 0, Y: 124, W: 320, H: 60, Step: 2, ZeroIsNoSignal: true},
				{Kind: KindReadout, Channel: "gpu_power", X: 0, Y: 188, W: 156, H: 36},
				{Kind: KindReadout, Channel: "gpu_clock", X: 164, Y: 188, W: 156, H: 36},
			},
		},
		{
			Name: "cores",
			Elements: []ElementConfig{
				{Kind: KindGrid, Channel: "cpu_core_util", X: 0, Y: 0, W: 320, H: 120, Rows: 2, Threshold: 10},
				{Kind: KindGraph, Channel: "net_down", X: 0, Y: 124, W: 320, H: 56, Step: 2},
				{Kind: KindGraph, Channel: "net_up", X: 0, Y: 184, W: 320, H: 56, Step: 2},
			},
		},
		{
			Name: "console",
			Elements: []ElementConfig{
				{Kind: KindConsole, X: 0, Y: 0, W: 320, H: 240},
			},
		},
	}
}

// ParseColor reads "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
