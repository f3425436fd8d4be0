package page

import (
	"errors"
	"fmt"
	"image"

	"hwdash/dash/channel"
	"hwdash/dash/config"
	"hwdash/dash/gfx"
	"hwdash/dash/widget"
)

// Assets are the shared resources elements are built from.
type Assets struct {
	// Needle is optional gauge artwork, resized per gauge.
	Needle *gfx.Surface
	// Console makes the binding for a "console" element of w x h pixels.
	// Such elements are an error without it.
	Console func(w, h int) Binding
}

// Build creates fresh pages, with fresh element state, from the layout.
func Build(cfg *config.Config, reg *channel.Registry, assets Assets) ([]*Page, error) {
	pages := make([]*Page, 0, len(cfg.Pages))
	for _, pc := range cfg.Pages {
		p := &Page{Name: pc.Name, Background: widget.DefaultPalette.Background}
		if pc.Background != "" {
			c, err := config.ParseColor(pc.Background)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", pc.Name, err)
			}
			p.Background = c
		}
		for i, ec := range pc.Elements {
			b, err := buildElement(ec, reg, assets)
			if err != nil {
				return nil, fmt.Errorf("page %s element %d (%s %s): %w", pc.Name, i, ec.Kind, ec.Channel, err)
			}
			p.Add(image.Pt(ec.X, ec.Y), b)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func buildElement(ec config.ElementConfig, reg *channel.Registry, assets Assets) (Binding, error) {
	switch ec.Kind {
	case config.KindConsole:
		if assets.Console == nil {
			return nil, errors.New("no console available")
		}
		return assets.Console(ec.W, ec.H), nil
	case config.KindGrid:
		descs, ok := reg.Indexed(ec.Channel)
		if !ok {
			return nil, fmt.Errorf("unknown channel family %q", ec.Channel)
		}
		g, err := widget.NewGrid(widget.GridConfig{
			Width:     ec.W,
			Height:    ec.H,
			Cells:     len(descs),
			Rows:      ec.Rows,
			Threshold: ec.Threshold,
			Gap:       2,
		})
		if err != nil {
			return nil, err
		}
		return NewGrid(descs, g), nil
	}

	d, ok := reg.Lookup(channel.ID(ec.Channel))
	if !ok {
		return nil, fmt.Errorf("unknown channel %q", ec.Channel)
	}
	switch ec.Kind {
	case config.KindGraph:
		g, err := widget.NewLineGraph(d, widget.LineGraphConfig{
			Width:          ec.W,
			Height:         ec.H,
			Step:           ec.Step,
			ZeroIsNoSignal: ec.ZeroIsNoSignal,
			ShowLabel:      true,
			GridLines:      3,
		})
		if err != nil {
			return nil, err
		}
		return NewGraph(d, g), nil
	case config.KindGauge:
		size := min(ec.W, ec.H)
		gc := widget.GaugeConfig{
			Size:             size,
			CounterClockwise: ec.CounterClockwise,
			FixedLabel:       ec.Label,
		}
		if assets.Needle != nil {
			gc.Needle = gfx.Resize(assets.Needle, size, size)
		}
		g, err := widget.NewGauge(d, gc)
		if err != nil {
			return nil, err
		}
		return NewGauge(d, g), nil
	case config.KindBar:
		b, err := widget.NewBar(d, widget.BarConfig{Width: ec.W, Height: ec.H, Vertical: ec.Vertical})
		if err != nil {
			return nil, err
		}
		return NewBar(d, b), nil
	case config.KindReadout:
		r, err := widget.NewReadout(d, widget.ReadoutConfig{Width: ec.W, Height: ec.H, Label: ec.Label})
		if err != nil {
			return nil, err
		}
		return NewReadout(d, r), nil
	case config.KindText:
		r, err := widget.NewReadout(d, widget.ReadoutConfig{Width: ec.W, Height: ec.H, Label: ec.Label, Font: gfx.FontSmall})
		if err != nil {
			return nil, err
		}
		return NewText(d, ec.Fallback, r), nil
	}
	return nil, fmt.Errorf("unknown kind %q", ec.Kind)
}
