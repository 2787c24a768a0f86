package main

import (
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/duelgame/shell"
)

// arenaRenderer draws the duel arena: a floor, two fighters circling each
// other, and a center line. It renders through gg into an offscreen context
// and blits into CPU frame targets. GPU-backed targets are cleared by the
// hardware path and skipped here.
type arenaRenderer struct {
	ctx  *gg.Context
	w, h int
}

func (r *arenaRenderer) render(fc *shell.FrameContext) error {
	pt, ok := fc.Target().(shell.PixelTarget)
	if !ok {
		return nil
	}
	w, h := fc.Size()
	if r.ctx == nil || w != r.w || h != r.h {
		if r.ctx != nil {
			_ = r.ctx.Close()
		}
		r.ctx = gg.NewContext(w, h)
		r.w, r.h = w, h
	}

	t := fc.Elapsed().Seconds()
	r.drawArena(float64(w), float64(h), t)

	dst := pt.RGBA()
	draw.Draw(dst, dst.Bounds(), r.ctx.Image(), image.Point{}, draw.Src)
	return nil
}

func (r *arenaRenderer) drawArena(w, h, t float64) {
	c := r.ctx
	c.ClearWithColor(gg.RGB(0.07, 0.07, 0.10))

	// Floor.
	floorY := h * 0.85
	c.SetRGB(0.25, 0.22, 0.18)
	c.DrawRectangle(0, floorY, w, h-floorY)
	c.Fill()

	// Center line.
	c.SetRGB(0.35, 0.35, 0.40)
	c.SetLineWidth(2)
	c.MoveTo(w/2, h*0.1)
	c.LineTo(w/2, floorY)
	c.Stroke()

	// Fighters advance and retreat out of phase.
	radius := h * 0.07
	sway := w * 0.06 * math.Sin(t*2)
	bounce := math.Abs(math.Sin(t*6)) * h * 0.02

	c.SetRGB(0.85, 0.25, 0.20)
	c.DrawCircle(w*0.35+sway, floorY-radius-bounce, radius)
	c.Fill()

	c.SetRGB(0.20, 0.45, 0.85)
	c.DrawCircle(w*0.65-sway, floorY-radius-bounce, radius)
	c.Fill()
}
