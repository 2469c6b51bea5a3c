// Package geometry converts field placements between the editor's
// normalized, top-left-origin space and PDF user space.
//
// Editors store a field as four fractions of the page size measured from the
// page's top-left corner. PDF measures in points (1/72 inch) from the
// bottom-left corner. NormalizedRect.ToPDF is the only conversion between
// the two, so raw editor values never reach the content stream directly.
package geometry

import (
	"fmt"
	"math"
)

// Letter is the fallback page box used when a page carries no MediaBox.
var Letter = PageBox{URX: 612, URY: 792}

// NormalizedRect is a field rectangle expressed as fractions of the page
// width and height with the origin at the page's top-left corner.
type NormalizedRect struct {
	x, y, w, h float64
}

// RangeError reports a normalized coordinate outside [0,1] or not finite.
type RangeError struct {
	Component string
	Value     float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("normalized %s %v outside [0,1]", e.Component, e.Value)
}

// NewNormalizedRect validates each component independently. The sums x+w and
// y+h are not checked: a box hanging off the page is drawn where it lands.
func NewNormalizedRect(x, y, w, h float64) (NormalizedRect, error) {
	for _, c := range []struct {
		name string
		v    float64
	}{{"x", x}, {"y", y}, {"width", w}, {"height", h}} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < 0 || c.v > 1 {
			return NormalizedRect{}, &RangeError{Component: c.name, Value: c.v}
		}
	}
	return NormalizedRect{x: x, y: y, w: w, h: h}, nil
}

// MustNormalizedRect is like NewNormalizedRect but panics on invalid input.
// Intended for literals in tests and examples.
func MustNormalizedRect(x, y, w, h float64) NormalizedRect {
	r, err := NewNormalizedRect(x, y, w, h)
	if err != nil {
		panic(err)
	}
	return r
}

// Components returns the raw fractions (x, y, width, height).
func (r NormalizedRect) Components() (x, y, w, h float64) {
	return r.x, r.y, r.w, r.h
}

// PageBox is a page's MediaBox in PDF points.
type PageBox struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of the box.
func (b PageBox) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent of the box.
func (b PageBox) Height() float64 { return b.URY - b.LLY }

// Rect is an axis-aligned rectangle in PDF user space. (X, Y) is the
// bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// ToPDF maps the rectangle onto the page:
//
//	x      = xPct * W
//	width  = wPct * W
//	height = hPct * H
//	y      = H - (yPct + hPct) * H
//
// The editor's top edge sits at H - yPct*H; subtracting the box height gives
// the bottom edge, which is the anchor PDF drawing operators expect. The
// result is shifted by the box origin for pages whose MediaBox does not
// start at (0,0).
func (r NormalizedRect) ToPDF(page PageBox) Rect {
	pw, ph := page.Width(), page.Height()
	return Rect{
		X:      page.LLX + r.x*pw,
		Y:      page.LLY + ph - (r.y+r.h)*ph,
		Width:  r.w * pw,
		Height: r.h * ph,
	}
}

// Top returns the y coordinate of the upper edge.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Scale grows or shrinks the rectangle by factor around its center.
func (r Rect) Scale(factor float64) Rect {
	cx, cy := r.Center()
	w, h := r.Width*factor, r.Height*factor
	return Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// FitAspect returns the largest rectangle with the aspect ratio
// srcW:srcH that fits inside r, centered on the axis with slack.
// A degenerate source size returns r unchanged.
func (r Rect) FitAspect(srcW, srcH float64) Rect {
	if srcW <= 0 || srcH <= 0 || r.Width <= 0 || r.Height <= 0 {
		return r
	}
	scale := math.Min(r.Width/srcW, r.Height/srcH)
	w, h := srcW*scale, srcH*scale
	return Rect{
		X:      r.X + (r.Width-w)/2,
		Y:      r.Y + (r.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Contains reports whether the point lies inside or on the edge of r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Top()
}
