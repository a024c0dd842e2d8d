// Package chart draws the set size series as a bar chart with a trend line.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/basicfont"

	"github.com/hpungsan/splg/internal/errors"
)

// Format is an encoding for a rendered chart.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unsupported chart format %q (want png, jpeg or pdf)", s))
	}
}

// FormatFromPath picks the Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", errors.NewInvalidRequest("path must have .png, .jpg, .jpeg or .pdf extension")
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPDF:
		return "pdf"
	default:
		return "png"
	}
}

// IsImage reports whether the format is a raster image.
func (f Format) IsImage() bool {
	return f == FormatPNG || f == FormatJPEG
}

// Options controls chart size and labels.
type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
}

// DefaultOptions returns a 500x320 chart with the standard labels.
func DefaultOptions() Options {
	return Options{
		Width:  500,
		Height: 320,
		Title:  "Set Sizes",
		XLabel: "Set Number",
		YLabel: "Number of Languages",
	}
}

const (
	barColor   = "#87ceeb" // skyblue
	lineColor  = "#00008b" // darkblue
	axisColor  = "#000000"
	minSize    = 120
	markerSize = 3.0
)

// margins around the plot area, in pixels.
const (
	marginLeft   = 56.0
	marginRight  = 16.0
	marginTop    = 30.0
	marginBottom = 42.0
)

// Render draws sizes as bars at x = 1..len(sizes) with a trend line through
// the bar tops.
func Render(sizes []int, opts Options) (image.Image, error) {
	if len(sizes) == 0 {
		return nil, errors.NewNoData()
	}
	if opts.Width < minSize || opts.Height < minSize {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("chart must be at least %dx%d pixels", minSize, minSize))
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	p := newPlot(dc, sizes)

	p.drawGrid()
	p.drawBars()
	p.drawTrend()
	p.drawAxes()
	p.drawLabels(opts)
	p.drawLegend()

	return dc.Image(), nil
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case FormatPDF:
		return encodePDF(w, img)
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("unsupported chart format %q", f))
	}
}

// encodePDF writes a single-page PDF sized to the image, one point per
// pixel, with the chart embedded as PNG.
func encodePDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Set Sizes", true)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, &buf)
	pdf.ImageOptions("chart", 0, 0, width, height, false, opts, 0, "")

	return pdf.Output(w)
}

// plot maps data coordinates into the drawing area.
type plot struct {
	dc      *gg.Context
	sizes   []int
	left    float64
	top     float64
	width   float64
	height  float64
	yMax    int
	yStep   int
	slotW   float64
	barFrac float64
}

func newPlot(dc *gg.Context, sizes []int) *plot {
	yMax := 0
	for _, s := range sizes {
		yMax = max(yMax, s)
	}
	yStep := max(1, int(math.Ceil(float64(yMax)/5)))
	// Round the axis top up to a whole tick.
	yMax = ((yMax + yStep - 1) / yStep) * yStep

	w := float64(dc.Width()) - marginLeft - marginRight
	h := float64(dc.Height()) - marginTop - marginBottom

	return &plot{
		dc:      dc,
		sizes:   sizes,
		left:    marginLeft,
		top:     marginTop,
		width:   w,
		height:  h,
		yMax:    yMax,
		yStep:   yStep,
		slotW:   w / float64(len(sizes)),
		barFrac: 0.8,
	}
}

// x returns the pixel center of the bar for 0-based index i.
func (p *plot) x(i int) float64 {
	return p.left + (float64(i)+0.5)*p.slotW
}

// y returns the pixel row for data value v.
func (p *plot) y(v int) float64 {
	return p.top + p.height - float64(v)/float64(p.yMax)*p.height
}

func (p *plot) drawGrid() {
	dc := p.dc
	dc.Push()
	defer dc.Pop()

	dc.SetRGBA(0.5, 0.5, 0.5, 0.5)
	dc.SetLineWidth(0.8)
	dc.SetDash(4, 3)
	for v := p.yStep; v <= p.yMax; v += p.yStep {
		y := p.y(v)
		dc.DrawLine(p.left, y, p.left+p.width, y)
		dc.Stroke()
	}
	for i, step := 0, p.xTickStep(); i < len(p.sizes); i += step {
		x := p.x(i)
		dc.DrawLine(x, p.top, x, p.top+p.height)
		dc.Stroke()
	}
}

func (p *plot) drawBars() {
	dc := p.dc
	dc.SetHexColor(barColor)
	barW := p.slotW * p.barFrac
	for i, s := range p.sizes {
		top := p.y(s)
		dc.DrawRectangle(p.x(i)-barW/2, top, barW, p.top+p.height-top)
	}
	dc.Fill()
}

func (p *plot) drawTrend() {
	dc := p.dc
	dc.SetHexColor(lineColor)
	dc.SetLineWidth(1.5)
	for i, s := range p.sizes {
		if i == 0 {
			dc.MoveTo(p.x(i), p.y(s))
			continue
		}
		dc.LineTo(p.x(i), p.y(s))
	}
	dc.Stroke()

	// Markers only while they stay distinguishable.
	if p.slotW < 2*markerSize {
		return
	}
	for i, s := range p.sizes {
		dc.DrawCircle(p.x(i), p.y(s), markerSize)
	}
	dc.Fill()
}

func (p *plot) drawAxes() {
	dc := p.dc
	dc.SetHexColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.left, p.top, p.width, p.height)
	dc.Stroke()

	for v := 0; v <= p.yMax; v += p.yStep {
		y := p.y(v)
		dc.DrawLine(p.left-4, y, p.left, y)
		dc.Stroke()
		dc.DrawStringAnchored(strconv.Itoa(v), p.left-7, y, 1, 0.35)
	}

	for i, step := 0, p.xTickStep(); i < len(p.sizes); i += step {
		x := p.x(i)
		bottom := p.top + p.height
		dc.DrawLine(x, bottom, x, bottom+4)
		dc.Stroke()
		dc.DrawStringAnchored(strconv.Itoa(i+1), x, bottom+6, 0.5, 1)
	}
}

// xTickStep spaces x labels so they don't overlap.
func (p *plot) xTickStep() int {
	w, _ := p.dc.MeasureString(strconv.Itoa(len(p.sizes)))
	perLabel := w + 8
	return max(1, int(math.Ceil(perLabel/p.slotW)))
}

func (p *plot) drawLabels(opts Options) {
	dc := p.dc
	dc.SetHexColor(axisColor)
	w := float64(dc.Width())
	h := float64(dc.Height())

	dc.DrawStringAnchored(opts.Title, w/2, marginTop/2, 0.5, 0.5)
	dc.DrawStringAnchored(opts.XLabel, p.left+p.width/2, h-8, 0.5, 0)

	dc.Push()
	cx, cy := 12.0, p.top+p.height/2
	dc.RotateAbout(gg.Radians(-90), cx, cy)
	dc.DrawStringAnchored(opts.YLabel, cx, cy, 0.5, 0.5)
	dc.Pop()
}

func (p *plot) drawLegend() {
	dc := p.dc
	const (
		pad    = 6.0
		swatch = 18.0
		rowH   = 16.0
	)
	labels := []string{"Set Size", "Trend Line"}
	textW := 0.0
	for _, l := range labels {
		lw, _ := dc.MeasureString(l)
		textW = max(textW, lw)
	}
	boxW := pad*3 + swatch + textW
	boxH := pad*2 + rowH*float64(len(labels))
	x0 := p.left + 8
	y0 := p.top + 8

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(x0, y0, boxW, boxH)
	dc.Fill()
	dc.SetRGBA(0.8, 0.8, 0.8, 1)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x0, y0, boxW, boxH)
	dc.Stroke()

	rowY := func(row int) float64 { return y0 + pad + rowH*float64(row) + rowH/2 }

	dc.SetHexColor(barColor)
	dc.DrawRectangle(x0+pad, rowY(0)-5, swatch, 10)
	dc.Fill()

	dc.SetHexColor(lineColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(x0+pad, rowY(1), x0+pad+swatch, rowY(1))
	dc.Stroke()
	dc.DrawCircle(x0+pad+swatch/2, rowY(1), markerSize)
	dc.Fill()

	dc.SetHexColor(axisColor)
	for i, l := range labels {
		dc.DrawStringAnchored(l, x0+pad*2+swatch, rowY(i), 0, 0.35)
	}
}
