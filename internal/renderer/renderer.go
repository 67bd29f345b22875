package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/svg2video/internal/scene"
	"github.com/ivlev/svg2video/internal/system"
)

// maxFrameBytes caps a single frame buffer at 1 GiB; anything beyond that
// is a misconfigured resolution, not a real render target.
const maxFrameBytes = 1 << 30

// Renderer rasterizes scene snapshots into numbered PNG files. It is safe
// for concurrent use: the scene is pure and the buffers come from a pool.
type Renderer struct {
	width     int
	height    int
	framesDir string
	scene     scene.Scene

	badge image.Image // optional corner overlay, nil when unset

	// decode turns serialized scene bytes into a drawable icon. oksvg
	// accepts almost any well-formed document, so tests substitute this
	// to reach the rasterization failure paths.
	decode func(data []byte) (*oksvg.SvgIcon, error)
}

func NewRenderer(width, height int, framesDir string, sc scene.Scene) *Renderer {
	return &Renderer{
		width:     width,
		height:    height,
		framesDir: framesDir,
		scene:     sc,
		decode:    decodeIcon,
	}
}

func decodeIcon(data []byte) (*oksvg.SvgIcon, error) {
	return oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
}

// SetBadge attaches an overlay composed into the bottom-right corner of
// every frame, scaled to a tenth of the frame height.
func (r *Renderer) SetBadge(img image.Image) {
	r.badge = img
}

// FramePath returns the file the given frame index is persisted to.
// Frame 0 maps to 000001.png so the sequence matches ffmpeg's %06d input.
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%06d.png", index+1))
}

// RenderFrame rasterizes one frame and persists it. Failures carry the
// frame index and one of the allocation/rasterization/persistence kinds.
func (r *Renderer) RenderFrame(index int) error {
	data, err := r.scene(index).Bytes()
	if err != nil {
		return frameErr(index, KindRasterize, err)
	}

	icon, err := r.decode(data)
	if err != nil {
		return frameErr(index, KindRasterize, err)
	}

	if r.width <= 0 || r.height <= 0 {
		return frameErr(index, KindAllocate, fmt.Errorf("invalid resolution %dx%d", r.width, r.height))
	}
	if uint64(r.width)*uint64(r.height)*4 > maxFrameBytes {
		return frameErr(index, KindAllocate, fmt.Errorf("frame buffer %dx%d exceeds limit", r.width, r.height))
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return frameErr(index, KindRasterize, fmt.Errorf("document has an empty view box"))
	}

	// Fit to the configured height, preserving the document aspect ratio.
	scale := float64(r.height) / vh
	fitW := int(math.Round(vw * scale))
	if fitW < 1 {
		fitW = 1
	}
	if uint64(fitW)*uint64(r.height)*4 > maxFrameBytes {
		return frameErr(index, KindAllocate, fmt.Errorf("fitted buffer %dx%d exceeds limit", fitW, r.height))
	}

	canvas := system.GetImage(image.Rect(0, 0, r.width, r.height))
	defer system.PutImage(canvas)
	fitted := system.GetImage(image.Rect(0, 0, fitW, r.height))
	defer system.PutImage(fitted)

	if err := rasterize(icon, fitted, fitW, r.height); err != nil {
		return frameErr(index, KindRasterize, err)
	}

	// Center horizontally on the output canvas.
	offX := (r.width - fitW) / 2
	xdraw.Draw(canvas, image.Rect(offX, 0, offX+fitW, r.height), fitted, image.Point{}, xdraw.Over)

	r.composeBadge(canvas)

	if err := writePNG(FramePath(r.framesDir, index), canvas); err != nil {
		return frameErr(index, KindPersist, err)
	}
	return nil
}

// rasterize draws the icon into dst. oksvg panics on some malformed path
// data, so the panic is converted into a rasterization error.
func rasterize(icon *oksvg.SvgIcon, dst *image.RGBA, w, h int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rasterizer panic: %v", rec)
		}
	}()

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(raster, 1.0)
	return nil
}

func (r *Renderer) composeBadge(canvas *image.RGBA) {
	if r.badge == nil {
		return
	}

	side := r.height / 10
	if side < 1 {
		return
	}
	margin := side / 4
	x1 := r.width - margin
	y1 := r.height - margin
	target := image.Rect(x1-side, y1-side, x1, y1)

	xdraw.ApproxBiLinear.Scale(canvas, target, r.badge, r.badge.Bounds(), xdraw.Over, nil)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
