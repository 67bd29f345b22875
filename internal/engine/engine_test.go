package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/svg2video/internal/config"
	"github.com/ivlev/svg2video/internal/document"
	"github.com/ivlev/svg2video/internal/effects"
	"github.com/ivlev/svg2video/internal/renderer"
	"github.com/ivlev/svg2video/internal/scene"
	"github.com/ivlev/svg2video/internal/video"
)

type fakeRenderer struct {
	mu     sync.Mutex
	frames []int
	failAt int // -1 disables failures
}

func newFakeRenderer(failAt int) *fakeRenderer {
	return &fakeRenderer{failAt: failAt}
}

func (f *fakeRenderer) RenderFrame(index int) error {
	if f.failAt >= 0 && index == f.failAt {
		return fmt.Errorf("frame %d: rasterization failure", index)
	}
	f.mu.Lock()
	f.frames = append(f.frames, index)
	f.mu.Unlock()
	return nil
}

type fakeEncoder struct {
	mu     sync.Mutex
	calls  int
	params video.EncodeParams
}

func (f *fakeEncoder) Encode(_ context.Context, params video.EncodeParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.params = params
	return nil
}

func referenceConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		InputSVG:    "layout.svg",
		OutputVideo: filepath.Join(t.TempDir(), "video.mp4"),
		FramesDir:   filepath.Join(t.TempDir(), "frames"),
		KeepFrames:  true,
		Width:       100,
		Height:      100,
		Framerate:   10,
		Workers:     4,
		Phases: config.Phases{
			Interval: 0.1,
			Entry:    0.1,
			Sustain:  0.5,
			Fade:     0.1,
		},
		EncodeTimeout: time.Minute,
	}
}

func TestRunRendersEveryFrameOnce(t *testing.T) {
	cfg := referenceConfig(t)
	r := newFakeRenderer(-1)
	e := &fakeEncoder{}

	if err := NewProject(cfg, r, e).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// ceil(0.6 * 10) = 6 frames, each exactly once.
	sort.Ints(r.frames)
	want := []int{0, 1, 2, 3, 4, 5}
	if len(r.frames) != len(want) {
		t.Fatalf("rendered %d frames, want %d: %v", len(r.frames), len(want), r.frames)
	}
	for i, frame := range r.frames {
		if frame != want[i] {
			t.Fatalf("frame set %v, want %v", r.frames, want)
		}
	}

	if e.calls != 1 {
		t.Fatalf("encoder invoked %d times, want 1", e.calls)
	}
	if e.params.Framerate != 10 || e.params.Width != 100 || e.params.Height != 100 {
		t.Errorf("encoder params %+v", e.params)
	}
	if e.params.Pattern != filepath.Join(cfg.FramesDir, "%06d.png") {
		t.Errorf("pattern = %s", e.params.Pattern)
	}
}

func TestRunFailureSkipsEncoder(t *testing.T) {
	cfg := referenceConfig(t)
	r := newFakeRenderer(3)
	e := &fakeEncoder{}

	err := NewProject(cfg, r, e).Run(context.Background())
	if err == nil {
		t.Fatal("expected failure when a frame cannot render")
	}
	if e.calls != 0 {
		t.Fatalf("encoder invoked %d times after a frame failure", e.calls)
	}
}

func TestRunRemovesFramesDir(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.KeepFrames = false

	if err := NewProject(cfg, newFakeRenderer(-1), &fakeEncoder{}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(cfg.FramesDir); !os.IsNotExist(err) {
		t.Errorf("frames dir still present: %v", err)
	}
}

func TestRunFailureRemovesFramesDir(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.KeepFrames = false

	err := NewProject(cfg, newFakeRenderer(2), &fakeEncoder{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected failure when a frame cannot render")
	}
	if _, err := os.Stat(cfg.FramesDir); !os.IsNotExist(err) {
		t.Errorf("frames dir survived a failed run: %v", err)
	}
}

const layoutSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <rect id="backdrop" width="100" height="100" fill="#000"/>
  <g id="cc"><circle cx="50" cy="50" r="20" fill="#fff"/></g>
</svg>`

// renderAll runs the real scene and renderer with the given worker count
// and returns the bytes of every produced frame file.
func renderAll(t *testing.T, workers int) map[string][]byte {
	t.Helper()

	cfg := referenceConfig(t)
	cfg.Workers = workers

	tmpl, err := document.Parse([]byte(layoutSVG))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder, err := scene.NewBuilder(tmpl, cfg.Phases, cfg.Framerate, []scene.Symbol{
		{NodeID: "cc", Effects: []effects.Effect{effects.FadeIn(), effects.Slide{OffsetY: 20}}},
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	r := renderer.NewRenderer(cfg.Width, cfg.Height, cfg.FramesDir, builder.Scene())
	if err := NewProject(cfg, r, &fakeEncoder{}).Run(context.Background()); err != nil {
		t.Fatalf("Run with %d workers: %v", workers, err)
	}

	files := make(map[string][]byte)
	entries, err := os.ReadDir(cfg.FramesDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(cfg.FramesDir, entry.Name()))
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		files[entry.Name()] = data
	}
	return files
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := renderAll(t, 1)
	parallel := renderAll(t, 4)

	wantNames := []string{"000001.png", "000002.png", "000003.png", "000004.png", "000005.png", "000006.png"}
	if len(serial) != len(wantNames) {
		t.Fatalf("serial run produced %d files, want %d", len(serial), len(wantNames))
	}
	for _, name := range wantNames {
		s, ok := serial[name]
		if !ok {
			t.Fatalf("serial run missing %s", name)
		}
		p, ok := parallel[name]
		if !ok {
			t.Fatalf("parallel run missing %s", name)
		}
		if !bytes.Equal(s, p) {
			t.Errorf("%s differs between 1 and 4 workers", name)
		}
	}
	if len(parallel) != len(serial) {
		t.Errorf("parallel run produced %d files, want %d", len(parallel), len(serial))
	}
}
