package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/svg2video/internal/config"
	"github.com/ivlev/svg2video/internal/video"
)

// FrameRenderer рисует один кадр по индексу.
type FrameRenderer interface {
	RenderFrame(index int) error
}

// Project управляет полным циклом: параллельный рендеринг кадров и
// последующая сборка видео внешним энкодером.
type Project struct {
	Config   *config.Config
	Renderer FrameRenderer
	Encoder  video.Encoder
}

func NewProject(cfg *config.Config, r FrameRenderer, e video.Encoder) *Project {
	return &Project{
		Config:   cfg,
		Renderer: r,
		Encoder:  e,
	}
}

// Run рендерит все кадры и запускает энкодер. Политика ошибок: первая
// ошибка кадра останавливает планирование новых, уже запущенные кадры
// дорабатывают, энкодер при любой ошибке не вызывается.
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()

	total := p.Config.Phases.FrameCount(p.Config.Framerate)
	if total == 0 {
		return fmt.Errorf("нулевая длительность видео: проверьте фазы")
	}

	if err := os.MkdirAll(p.Config.FramesDir, 0755); err != nil {
		return fmt.Errorf("создание папки кадров: %w", err)
	}
	// Кадры убираем и после ошибки, чтобы не копить мусор во временных папках.
	if !p.Config.KeepFrames {
		defer os.RemoveAll(p.Config.FramesDir)
	}

	fmt.Printf("[*] Кадров: %d | Разрешение: %dx%d @ %g FPS | Потоков: %d\n",
		total, p.Config.Width, p.Config.Height, p.Config.Framerate, p.Config.Workers)

	renderStart := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)

	var finished atomic.Int64
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := p.Renderer.RenderFrame(i); err != nil {
				return err
			}
			n := finished.Add(1)
			fmt.Printf("\r[>] Рендеринг кадров: %d/%d", n, total)
			return nil
		})
	}

	err := g.Wait()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("рендеринг прерван: %w", err)
	}
	renderTime := time.Since(renderStart)

	fmt.Println("[*] Сборка видео (ffmpeg)...")
	encodeStart := time.Now()
	params := video.EncodeParams{
		Framerate:    p.Config.Framerate,
		Width:        p.Config.Width,
		Height:       p.Config.Height,
		Pattern:      filepath.Join(p.Config.FramesDir, "%06d.png"),
		Output:       p.Config.OutputVideo,
		VideoEncoder: p.Config.VideoEncoder,
		Quality:      p.Config.Quality,
		Timeout:      p.Config.EncodeTimeout,
	}
	if err := p.Encoder.Encode(ctx, params); err != nil {
		return fmt.Errorf("сборка видео: %w", err)
	}
	encodeTime := time.Since(encodeStart)

	if p.Config.ShowStats {
		totalTime := time.Since(startTime)
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Total Time: %.2fs\n"+
				"Rendering: %.2fs\n"+
				"Encoding: %.2fs\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			p.Config.BuildVersion, totalTime.Seconds(), renderTime.Seconds(),
			encodeTime.Seconds(), float64(total)/renderTime.Seconds(),
		)
	}

	return nil
}
