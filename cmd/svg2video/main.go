package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/svg2video/internal/badge"
	"github.com/ivlev/svg2video/internal/config"
	"github.com/ivlev/svg2video/internal/document"
	"github.com/ivlev/svg2video/internal/effects"
	"github.com/ivlev/svg2video/internal/engine"
	"github.com/ivlev/svg2video/internal/renderer"
	"github.com/ivlev/svg2video/internal/scene"
	"github.com/ivlev/svg2video/internal/system"
	"github.com/ivlev/svg2video/internal/video"
)

// Порядок появления символов лицензии в анимации.
var symbolIDs = []string{"cc", "by", "sa", "text"}

// buildVersion задаётся при сборке через -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	inputPtr := flag.String("input", "", "Путь к svg-шаблону (по умолчанию: layout.svg или самый свежий файл в input/svg/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	resolutionPtr := flag.String("resolution", "3840x2160", "Разрешение видео в формате WIDTHxHEIGHT")
	fpsPtr := flag.Float64("fps", 60.0, "Частота кадров (fps)")
	delayPtr := flag.Float64("delay", 0.5, "Секунды пустого интро")
	intervalPtr := flag.Float64("interval", 0.2, "Секунды между появлением символов")
	entryPtr := flag.Float64("entry", 0.2, "Секунды анимации каждого символа")
	sustainPtr := flag.Float64("sustain", 1.5, "Секунды удержания символов на экране")
	fadePtr := flag.Float64("fade", 0.5, "Секунды затухания")
	leavePtr := flag.Float64("leave", 0.5, "Секунды пустой концовки")
	timingPtr := flag.String("timing", "", "YAML-пресет таймингов (заменяет флаги фаз)")
	saveTimingPtr := flag.String("save-timing", "", "Сохранить тайминги в YAML-пресет и выйти")
	workersPtr := flag.Int("workers", 0, "Потоки рендеринга (0 - авто по CPU и памяти)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	qrPtr := flag.String("qr", "", "URL лицензии для QR-бейджа в углу кадра")
	framesDirPtr := flag.String("frames-dir", "", "Папка для кадров (если пусто, временная)")
	keepFramesPtr := flag.Bool("keep-frames", false, "Не удалять кадры после сборки")
	encodeTimeoutPtr := flag.Duration("encode-timeout", 15*time.Minute, "Таймаут ffmpeg (0 - без лимита)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	width, height, err := config.ParseResolution(*resolutionPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	phases := config.Phases{
		Delay:    *delayPtr,
		Interval: *intervalPtr,
		Entry:    *entryPtr,
		Sustain:  *sustainPtr,
		Fade:     *fadePtr,
		Leave:    *leavePtr,
	}

	if *saveTimingPtr != "" {
		if err := config.WritePreset(phases, *saveTimingPtr); err != nil {
			log.Fatalf("[-] Ошибка сохранения пресета: %v", err)
		}
		fmt.Printf("[+++] Тайминги сохранены: %s\n", *saveTimingPtr)
		return
	}

	if *timingPtr != "" {
		phases, err = config.ReadPreset(*timingPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения пресета: %v", err)
		}
		fmt.Printf("[*] Используется пресет таймингов: %s\n", *timingPtr)
	}

	inputPath := *inputPtr
	if inputPath == "" {
		if _, err := os.Stat("layout.svg"); err == nil {
			inputPath = "layout.svg"
		} else {
			latest, err := system.FindLatestSVG("input/svg")
			if err != nil {
				log.Fatalf("[-] Ошибка: %v. Положите svg в input/svg/ или укажите -input", err)
			}
			inputPath = latest
			fmt.Printf("[*] Выбран файл: %s\n", inputPath)
		}
	}

	if err := system.CheckFFmpeg(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 15 // почти без потерь для маркера лицензии
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		os.MkdirAll("output", 0755)
		baseName := filepath.Base(inputPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.DefaultWorkers(width, height)
	}

	framesDir := *framesDirPtr
	keepFrames := *keepFramesPtr
	if framesDir == "" {
		framesDir, err = os.MkdirTemp("", "svg2video_")
		if err != nil {
			log.Fatalf("[-] Ошибка создания временной папки: %v", err)
		}
	} else {
		// Явно указанную папку кадров не удаляем
		keepFrames = true
	}

	cfg := &config.Config{
		InputSVG:      inputPath,
		OutputVideo:   finalOutput,
		FramesDir:     framesDir,
		KeepFrames:    keepFrames,
		Width:         width,
		Height:        height,
		Framerate:     *fpsPtr,
		Phases:        phases,
		Workers:       workers,
		LicenseURL:    *qrPtr,
		VideoEncoder:  encoderName,
		Quality:       quality,
		EncodeTimeout: *encodeTimeoutPtr,
		ShowStats:     *statsPtr,
		BuildVersion:  buildVersion,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	template, err := document.Load(cfg.InputSVG)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки шаблона: %v", err)
	}

	builder, err := scene.NewBuilder(template, cfg.Phases, cfg.Framerate, markerSymbols(template))
	if err != nil {
		log.Fatalf("[-] Ошибка шаблона: %v", err)
	}

	r := renderer.NewRenderer(cfg.Width, cfg.Height, cfg.FramesDir, builder.Scene())
	if cfg.LicenseURL != "" {
		qr, err := badge.Image(cfg.LicenseURL)
		if err != nil {
			log.Fatalf("[-] Ошибка QR-бейджа: %v", err)
		}
		r.SetBadge(qr)
		fmt.Printf("[*] QR-бейдж: %s\n", cfg.LicenseURL)
	}

	project := engine.NewProject(cfg, r, &video.FFmpegEncoder{})
	if err := project.Run(context.Background()); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// markerSymbols описывает анимацию появления символов лицензии: каждый
// въезжает снизу с прозрачности до полной видимости.
func markerSymbols(template *document.Document) []scene.Symbol {
	_, h := template.Size()
	rise := h / 20

	symbols := make([]scene.Symbol, 0, len(symbolIDs))
	for _, id := range symbolIDs {
		symbols = append(symbols, scene.Symbol{
			NodeID: id,
			Effects: []effects.Effect{
				effects.FadeIn(),
				effects.Slide{OffsetY: rise},
			},
		})
	}
	return symbols
}
