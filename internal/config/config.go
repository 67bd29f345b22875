package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Config собирается в cmd из флагов и передается движку уже проверенной.
type Config struct {
	InputSVG    string
	OutputVideo string
	FramesDir   string
	KeepFrames  bool

	Width     int
	Height    int
	Framerate float64

	Phases Phases

	Workers int

	LicenseURL string

	VideoEncoder  string
	Quality       int
	EncodeTimeout time.Duration

	ShowStats    bool
	BuildVersion string
}

// Phases описывает фазы анимации в секундах. Все значения неотрицательные.
type Phases struct {
	Delay    float64 `yaml:"delay"`    // intro blank
	Interval float64 `yaml:"interval"` // stagger between symbols
	Entry    float64 `yaml:"entry"`    // per-symbol entry animation
	Sustain  float64 `yaml:"sustain"`  // symbols held on screen
	Fade     float64 `yaml:"fade"`     // fade to blank
	Leave    float64 `yaml:"leave"`    // outro blank
}

// TotalSeconds is the clip length on the wall clock. Interval and Entry nest
// inside Sustain and do not extend the clip.
func (p Phases) TotalSeconds() float64 {
	return p.Delay + p.Sustain + p.Fade + p.Leave
}

// FrameCount derives the number of frames for the given framerate.
func (p Phases) FrameCount(framerate float64) int {
	return int(math.Ceil(p.TotalSeconds() * framerate))
}

// Validate проверяет фазы на отрицательные значения.
func (p Phases) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"delay", p.Delay},
		{"interval", p.Interval},
		{"entry", p.Entry},
		{"sustain", p.Sustain},
		{"fade", p.Fade},
		{"leave", p.Leave},
	} {
		if v.value < 0 {
			return fmt.Errorf("фаза %s отрицательная: %f", v.name, v.value)
		}
	}
	return nil
}

// ParseResolution разбирает строку вида "1920x1080".
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("разрешение должно быть в формате WIDTHxHEIGHT, получено %q", s)
	}
	width, errW := strconv.Atoi(parts[0])
	height, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("некорректное разрешение %q", s)
	}
	return width, height, nil
}

// Validate проверяет конфигурацию целиком.
func (c *Config) Validate() error {
	if c.InputSVG == "" {
		return fmt.Errorf("не задан входной svg")
	}
	if c.OutputVideo == "" {
		return fmt.Errorf("не задан путь к видео")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("некорректное разрешение %dx%d", c.Width, c.Height)
	}
	if c.Framerate <= 0 {
		return fmt.Errorf("fps должен быть положительным, получено %f", c.Framerate)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("число потоков должно быть положительным")
	}
	if err := c.Phases.Validate(); err != nil {
		return err
	}
	if c.Phases.FrameCount(c.Framerate) == 0 {
		return fmt.Errorf("нулевая длительность видео: проверьте фазы")
	}
	return nil
}
