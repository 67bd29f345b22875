package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// EncodeParams описывает одну сборку видео из последовательности кадров.
type EncodeParams struct {
	Framerate float64
	Width     int
	Height    int
	// Pattern is the ffmpeg input pattern locating the frame sequence,
	// e.g. frames/%06d.png.
	Pattern string
	Output  string

	VideoEncoder string
	Quality      int

	// Timeout bounds the encoder process; zero means no limit.
	Timeout time.Duration
}

// Encoder собирает итоговое видео из записанных кадров.
type Encoder interface {
	Encode(ctx context.Context, params EncodeParams) error
}

// FFmpegEncoder запускает системный ffmpeg и ждет его завершения.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Encode(ctx context.Context, params EncodeParams) error {
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", BuildArgs(params)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ffmpeg не уложился в таймаут %s", params.Timeout)
		}
		return fmt.Errorf("ffmpeg error: %v, output: %s", err, string(out))
	}

	// Нулевой код выхода не гарантирует, что файл действительно записан.
	info, err := os.Stat(params.Output)
	if err != nil {
		return fmt.Errorf("ffmpeg завершился успешно, но файл не создан: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg записал пустой файл %s", params.Output)
	}
	return nil
}

// BuildArgs формирует аргументы ffmpeg для склейки кадров.
func BuildArgs(params EncodeParams) []string {
	encoder := params.VideoEncoder
	if encoder == "" {
		encoder = "libx264"
	}

	args := []string{
		"-framerate", strconv.FormatFloat(params.Framerate, 'f', -1, 64),
		"-s", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-i", params.Pattern,
		"-y",
		"-vcodec", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		bitrate := params.Quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(params.Quality))
	default: // libx264
		args = append(args, "-crf", strconv.Itoa(params.Quality))
	}

	args = append(args, "-pix_fmt", "yuv420p", params.Output)
	return args
}
