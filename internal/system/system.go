package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 4096
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

// DefaultWorkers подбирает число потоков рендеринга: логические ядра,
// но не больше, чем позволяет доступная память при данном размере кадра.
// На каждый поток закладываем примерно четыре кадровых буфера (холст,
// оверлей и запас на кодирование PNG).
func DefaultWorkers(width, height int) int {
	workers := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		workers = counts
	}

	frameBytes := uint64(width) * uint64(height) * 4
	if frameBytes == 0 {
		return workers
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		byMemory := int(vm.Available / (frameBytes * 4))
		if byMemory < 1 {
			byMemory = 1
		}
		if byMemory < workers {
			log.Printf("[!] Потоки ограничены памятью: %d вместо %d", byMemory, workers)
			workers = byMemory
		}
	}

	return workers
}

// CheckFFmpeg проверяет, что ffmpeg доступен в PATH.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg не найден в PATH: %w", err)
	}
	return nil
}

// GetBestH264Encoder возвращает имя лучшего доступного h264-энкодера.
func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// FindLatestSVG ищет самый свежий svg-файл в указанной директории.
func FindLatestSVG(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".svg") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено svg-файлов", dir)
	}

	return latestFile, nil
}
