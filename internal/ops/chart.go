package ops

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/splg/internal/chart"
	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
)

// ChartInput contains parameters for the Chart operation.
type ChartInput struct {
	Result *Result
	Format chart.Format // default: png
}

// ChartOutput contains an encoded chart image.
type ChartOutput struct {
	Data        []byte
	Format      chart.Format
	ContentType string
}

// Chart renders the size series of a Result as an encoded image.
// A nil Result means nothing has been generated yet.
func Chart(cfg *config.Config, input ChartInput) (*ChartOutput, error) {
	if input.Result == nil || len(input.Result.Sizes) == 0 {
		return nil, errors.NewNoData()
	}

	format := input.Format
	if format == "" {
		format = chart.FormatPNG
	}

	img, err := chart.Render(input.Result.Sizes, chartOptions(cfg))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := chart.Encode(&buf, img, format); err != nil {
		return nil, err
	}

	return &ChartOutput{
		Data:        buf.Bytes(),
		Format:      format,
		ContentType: format.ContentType(),
	}, nil
}

// SaveChartInput contains parameters for the SaveChart operation.
type SaveChartInput struct {
	Result *Result
	Path   string // optional, default: ~/.splg/charts/sets-<timestamp>.png
}

// SaveChartOutput contains the result of the SaveChart operation.
type SaveChartOutput struct {
	Path    string       `json:"path"`
	Format  chart.Format `json:"format"`
	Bytes   int          `json:"bytes"`
	SavedAt int64        `json:"saved_at"`
}

// SaveChart renders the chart and writes it to a file. The format follows
// the file extension (.png, .jpg, .jpeg, .pdf).
func SaveChart(cfg *config.Config, input SaveChartInput) (*SaveChartOutput, error) {
	now := time.Now()

	if input.Result == nil || len(input.Result.Sizes) == 0 {
		return nil, errors.NewNoData()
	}

	savePath := input.Path
	if savePath == "" {
		var err error
		savePath, err = defaultChartPath(now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default)
	if err := ValidatePath(savePath, cfg); err != nil {
		return nil, err
	}

	format, err := chart.FormatFromPath(savePath)
	if err != nil {
		return nil, err
	}

	out, err := Chart(cfg, ChartInput{Result: input.Result, Format: format})
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(savePath, out.Data); err != nil {
		return nil, err
	}

	return &SaveChartOutput{
		Path:    savePath,
		Format:  format,
		Bytes:   len(out.Data),
		SavedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes data to a temp file next to path, then renames it
// into place so an existing file survives a failed write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create chart directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create chart file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close chart file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("chart destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize chart: %w", err))
	}

	success = true
	return nil
}

// defaultChartPath generates the default chart path.
// Format: ~/.splg/charts/sets-<timestamp>.png
func defaultChartPath(now time.Time) (string, error) {
	dir, err := DefaultChartsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("sets-%s.png", now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}

func chartOptions(cfg *config.Config) chart.Options {
	opts := chart.DefaultOptions()
	if cfg != nil {
		if cfg.ChartWidth > 0 {
			opts.Width = cfg.ChartWidth
		}
		if cfg.ChartHeight > 0 {
			opts.Height = cfg.ChartHeight
		}
	}
	return opts
}
