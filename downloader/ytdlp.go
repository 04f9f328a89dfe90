// Package downloader wraps the external yt-dlp executable for audio
// extraction.
package downloader

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/logger"
)

// AudioFormat is the output codec yt-dlp is asked to produce.
const AudioFormat = "mp3"

// YtDlp invokes yt-dlp with a fixed flag set: extract audio, best quality,
// fixed codec, unique temporary output path.
type YtDlp struct {
	execPath string
	tempPath string
}

// New creates a yt-dlp downloader writing into tempPath.
func New(execPath, tempPath string) *YtDlp {
	return &YtDlp{
		execPath: execPath,
		tempPath: tempPath,
	}
}

// IsAvailable reports whether the yt-dlp executable can be found.
func (d *YtDlp) IsAvailable() bool {
	_, err := exec.LookPath(d.execPath)
	return err == nil
}

// Download extracts the audio behind the URL into a freshly generated
// temporary file and returns its path. The caller owns deleting the file on
// every later path, success or failure.
func (d *YtDlp) Download(ctx context.Context, url string) (string, error) {
	fileName := uuid.NewString() + "." + AudioFormat
	outFilePath := filepath.Join(d.tempPath, fileName)

	cmd := exec.CommandContext(ctx, d.execPath,
		"-x",
		"--audio-format", AudioFormat,
		"--audio-quality", "0", // best
		"-o", outFilePath,
		url,
	)

	logger.Debug("Running yt-dlp",
		zap.String("url", url),
		zap.String("output", outFilePath))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &apperr.DownloadError{ExitCode: exitErr.ExitCode()}
		}
		return "", &apperr.DownloadError{Err: err}
	}

	return outFilePath, nil
}
