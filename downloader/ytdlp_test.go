package downloader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adampisula/musicdl-server/apperr"
)

func TestYtDlp_DownloadBuildsUniqueTempPath(t *testing.T) {
	// "true" exits 0 without writing anything, which is enough to exercise
	// the invocation and path handling.
	d := New("true", t.TempDir())

	first, err := d.Download(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	second, err := d.Download(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if !strings.HasSuffix(first, "."+AudioFormat) {
		t.Errorf("Download() path %q does not end in .%s", first, AudioFormat)
	}
	if first == second {
		t.Errorf("Download() reused temp path %q", first)
	}
}

func TestYtDlp_DownloadNonZeroExit(t *testing.T) {
	d := New("false", t.TempDir())

	_, err := d.Download(context.Background(), "https://youtu.be/abc")

	var downloadErr *apperr.DownloadError
	if !errors.As(err, &downloadErr) {
		t.Fatalf("Download() error = %v, want DownloadError", err)
	}
	if downloadErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", downloadErr.ExitCode)
	}
}

func TestYtDlp_DownloadSpawnFailure(t *testing.T) {
	d := New("definitely-not-a-real-executable", t.TempDir())

	_, err := d.Download(context.Background(), "https://youtu.be/abc")

	var downloadErr *apperr.DownloadError
	if !errors.As(err, &downloadErr) {
		t.Fatalf("Download() error = %v, want DownloadError", err)
	}
	if downloadErr.Err == nil {
		t.Error("DownloadError.Err should carry the spawn error")
	}
}

func TestYtDlp_IsAvailable(t *testing.T) {
	if !New("true", "").IsAvailable() {
		t.Error("IsAvailable() = false for a real executable")
	}
	if New("definitely-not-a-real-executable", "").IsAvailable() {
		t.Error("IsAvailable() = true for a missing executable")
	}
}
