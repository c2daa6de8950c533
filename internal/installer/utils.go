package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"github.com/mattn/go-isatty"

	"compiler-setup/internal/logger"
)

// downloadFile fetches url into destPath. The body is written to
// destPath+".part" and renamed on success, so an interrupted download never
// leaves a file that the next run would mistake for a cached payload.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, progress io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid download URL %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	partPath := destPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", partPath, err)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = io.TeeReader(resp.Body, newProgressPrinter(progress, resp.ContentLength))
	}
	written, err := io.Copy(out, body)
	if progress != nil {
		fmt.Fprintln(progress)
	}
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", partPath, err)
	}
	if err := os.Rename(partPath, destPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", partPath, err)
	}

	logger.Info("[INFO] Downloaded %s (%s)\n", destPath, units.HumanSize(float64(written)))
	return nil
}

// progressPrinter renders "\r<done> / <total>" at most a few times a second.
type progressPrinter struct {
	out     io.Writer
	total   int64
	written int64
	last    time.Time
}

func newProgressPrinter(out io.Writer, total int64) *progressPrinter {
	return &progressPrinter{out: out, total: total}
}

func (p *progressPrinter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	now := time.Now()
	if now.Sub(p.last) < 200*time.Millisecond && p.written != p.total {
		return len(b), nil
	}
	p.last = now

	if p.total > 0 {
		fmt.Fprintf(p.out, "\r  %s / %s (%d%%)   ", units.HumanSize(float64(p.written)),
			units.HumanSize(float64(p.total)), p.written*100/p.total)
	} else {
		fmt.Fprintf(p.out, "\r  %s   ", units.HumanSize(float64(p.written)))
	}
	return len(b), nil
}

// terminalProgress returns stdout when it is a terminal and nil otherwise, so
// redirected logs do not fill up with carriage-return progress lines.
func terminalProgress() io.Writer {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return os.Stdout
	}
	return nil
}

// copyFile copies a file from src to dst, preserving permissions.
// It creates any missing directories in the destination path.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stat.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	return os.Chmod(dst, stat.Mode().Perm())
}

// exists reports whether path exists, following symlinks.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isDir reports whether path is an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// replaceDir moves src to dst, first removing whatever is at dst.
func replaceDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}
	return nil
}
