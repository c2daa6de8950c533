package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"compiler-setup/internal/logger"
)

// ExtractOptions tunes ExtractArchive.
// - StripComponents drops that many leading path elements from every entry,
//   like tar --strip-components. Entries that become empty are skipped.
type ExtractOptions struct {
	StripComponents int
}

// ExtractArchive extracts src into dest and returns the path of the archive's
// top-level directory under dest (dest itself when components are stripped).
// File modes and symlinks are preserved; entries that would land outside dest
// are rejected.
func ExtractArchive(src, dest string, opts ExtractOptions) (string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}

	realDest, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dest, err)
	}

	x := &extraction{dest: dest, realDest: realDest, strip: opts.StripComponents}
	switch {
	case strings.HasSuffix(src, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		err = x.zip(src)
	case strings.HasSuffix(src, ".7z"):
		logger.Debug("[DEBUG] compression type is 7z\n")
		err = x.sevenZip(src)
	case isTarball(src):
		logger.Debug("[DEBUG] compression type is tar.*\n")
		err = x.tarball(src)
	default:
		return "", fmt.Errorf("unsupported archive format: %s", src)
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", src, err)
	}

	if x.strip > 0 || x.topLevel == "" {
		return dest, nil
	}
	return filepath.Join(dest, x.topLevel), nil
}

var tarExts = []string{".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz", ".tar"}

func isTarball(src string) bool {
	for _, ext := range tarExts {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}

// extraction carries per-archive state shared by the format readers.
// realDest is dest with symlinks resolved; containment checks compare
// resolved paths against it.
type extraction struct {
	dest     string
	realDest string
	strip    int
	topLevel string
}

// target maps an archive entry name to its path under dest. ok is false for
// entries that vanish after stripping.
func (x *extraction) target(name string) (string, bool, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false, fmt.Errorf("illegal path in archive: %s", name)
	}
	if clean == "." {
		return "", false, nil
	}
	parts := strings.Split(clean, "/")
	if x.topLevel == "" {
		x.topLevel = parts[0]
	}
	if len(parts) <= x.strip {
		return "", false, nil
	}
	target := filepath.Join(x.dest, filepath.Join(parts[x.strip:]...))
	if !within(x.dest, target) {
		return "", false, fmt.Errorf("illegal path in archive: %s", name)
	}
	// links written by earlier entries may redirect the parent directory
	parent, err := resolveExisting(filepath.Dir(target))
	if err != nil {
		return "", false, err
	}
	if !within(x.realDest, parent) {
		return "", false, fmt.Errorf("illegal path in archive: %s resolves outside the destination", name)
	}
	return target, true, nil
}

// resolveExisting evaluates symlinks in the longest existing prefix of p and
// appends the remaining elements unchanged.
func resolveExisting(p string) (string, error) {
	existing := filepath.Clean(p)
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return p, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}

func (x *extraction) writeDir(target string, mode os.FileMode) error {
	return os.MkdirAll(target, mode.Perm()|0o700)
}

func (x *extraction) writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	// remove first: an earlier partial run may have left a read-only file or
	// a symlink at this path
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (x *extraction) writeSymlink(target, linkname string) error {
	// target's parent was resolved in target(); resolve again so the link is
	// judged from where it will physically live
	parent, err := resolveExisting(filepath.Dir(target))
	if err != nil {
		return err
	}
	resolved := filepath.Clean(linkname)
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(parent, linkname)
	}
	resolved, err = resolveExisting(resolved)
	if err != nil {
		return err
	}
	if !within(x.realDest, resolved) {
		return fmt.Errorf("symlink %s points outside the archive: %s", target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	return os.Symlink(linkname, target)
}

func (x *extraction) writeHardlink(target, linkname string) error {
	source, ok, err := x.target(linkname)
	if err != nil || !ok {
		return fmt.Errorf("invalid hard link %s -> %s", target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Link(source, target)
}

// tarball handles tar and compressed tar variants.
func (x *extraction) tarball(src string) error {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, x.dest)
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tbz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"), strings.HasSuffix(src, ".txz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir, tar.TypeReg, tar.TypeSymlink, tar.TypeLink:
		default:
			// pax global headers, devices, fifos
			logger.Debug("[DEBUG] skipping tar entry %s (type %q)\n", hdr.Name, hdr.Typeflag)
			continue
		}

		target, ok, err := x.target(hdr.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		mode := hdr.FileInfo().Mode()
		switch hdr.Typeflag {
		case tar.TypeDir:
			err = x.writeDir(target, mode)
		case tar.TypeReg:
			err = x.writeFile(target, tr, mode)
		case tar.TypeSymlink:
			err = x.writeSymlink(target, hdr.Linkname)
		case tar.TypeLink:
			err = x.writeHardlink(target, hdr.Linkname)
		}
		if err != nil {
			return err
		}
	}
}

// zip extracts a .zip archive.
func (x *extraction) zip(src string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target, ok, err := x.target(f.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := x.zipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func (x *extraction) zipEntry(f *zip.File, target string) error {
	mode := f.Mode()
	if mode.IsDir() {
		return x.writeDir(target, mode)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
		link, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return x.writeSymlink(target, string(link))
	}
	return x.writeFile(target, rc, mode)
}

// sevenZip handles .7z extraction using the sevenzip library.
func (x *extraction) sevenZip(src string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, ok, err := x.target(f.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := x.writeDir(target, f.Mode()); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = x.writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
