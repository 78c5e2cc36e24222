package feedclient

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ExtractStatic unpacks a static GTFS zip (as returned by DownloadStatic)
// into dir, overwriting any files already there. Only regular files are
// written, each directly into dir under its base name; directory entries in
// the archive are skipped.
func ExtractStatic(zipBytes []byte, dir string) error {
	r, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return errors.Wrap(err, "open static feed zip")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	for _, f := range r.File {
		destPath := filepath.Join(dir, filepath.Base(f.Name))
		if f.FileInfo().IsDir() {
			continue
		}
		if err := extractOne(f, destPath); err != nil {
			return errors.Wrapf(err, "extract %s", f.Name)
		}
	}
	return nil
}

func extractOne(f *zip.File, destPath string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
