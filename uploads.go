package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

// storeUpload copies r into dir/<uuid>/<name> and checks that it loads as a
// discharge file. On success the cache is switched to the new file and the
// loaded Dataset is returned; on any failure the upload directory is removed
// again.
func storeUpload(dir, name string, r io.Reader, opts pipeline.Options, cache *pipeline.Cache, log zerolog.Logger) (*models.Dataset, error) {
	id := uuid.NewV4().String()
	uploadDir := filepath.Join(dir, id)
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	filePath := filepath.Join(uploadDir, filepath.Base(name))
	file, err := os.Create(filePath)
	if err != nil {
		os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	_, err = io.Copy(file, r)
	file.Close()
	if err != nil {
		os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	ds, err := pipeline.Load(filePath, opts)
	if err == nil {
		err = cache.Replace(ds)
	}
	if err != nil {
		os.RemoveAll(uploadDir)
		return nil, err
	}
	log.Info().
		Str("upload_id", id).
		Str("source", filePath).
		Int("rows", ds.Len()).
		Msg("data source replaced")
	return ds, nil
}

// removeOldFiles deletes files under dirPath modified before maxAge, skipping
// keep (the active source). A directory left empty is removed only when it
// is itself older than maxAge or this pass emptied it, so an upload dir
// created a moment ago survives until its file is written.
func removeOldFiles(dirPath string, maxAge time.Time, keep string, log zerolog.Logger) error {
	_, err := removeOld(dirPath, maxAge, keep, log)
	return err
}

func removeOld(dirPath string, maxAge time.Time, keep string, log zerolog.Logger) (int, error) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())
		info, err := file.Info()
		if err != nil {
			return removed, err
		}

		if file.IsDir() {
			n, err := removeOld(filePath, maxAge, keep, log)
			removed += n
			if err != nil {
				return removed, err
			}
			if n == 0 && !info.ModTime().Before(maxAge) {
				continue
			}
			if rest, err := os.ReadDir(filePath); err == nil && len(rest) == 0 {
				if os.Remove(filePath) == nil {
					removed++
				}
			}
			continue
		}
		if filePath == keep {
			continue
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return removed, err
			}
			removed++
			log.Info().Str("file", filePath).Msg("removed old upload")
		}
	}

	return removed, nil
}
