package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saharsh3008/task/internal/storage"
)

const entrySuffix = ".json"

// Backup writes the value of every present key to a tar.gz archive, one
// "<key>.json" entry per key. Keys missing from the backend are skipped.
// It returns the keys that were archived.
func Backup(ctx context.Context, b storage.Backend, keys []string, archivePath string) ([]string, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return nil, fmt.Errorf("archivePath is required")
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	written := []string{}
	for _, key := range keys {
		val, err := b.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		hdr := &tar.Header{
			Name:     key + entrySuffix,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(val)),
			ModTime:  time.Now().UTC(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write(val); err != nil {
			return nil, err
		}
		written = append(written, key)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return written, f.Close()
}

// Restore puts every entry of the archive into b and returns the restored
// keys. Entries that are not flat "<key>.json" files are rejected.
func Restore(ctx context.Context, archivePath string, b storage.Backend) ([]string, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return nil, fmt.Errorf("archivePath is required")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	restored := []string{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			// Ignore unsupported entry types.
			continue
		}

		key, err := sanitizeArchiveKey(hdr.Name)
		if err != nil {
			return nil, err
		}
		val, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		if err := b.Put(ctx, key, val); err != nil {
			return nil, fmt.Errorf("write %s: %w", key, err)
		}
		restored = append(restored, key)
	}
	return restored, nil
}

func sanitizeArchiveKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || !strings.HasSuffix(name, entrySuffix) {
		return "", fmt.Errorf("invalid archive entry: %q", name)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid archive entry path: %s", name)
	}
	key := strings.TrimSuffix(name, entrySuffix)
	if key == "" {
		return "", fmt.Errorf("invalid archive entry: %q", name)
	}
	return key, nil
}

// Digest hashes the values of keys in sorted key order. Missing keys hash
// as absent, so two backends with the same data produce the same digest.
func Digest(ctx context.Context, b storage.Backend, keys []string) (string, error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, key := range sorted {
		val, err := b.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		_, _ = io.WriteString(h, key)
		_, _ = io.WriteString(h, "\n")
		_, _ = h.Write(val)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type DrillReport struct {
	Archive string
	Keys    []string
	Digest  string
}

// Drill backs up keys to workDir, restores the archive into a scratch
// in-memory backend and checks both digests match.
func Drill(ctx context.Context, b storage.Backend, keys []string, workDir string, now time.Time) (DrillReport, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillReport{}, err
	}
	archive := filepath.Join(workDir, "taskdeck-drill-"+now.UTC().Format("20060102T150405Z")+".tar.gz")

	written, err := Backup(ctx, b, keys, archive)
	if err != nil {
		return DrillReport{}, err
	}
	scratch := storage.NewMemoryBackend()
	if _, err := Restore(ctx, archive, scratch); err != nil {
		return DrillReport{}, err
	}

	srcDigest, err := Digest(ctx, b, keys)
	if err != nil {
		return DrillReport{}, err
	}
	restoredDigest, err := Digest(ctx, scratch, keys)
	if err != nil {
		return DrillReport{}, err
	}
	if srcDigest != restoredDigest {
		return DrillReport{}, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoredDigest)
	}
	return DrillReport{Archive: archive, Keys: written, Digest: srcDigest}, nil
}
