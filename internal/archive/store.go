package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Store keeps copies of produced archives.
type Store interface {
	// Save stores data under name and returns where it was written.
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// ObjectName names the n-th archive produced at t.
func ObjectName(t time.Time, n uint64) string {
	return fmt.Sprintf("exports/%s_%d.zip", t.UTC().Format("20060102T150405Z"), n)
}

// dirStore implements Store on the local file system.
type dirStore struct {
	dir    string
	logger zerolog.Logger
}

// NewDirStore creates a store writing below dir.
func NewDirStore(dir string, logger zerolog.Logger) Store {
	return &dirStore{
		dir:    dir,
		logger: logger.With().Str("component", "archive-dir-store").Logger(),
	}
}

func (s *dirStore) Save(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to create archive directory")
		return "", fmt.Errorf("failed to create archive directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write archive")
		return "", fmt.Errorf("failed to write archive %s: %w", path, err)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("archive saved")
	return path, nil
}

// fallbackStore tries S3 first, then falls back to the local file system.
type fallbackStore struct {
	s3Store   Store
	dirStore  Store
	s3Prefix  string
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that tries S3 first, then falls back to
// dirStore. Either store may be nil.
func NewFallbackStore(s3Store, dirStore Store, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3Store:   s3Store,
		dirStore:  dirStore,
		s3Prefix:  s3Prefix,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "archive-fallback-store").Logger(),
	}
}

// Save prepends the S3 prefix for the S3 attempt and uses name as-is locally.
func (s *fallbackStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.s3Enabled && s.s3Store != nil {
		key := s.s3Prefix + name

		location, err := s.s3Store.Save(ctx, key, data)
		if err == nil {
			return location, nil
		}

		s.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Msg("failed to save to S3, falling back to local file system")
	}

	if s.dirStore == nil {
		return "", fmt.Errorf("no archive store available for %s", name)
	}

	return s.dirStore.Save(ctx, name, data)
}
