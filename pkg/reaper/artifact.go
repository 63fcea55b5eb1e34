package reaper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/models"
)

// Extensions are tried in this order; the first existing file is removed.
var Extensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}

// Default media directories
const (
	DefaultMoviesDir = "public/videos/movies"
	DefaultSeriesDir = "public/videos/series"
)

// Directories are the base directories media files live in
type Directories struct {
	Movies string `json:"movies_dir" yaml:"movies_dir"`
	Series string `json:"series_dir" yaml:"series_dir"`
}

// DefaultDirectories returns the default media directories
func DefaultDirectories() Directories {
	return Directories{Movies: DefaultMoviesDir, Series: DefaultSeriesDir}
}

// For returns the base directory of a title kind. Series have their own
// directory; every other kind uses the movies directory.
func (d Directories) For(kind models.TitleKind) string {
	if kind == models.KindSeries {
		if d.Series == "" {
			return DefaultSeriesDir
		}
		return d.Series
	}
	if d.Movies == "" {
		return DefaultMoviesDir
	}
	return d.Movies
}

// Reclaimer removes the media file of a title
type Reclaimer struct {
	fs   Filesystem
	dirs Directories
}

// NewReclaimer creates a reclaimer. fsys may be nil to use the local disk.
func NewReclaimer(fsys Filesystem, dirs Directories) *Reclaimer {
	if fsys == nil {
		fsys = OSFilesystem{}
	}
	return &Reclaimer{fs: fsys, dirs: dirs}
}

// Reclaim removes <dir>/<ref><ext> for the first extension that exists and
// returns its path, or "" when nothing matched. A file that disappears before
// it can be removed is not an error; any other removal error is returned.
func (r *Reclaimer) Reclaim(ctx context.Context, ref string, kind models.TitleKind) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !safeRef(ref) {
		logging.Ctx(ctx).Warn().Str("artifact_ref", ref).Msg("artifact reference escapes media directory, not probing")
		return "", nil
	}

	base := r.dirs.For(kind)
	for _, ext := range Extensions {
		path := filepath.Join(base, ref+ext)
		if !r.fs.Exists(path) {
			continue
		}

		if err := r.fs.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logging.Ctx(ctx).Debug().Str("path", path).Msg("artifact vanished before removal")
				return "", nil
			}
			return "", fmt.Errorf("remove artifact %s: %w", path, err)
		}

		ArtifactsReclaimedTotal.WithLabelValues(ext).Inc()
		logging.Ctx(ctx).Debug().Str("path", path).Msg("artifact removed")
		return path, nil
	}

	return "", nil
}

// safeRef rejects references that would leave the base directory
func safeRef(ref string) bool {
	if strings.ContainsAny(ref, `/\`) {
		return false
	}
	return ref != ".." && ref != "."
}
