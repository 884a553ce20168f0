package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/types"
)

// FileStore manages the on-disk song blobs, addressed by the relative path
// the catalog manifest assigned to each song (typically Artist/Album/Song.ext).
type FileStore struct {
	root string
	log  zerolog.Logger
}

// NewFileStore creates a file store rooted at root, creating it if needed.
func NewFileStore(root string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &FileStore{root: root, log: log}, nil
}

// Root returns the store's root directory.
func (fs *FileStore) Root() string { return fs.root }

// ValidateRelPath rejects path traversal, absolute paths and empty paths.
func ValidateRelPath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("absolute paths not allowed")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path not allowed")
	}
	return nil
}

// Abs resolves a validated relative path against the store root.
func (fs *FileStore) Abs(rel string) (string, error) {
	if err := ValidateRelPath(rel); err != nil {
		return "", err
	}
	return filepath.Join(fs.root, filepath.FromSlash(rel)), nil
}

// Exists reports whether a song file is present at rel.
func (fs *FileStore) Exists(rel string) bool {
	abs, err := fs.Abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Place moves the file at src into the store at rel, creating intermediate
// directories and overwriting any stale partial at the destination.
func (fs *FileStore) Place(src, rel string) error {
	dst, err := fs.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", rel, err)
	}

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across filesystems; fall back to copy.
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to place %s: %w", rel, err)
		}
		os.Remove(src)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Remove deletes the song file at rel and prunes any directories it leaves
// empty, up to the store root.
func (fs *FileStore) Remove(rel string) error {
	abs, err := fs.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove %s: %w", rel, err)
	}

	for dir := filepath.Dir(abs); dir != fs.root; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break // not empty, or already gone
		}
	}
	return nil
}

// Clear deletes every file and directory under the store root, keeping the
// root itself.
func (fs *FileStore) Clear() error {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return fmt.Errorf("failed to read media directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(fs.root, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear media directory: %w", err)
		}
	}
	return nil
}

// List walks the store and returns every file present, with probed metadata.
func (fs *FileStore) List() ([]types.StoredFile, error) {
	var files []types.StoredFile
	err := filepath.Walk(fs.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fs.log.Warn().Err(err).Str("path", path).Msg("error accessing path during scan")
			return nil // keep walking
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(fs.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		files = append(files, types.StoredFile{
			Path:     rel,
			Size:     info.Size(),
			Metadata: fs.ProbeMetadata(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ProbeMetadata reads the tags of a stored song file. Unreadable files or
// tags degrade to metadata derived from the relative path; this never fails
// hard.
func (fs *FileStore) ProbeMetadata(rel string) *types.AudioMetadata {
	abs, err := fs.Abs(rel)
	if err != nil {
		return nil
	}

	f, err := os.Open(abs)
	if err != nil {
		fs.log.Debug().Err(err).Str("path", rel).Msg("could not open file for tag probe")
		return MetadataFromPath(rel)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		fs.log.Debug().Err(err).Str("path", rel).Msg("could not parse audio tags")
		return MetadataFromPath(rel)
	}

	md := &types.AudioMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	md.TrackNumber, _ = meta.Track()

	if md.Title == "" || md.Artist == "" || md.Album == "" {
		fallback := MetadataFromPath(rel)
		if md.Title == "" {
			md.Title = fallback.Title
		}
		if md.Artist == "" {
			md.Artist = fallback.Artist
		}
		if md.Album == "" {
			md.Album = fallback.Album
		}
	}
	return md
}

// MetadataFromPath derives metadata from an Artist/Album/Title.ext relative
// path, used when a file's tags cannot be read.
func MetadataFromPath(rel string) *types.AudioMetadata {
	md := &types.AudioMetadata{}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) >= 3 {
		md.Artist = parts[len(parts)-3]
	}
	if len(parts) >= 2 {
		md.Album = parts[len(parts)-2]
	}
	name := parts[len(parts)-1]
	md.Title = strings.TrimSuffix(name, filepath.Ext(name))
	return md
}
