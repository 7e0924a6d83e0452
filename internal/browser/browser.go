// Package browser lists directories and audio files for the TUI's file
// picker. It is an external collaborator: it never touches engine state
// and produces nothing but file paths that become the argument of a
// Load/AddToQueue command.
package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"audido/internal/audio"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SupportedExtensions are the audio file extensions the browser surfaces
// alongside directories; anything else is filtered out.
var SupportedExtensions = []string{"mp3", "wav", "flac", "ogg", "m4a", "aac"}

// FileEntry is one row the browser lists: either a directory to descend
// into or a supported audio file.
type FileEntry struct {
	Name  string
	Path  string
	IsDir bool
}

func isSupported(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

type cacheEntry struct {
	modTime  time.Time
	metadata audio.Metadata
}

// Browser lists directory contents and memoizes probed file metadata so
// re-visiting a directory in the same session does not re-decode headers
// for files already seen.
type Browser struct {
	cache *lru.Cache[string, cacheEntry]
}

// New returns a Browser with a bounded metadata cache of the given size.
func New(cacheSize int) *Browser {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	c, _ := lru.New[string, cacheEntry](cacheSize)
	return &Browser{cache: c}
}

// List returns the directories and supported audio files in dir, sorted
// directories-first then case-insensitive alphabetically, with a
// synthesized ".." parent entry prepended. An empty dir lists the virtual
// root (filesystem roots).
func (b *Browser) List(dir string) ([]FileEntry, error) {
	if dir == "" {
		return systemRoots(), nil
	}

	raw, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]FileEntry, 0, len(raw))
	for _, d := range raw {
		isDir := d.IsDir()
		if !isDir && !isSupported(d.Name()) {
			continue
		}
		entries = append(entries, FileEntry{
			Name:  d.Name(),
			Path:  filepath.Join(dir, d.Name()),
			IsDir: isDir,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	parent := filepath.Dir(dir)
	if parent == dir {
		parent = ""
	}
	entries = append([]FileEntry{{Name: "..", Path: parent, IsDir: true}}, entries...)
	return entries, nil
}

// systemRoots lists the entry points of the virtual root: filesystem
// roots on Windows, "/" everywhere else.
func systemRoots() []FileEntry {
	if runtime.GOOS != "windows" {
		return []FileEntry{{Name: "/", Path: "/", IsDir: true}}
	}
	var roots []FileEntry
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if _, err := os.Stat(root); err == nil {
			roots = append(roots, FileEntry{Name: root, Path: root, IsDir: true})
		}
	}
	return roots
}

// Probe returns metadata for path, decoding it only if the cache is
// missing an entry or the file's modification time has changed since it
// was cached.
func (b *Browser) Probe(path string) (audio.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return audio.Metadata{}, err
	}

	if cached, ok := b.cache.Get(path); ok && cached.modTime.Equal(info.ModTime()) {
		return cached.metadata, nil
	}

	payload, err := audio.DecodeFile(path)
	if err != nil {
		return audio.Metadata{}, err
	}
	b.cache.Add(path, cacheEntry{modTime: info.ModTime(), metadata: payload.Metadata})
	return payload.Metadata, nil
}
