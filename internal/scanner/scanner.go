// internal/scanner/scanner.go

// Package scanner enumerates image-sequence folders under the renders
// root and detects the numbered frame run inside a folder.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrRendersRootMissing indicates the configured renders folder does
// not exist or is not a directory.
var ErrRendersRootMissing = errors.New("renders folder missing")

// Folder describes one candidate image-sequence folder. Folders are
// discovered at scan time and only ever read, never mutated.
type Folder struct {
	Name       string
	Path       string
	FrameCount int
	ModTime    time.Time
}

// Sequence describes the numbered frame run detected inside a folder:
// everything the command builder needs to form an image2 input.
type Sequence struct {
	Dir         string
	Prefix      string
	PadWidth    int
	StartNumber int
	FrameCount  int
	Extension   string
}

// Pattern returns the printf-style input pattern for the sequence,
// e.g. renders/shot01/frame_%04d.jpeg.
func (s Sequence) Pattern() string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s%%0%dd.%s", s.Prefix, s.PadWidth, s.Extension))
}

// Scan lists the immediate subdirectories of root that contain at
// least one file with the given extension. It never recurses. The
// result is sorted by name so repeated scans are deterministic; each
// name appears exactly once. A missing root yields
// ErrRendersRootMissing and an empty result, not a crash.
func Scan(root, extension string) ([]Folder, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRendersRootMissing, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", root, err)
	}

	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		count := countFrames(dir, extension)
		if count == 0 {
			continue
		}
		modTime := time.Time{}
		if fi, err := entry.Info(); err == nil {
			modTime = fi.ModTime()
		}
		folders = append(folders, Folder{
			Name:       entry.Name(),
			Path:       dir,
			FrameCount: count,
			ModTime:    modTime,
		})
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// Latest returns the index of the most recently modified folder, for
// the auto-select-latest behavior. Returns 0 for an empty slice.
func Latest(folders []Folder) int {
	latest := 0
	for i := range folders {
		if folders[i].ModTime.After(folders[latest].ModTime) {
			latest = i
		}
	}
	return latest
}

func countFrames(dir, extension string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	suffix := "." + strings.ToLower(extension)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			count++
		}
	}
	return count
}

// DetectSequence inspects a folder and derives the numbered frame run:
// common prefix, zero-pad width, first frame number and frame count.
// Frames are expected to share one extension and one naming scheme; the
// run belonging to the lexicographically first frame wins if a folder
// somehow mixes schemes.
func DetectSequence(dir, extension string) (Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Sequence{}, fmt.Errorf("reading %s: %v", dir, err)
	}

	suffix := "." + strings.ToLower(extension)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return Sequence{}, fmt.Errorf("no *.%s files found in %s", extension, dir)
	}
	sort.Strings(names)

	first := names[0]
	stem := first[:len(first)-len(suffix)]
	prefix, digits := splitTrailingDigits(stem)
	if digits == "" {
		return Sequence{}, fmt.Errorf("%s does not end in a frame number", first)
	}
	start, err := strconv.Atoi(digits)
	if err != nil {
		return Sequence{}, fmt.Errorf("frame number in %s: %v", first, err)
	}

	count := 0
	for _, name := range names {
		s := name[:len(name)-len(suffix)]
		p, d := splitTrailingDigits(s)
		if p == prefix && len(d) == len(digits) {
			count++
		}
	}

	return Sequence{
		Dir:         dir,
		Prefix:      prefix,
		PadWidth:    len(digits),
		StartNumber: start,
		FrameCount:  count,
		Extension:   strings.ToLower(extension),
	}, nil
}

// splitTrailingDigits splits "frame_0001" into ("frame_", "0001").
func splitTrailingDigits(stem string) (prefix, digits string) {
	i := len(stem)
	for i > 0 && stem[i-1] >= '0' && stem[i-1] <= '9' {
		i--
	}
	return stem[:i], stem[i:]
}
