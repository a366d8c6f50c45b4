package matcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultProbeTimeout is the wall-clock budget for a single filesystem probe.
// A probe that exceeds it abandons the remaining work and reports a miss
// rather than blocking the caller.
const DefaultProbeTimeout = 5 * time.Second

// pathHostileRe matches characters that cannot appear in file names on
// common filesystems and are stripped before building search fragments.
var pathHostileRe = regexp.MustCompile(`[<>:"/\\|?*]`)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// Prober checks for a track's existence against on-disk file naming under a
// base path. It is the last-resort tier, invoked only when the index reports
// no match, guarding against an index not yet synchronized with a very recent
// manual file drop.
type Prober struct {
	basePath string
	timeout  time.Duration

	// The base-path existence check is cached: a directory that does not
	// exist once will not exist on the next call within the same process
	// lifetime, and repeated stat syscalls under load are wasted work.
	baseOnce   sync.Once
	baseExists bool
}

// NewProber creates a Prober rooted at basePath. A non-positive timeout
// falls back to [DefaultProbeTimeout].
func NewProber(basePath string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{basePath: basePath, timeout: timeout}
}

// Probe reports whether a file plausibly holding the given track exists under
// the base path. File names are matched case-insensitively against truncated,
// special-character-stripped fragments of title and artist.
func (p *Prober) Probe(title, artist string) bool {
	p.baseOnce.Do(func() {
		info, err := os.Stat(p.basePath)
		p.baseExists = err == nil && info.IsDir()
	})
	if !p.baseExists {
		return false
	}

	titleFrag := searchFragment(title)
	artistFrag := searchFragment(artist)
	if titleFrag == "" {
		return false
	}

	deadline := time.Now().Add(p.timeout)
	found := false

	filepath.WalkDir(p.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if time.Now().After(deadline) {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}

		name := strings.ToLower(d.Name())
		if !audioExtensions[filepath.Ext(name)] {
			return nil
		}
		if strings.Contains(name, titleFrag) && (artistFrag == "" || strings.Contains(name, artistFrag)) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})

	return found
}

// searchFragment strips path-hostile characters and truncates to a short
// lowercase fragment suitable for substring matching against file names.
func searchFragment(s string) string {
	s = pathHostileRe.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	if runes := []rune(s); len(runes) > 15 {
		s = string(runes[:15])
	}
	return strings.TrimSpace(s)
}
