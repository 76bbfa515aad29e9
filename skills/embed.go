package skills

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/actskill/skill"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var AssetsFS embed.FS

// Store resolves asset and script names against directories on disk first
// and falls back to the copies embedded in the binary.
type Store struct {
	AssetDir  string
	ScriptDir string
}

// Default looks in ./skills and ./skills/scripts.
var Default = Store{AssetDir: "skills", ScriptDir: filepath.Join("skills", "scripts")}

func Load(name string) ([]byte, error)                      { return Default.Load(name) }
func LoadScript(name string) ([]byte, error)                { return Default.LoadScript(name) }
func ModTime(name string) (time.Time, bool)                 { return Default.ModTime(name) }
func LoadMachine(name string) (*skill.MachineConfig, error) { return Default.LoadMachine(name) }

func (s Store) Load(name string) ([]byte, error) {
	clean := cleanAssetPath(name)
	if s.AssetDir != "" {
		if data, err := os.ReadFile(filepath.Join(s.AssetDir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	return AssetsFS.ReadFile(clean)
}

func (s Store) LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if s.ScriptDir != "" {
		disk := filepath.Join(s.ScriptDir, filepath.FromSlash(strings.TrimPrefix(clean, "scripts/")))
		if data, err := os.ReadFile(disk); err == nil {
			return data, nil
		}
	}
	return ScriptsFS.ReadFile(clean)
}

// ModTime reports the on-disk modification time of an asset. Embedded-only
// assets report false.
func (s Store) ModTime(name string) (time.Time, bool) {
	if s.AssetDir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(filepath.Join(s.AssetDir, filepath.FromSlash(cleanAssetPath(name))))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// LoadMachine loads and decodes one asset.
func (s Store) LoadMachine(name string) (*skill.MachineConfig, error) {
	data, err := s.Load(name)
	if err != nil {
		return nil, fmt.Errorf("skills: load %s: %w", name, err)
	}
	return DecodeNamed(name, data)
}

// EmbeddedNames lists the embedded assets in sorted order.
func EmbeddedNames() []string {
	names, _ := fs.Glob(AssetsFS, "*.yaml")
	sort.Strings(names)
	return names
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "skills/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "skills/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "skills/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}
