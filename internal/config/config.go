// Package config loads and merges the global and per-project INI settings
// files (spec.md §6 "Configuration") with gopkg.in/ini.v1, the way
// nakst/gf's original gf2_config.ini / .project.gf pair worked, gated by a
// trusted_folders allowlist so an untrusted directory's .project.gf cannot
// silently run commands.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// UI holds the [ui] section (spec.md §6).
type UI struct {
	FontSize int
	Scale    float64
	Layout   string
	Maximize bool
}

// GDB holds the [gdb] section: extra argv and the preferred breakpoint kind.
type GDB struct {
	Arguments       []string
	Path            string
	BreakpointType  string // "software" or "hardware"
}

// Pipe holds the [pipe] section: filesystem paths for the control and log
// FIFOs (spec.md §4.7).
type Pipe struct {
	ControlPath string
	LogPaths    map[string]string // target name -> FIFO path
}

// Vim holds the [vim] section consumed by internal/editorsync.
type Vim struct {
	ServerName string
}

// Config is the merged view of the global and project settings files.
type Config struct {
	UI       UI
	GDB      GDB
	Pipe     Pipe
	Vim      Vim
	Presets  map[string]string // [commands] section, consumed by internal/router
	Theme    map[string]string // [theme] section, colour name -> value
	Shortcuts map[string]string // [shortcuts] section, key chord -> command
}

// Default returns the baked-in defaults applied before any file is loaded.
func Default() *Config {
	return &Config{
		UI:      UI{FontSize: 13, Scale: 1.0, Layout: "", Maximize: false},
		GDB:     GDB{BreakpointType: "software"},
		Pipe:    Pipe{ControlPath: "/tmp/gf_control_pipe", LogPaths: map[string]string{}},
		Presets: map[string]string{},
		Theme:   map[string]string{},
		Shortcuts: map[string]string{},
	}
}

// GlobalPath returns the path of the user-wide settings file,
// $HOME/.config/gf_config.ini.
func GlobalPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gf_config.ini")
}

// ProjectPath returns the path of the per-directory settings file.
func ProjectPath(dir string) string {
	return filepath.Join(dir, ".project.gf")
}

// Loader merges the global config with a project config gated by trust.
type Loader struct {
	globalPath  string
	projectPath string
}

// NewLoader builds a Loader for the given project directory.
func NewLoader(projectDir string) *Loader {
	return &Loader{globalPath: GlobalPath(), projectPath: ProjectPath(projectDir)}
}

// Load reads the global file unconditionally, then folds in the project
// file's [ui]/[gdb]/[commands]/[theme]/[shortcuts]/[pipe]/[vim] sections
// only if its directory appears in the global file's [trusted_folders]
// section (spec.md §6: "a directory gate separate from the settings
// themselves").
func (l *Loader) Load(projectDir string) (*Config, error) {
	cfg := Default()

	global, err := ini.LoadSources(ini.LoadOptions{Loose: true, AllowShadows: true}, l.globalPath)
	if err != nil {
		return nil, err
	}
	applySections(cfg, global)

	trusted := isTrusted(global, projectDir)
	if !trusted {
		return cfg, nil
	}

	if _, err := os.Stat(l.projectPath); err != nil {
		return cfg, nil
	}
	project, err := ini.LoadSources(ini.LoadOptions{Loose: true, AllowShadows: true}, l.projectPath)
	if err != nil {
		return nil, err
	}
	applySections(cfg, project)
	return cfg, nil
}

// IsTrusted reports whether dir is listed in the global config's
// [trusted_folders] section as an absolute-path key.
func (l *Loader) IsTrusted(dir string) bool {
	global, err := ini.LoadSources(ini.LoadOptions{Loose: true, AllowShadows: true}, l.globalPath)
	if err != nil {
		return false
	}
	return isTrusted(global, dir)
}

func isTrusted(f *ini.File, dir string) bool {
	sec := f.Section("trusted_folders")
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	for _, key := range sec.Keys() {
		if key.Name() == abs {
			return true
		}
	}
	return false
}

// Trust appends dir to the global config's [trusted_folders] section and
// rewrites the file, mirroring the original's "add to the list of trusted
// files" prompt response.
func (l *Loader) Trust(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, AllowShadows: true}, l.globalPath)
	if err != nil {
		f = ini.Empty()
	}
	sec, err := f.GetSection("trusted_folders")
	if err != nil {
		sec, err = f.NewSection("trusted_folders")
		if err != nil {
			return err
		}
	}
	sec.NewKey(abs, "")
	if err := os.MkdirAll(filepath.Dir(l.globalPath), 0o755); err != nil {
		return err
	}
	return f.SaveTo(l.globalPath)
}

func applySections(cfg *Config, f *ini.File) {
	if sec, err := f.GetSection("ui"); err == nil {
		if k := sec.Key("font_size"); k.String() != "" {
			cfg.UI.FontSize = k.MustInt(cfg.UI.FontSize)
		}
		if k := sec.Key("scale"); k.String() != "" {
			cfg.UI.Scale = k.MustFloat64(cfg.UI.Scale)
		}
		if k := sec.Key("layout"); k.String() != "" {
			cfg.UI.Layout = k.String()
		}
		if k := sec.Key("maximize"); k.String() != "" {
			cfg.UI.Maximize = k.MustBool(cfg.UI.Maximize)
		}
	}

	if sec, err := f.GetSection("gdb"); err == nil {
		for _, k := range sec.Key("argument").ValueWithShadows() {
			cfg.GDB.Arguments = append(cfg.GDB.Arguments, k)
		}
		if k := sec.Key("path"); k.String() != "" {
			cfg.GDB.Path = k.String()
		}
		if k := sec.Key("breakpoint_type"); k.String() != "" {
			switch k.String() {
			case "software", "hardware":
				cfg.GDB.BreakpointType = k.String()
			}
		}
	}

	if sec, err := f.GetSection("pipe"); err == nil {
		if k := sec.Key("control"); k.String() != "" {
			cfg.Pipe.ControlPath = k.String()
		}
		for _, k := range sec.Keys() {
			if k.Name() == "control" {
				continue
			}
			cfg.Pipe.LogPaths[k.Name()] = k.String()
		}
	}

	if sec, err := f.GetSection("vim"); err == nil {
		if k := sec.Key("servername"); k.String() != "" {
			cfg.Vim.ServerName = k.String()
		}
	}

	if sec, err := f.GetSection("commands"); err == nil {
		for _, k := range sec.Keys() {
			cfg.Presets[k.Name()] = k.Value()
		}
	}

	if sec, err := f.GetSection("theme"); err == nil {
		for _, k := range sec.Keys() {
			cfg.Theme[k.Name()] = k.Value()
		}
	}

	if sec, err := f.GetSection("shortcuts"); err == nil {
		for _, k := range sec.Keys() {
			cfg.Shortcuts[k.Name()] = k.Value()
		}
	}
}
