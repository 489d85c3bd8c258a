package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "dotask"
	DefaultConfigFileName = "config.toml"
	DefaultDBPath         = "~/.local/share/dotask/tasks.db"
	DefaultLogPath        = "~/.local/share/dotask/dotask.log"
	DefaultLogLevel       = "info"
	ConfigEnv             = "DOTASK_CONFIG"
)

// Keymap holds one or more comma separated key names per action, in the
// notation of tea.KeyMsg.String.
type Keymap struct {
	Quit           string `toml:"quit"`
	Delete         string `toml:"delete"`
	Unselect       string `toml:"unselect"`
	Next           string `toml:"next"`
	Previous       string `toml:"previous"`
	Add            string `toml:"add"`
	Edit           string `toml:"edit"`
	SortDue        string `toml:"sort_due"`
	SortName       string `toml:"sort_name"`
	SortPriority   string `toml:"sort_priority"`
	Toggle         string `toml:"toggle"`
	FieldDown      string `toml:"field_down"`
	FieldUp        string `toml:"field_up"`
	CursorLeft     string `toml:"cursor_left"`
	CursorRight    string `toml:"cursor_right"`
	Cancel         string `toml:"cancel"`
	Save           string `toml:"save"`
	DeleteBackward string `toml:"delete_backward"`
}

type Config struct {
	DBPath   string `toml:"db_path"`
	LogPath  string `toml:"log_path"`
	LogLevel string `toml:"log_level"`
	Keys     Keymap `toml:"keys"`
}

// ResolveConfigPath picks $DOTASK_CONFIG, then $XDG_CONFIG_HOME/dotask,
// then ~/.config/dotask.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, DefaultConfigFileName)
	}
	home, err := homedir.Dir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Paths in the result have ~ expanded.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.expand()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.Keys = cfg.Keys.withDefaults(Default().Keys)
	return cfg.expand()
}

func (c Config) expand() (Config, error) {
	var err error
	if c.DBPath, err = homedir.Expand(c.DBPath); err != nil {
		return c, err
	}
	if c.LogPath, err = homedir.Expand(c.LogPath); err != nil {
		return c, err
	}
	return c, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		DBPath:   DefaultDBPath,
		LogPath:  DefaultLogPath,
		LogLevel: DefaultLogLevel,
		Keys: Keymap{
			Quit:           "q,ctrl+c",
			Delete:         "x",
			Unselect:       "left",
			Next:           "down",
			Previous:       "up",
			Add:            "a",
			Edit:           "e",
			SortDue:        "d",
			SortName:       "f",
			SortPriority:   "g",
			Toggle:         "enter",
			FieldDown:      "down",
			FieldUp:        "up",
			CursorLeft:     "left",
			CursorRight:    "right",
			Cancel:         "esc",
			Save:           "enter",
			DeleteBackward: "backspace",
		},
	}
}

// withDefaults fills actions missing from a partial [keys] table.
func (k Keymap) withDefaults(d Keymap) Keymap {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Quit, d.Quit)
	fill(&k.Delete, d.Delete)
	fill(&k.Unselect, d.Unselect)
	fill(&k.Next, d.Next)
	fill(&k.Previous, d.Previous)
	fill(&k.Add, d.Add)
	fill(&k.Edit, d.Edit)
	fill(&k.SortDue, d.SortDue)
	fill(&k.SortName, d.SortName)
	fill(&k.SortPriority, d.SortPriority)
	fill(&k.Toggle, d.Toggle)
	fill(&k.FieldDown, d.FieldDown)
	fill(&k.FieldUp, d.FieldUp)
	fill(&k.CursorLeft, d.CursorLeft)
	fill(&k.CursorRight, d.CursorRight)
	fill(&k.Cancel, d.Cancel)
	fill(&k.Save, d.Save)
	fill(&k.DeleteBackward, d.DeleteBackward)
	return k
}
