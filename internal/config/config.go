package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/codefionn/tcpresponder/internal/consts"
)

const appName = "tcpresponder"

// ErrInvalidBufferSize is returned by Validate for a non-positive read buffer
var ErrInvalidBufferSize = errors.New("invalid read buffer size")

// Config represents application configuration
type Config struct {
	Host           string `json:"host"`
	Port           uint16 `json:"port"` // 0 picks a free port
	HexMode        bool   `json:"hex_mode"`
	ReadBufferSize int    `json:"read_buffer_size"`
	StyledOutput   bool   `json:"styled_output"` // only honored when stdout is a terminal
	LogLevel       string `json:"log_level"`     // debug, info, warn, error, none
	LogPath        string `json:"-"`
	PidPath        string `json:"pid_path,omitempty"` // empty disables the PID file
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", appName)
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", appName)
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", appName)
	default:
		return defaultConfigDir()
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:           consts.DefaultHost,
		Port:           consts.DefaultPort,
		HexMode:        false,
		ReadBufferSize: consts.DefaultReadBufferSize,
		StyledOutput:   true,
		LogLevel:       "info",
		LogPath:        filepath.Join(defaultStateDir(), appName+".log"),
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	// Unmarshal into default config (overrides only provided fields)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if config.Host == "" {
		config.Host = consts.DefaultHost
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.ReadBufferSize == 0 {
		config.ReadBufferSize = consts.DefaultReadBufferSize
	}

	return config, nil
}

// ApplyEnv lets environment variables override logging settings.
func (c *Config) ApplyEnv() {
	if envLevel := strings.TrimSpace(os.Getenv("TCPRESPONDER_LOG_LEVEL")); envLevel != "" {
		c.LogLevel = envLevel
	}
	if envPath := strings.TrimSpace(os.Getenv("TCPRESPONDER_LOG_PATH")); envPath != "" {
		c.LogPath = envPath
	}
}

// Validate checks the values the listener depends on. Port 0 is valid and
// lets the system pick a free port.
func (c *Config) Validate() error {
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, c.ReadBufferSize)
	}
	return nil
}

// Address returns host:port for the listener.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}
