package app

import (
	"os"
	"path/filepath"
	"runtime"
)

// ServerConfig defines how the HTTP/WebSocket backend should run.
type ServerConfig struct {
	Addr        string
	Path        string
	DBPath      string
	UploadDir   string
	RoomCode    string
	MaxFileSize int64
}

// ClientConfig defines the parameters the TUI client needs.
type ClientConfig struct {
	ServerURL   string
	Username    string
	RoomKey     string
	DownloadDir string
}

// DefaultDBPath returns a per-user data path for the bundled SQLite file.
func DefaultDBPath() string {
	if env := os.Getenv("PING_DB_PATH"); env != "" {
		return env
	}
	if env := os.Getenv("PING_DATA_DIR"); env != "" {
		return filepath.Join(env, "ping.db")
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ping", "ping.db")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Ping", "ping.db")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "Ping", "ping.db")
		}
		return filepath.Join(home, ".local", "share", "ping", "ping.db")
	}
	return filepath.Join(".", ".ping", "ping.db")
}

// DefaultUploadDir returns where the server stashes uploaded payloads.
func DefaultUploadDir() string {
	if env := os.Getenv("PING_UPLOAD_DIR"); env != "" {
		return env
	}
	return filepath.Join(filepath.Dir(DefaultDBPath()), "uploads")
}

// DefaultDownloadDir returns where the client saves fetched files.
func DefaultDownloadDir() string {
	if env := os.Getenv("PING_DOWNLOAD_DIR"); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		downloads := filepath.Join(home, "Downloads")
		if _, err := os.Stat(downloads); err == nil {
			return downloads
		}
		return home
	}
	return "."
}

// NormalizeJoinPath guarantees the websocket join path starts with '/' and
// falls back to /join when empty.
func NormalizeJoinPath(path string) string {
	if path == "" {
		return "/join"
	}
	if path[0] != '/' {
		return "/" + path
	}
	return path
}
