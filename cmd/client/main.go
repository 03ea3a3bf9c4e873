package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/johannaefageras/ping/internal/app"
)

func main() {
	defaultServer := envOrDefault("PING_SERVER", "ws://localhost:8080/join")
	defaultUser := envOrDefault("PING_USER", "")

	serverJoinURL := flag.String("server", defaultServer, "WebSocket join URL (e.g., ws://localhost:8080/join)")
	username := flag.String("user", defaultUser, "display name shown to the other side")
	downloadDir := flag.String("download-dir", envOrDefault("PING_DOWNLOAD_DIR", ""), "directory for fetched files")
	flag.Parse()

	args := flag.Args()
	var roomKey string
	if len(args) >= 1 {
		roomKey = args[0]
	}

	cfg := app.ClientConfig{
		ServerURL:   *serverJoinURL,
		RoomKey:     roomKey,
		Username:    *username,
		DownloadDir: *downloadDir,
	}

	if err := app.RunClient(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
