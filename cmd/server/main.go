package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/johannaefageras/ping/internal/app"
)

func main() {
	addr := flag.String("addr", envOrDefault("PING_ADDR", ":8080"), "server listen address")
	path := flag.String("path", envOrDefault("PING_PATH", "/join"), "websocket join path")
	db := flag.String("db", envOrDefault("PING_DB_PATH", ""), "sqlite database path")
	uploadDir := flag.String("upload-dir", envOrDefault("PING_UPLOAD_DIR", ""), "directory for uploaded files")
	roomCode := flag.String("room-code", envOrDefault("PING_ROOM_CODE", ""), "room code clients must present (empty runs open)")
	flag.Parse()

	cfg := app.ServerConfig{
		Addr:      *addr,
		Path:      app.NormalizeJoinPath(*path),
		DBPath:    *db,
		UploadDir: *uploadDir,
		RoomCode:  *roomCode,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = app.DefaultDBPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle, err := app.RunServer(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Ping server listening on %s%s (db %s)", handle.Addr(), cfg.Path, cfg.DBPath)
	if err := handle.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
