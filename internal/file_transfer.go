package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johannaefageras/ping/internal/storage"
)

// multipart framing overhead allowed on top of the payload cap.
const uploadSlack = 64 << 10

// FileTransfer is the one-shot binary bridge next to the message channel.
// An upload binds bytes to a server-assigned locator and only then creates
// the file ping, so a ping is never created for a transfer that failed.
type FileTransfer struct {
	server      *Server
	uploadDir   string
	maxFileSize int64
}

func NewFileTransfer(server *Server, uploadDir string, maxFileSize int64) *FileTransfer {
	return &FileTransfer{
		server:      server,
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload processes one multipart file upload. The response status
// distinguishes success, too-large, unauthenticated, and generic failure.
func (h *FileTransfer) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.server.auth.Verify(requestToken(r)); err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+uploadSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("file too large"))
		return
	}

	roomKey := r.FormValue("room")
	if roomKey == "" {
		writeError(w, http.StatusBadRequest, errors.New("room required"))
		return
	}
	user := strings.TrimSpace(r.FormValue("user"))
	if user == "" {
		user = "anonymous"
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("no file provided"))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." || filename == ".." {
		writeError(w, http.StatusBadRequest, errors.New("invalid filename"))
		return
	}
	if header.Size > h.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("file too large"))
		return
	}

	locator := fmt.Sprintf("%s-%s", uuid.NewString(), filename)
	roomDir := filepath.Join(h.uploadDir, sanitizePathComponent(roomKey))
	storagePath := filepath.Join(roomDir, locator)

	if err := os.MkdirAll(roomDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to create upload directory: %w", err))
		return
	}

	destFile, err := os.Create(storagePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to create file: %w", err))
		return
	}
	defer destFile.Close()

	// Copy while hashing, with a hard stop one byte past the cap so an
	// oversized stream never lands on disk.
	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(destFile, hasher), io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		os.Remove(storagePath)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to save file: %w", err))
		return
	}
	if written > h.maxFileSize {
		os.Remove(storagePath)
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("file too large"))
		return
	}

	record := &storage.File{
		Locator:     locator,
		Room:        roomKey,
		Name:        filename,
		SizeBytes:   written,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		StoragePath: filepath.Join(sanitizePathComponent(roomKey), locator),
		UploadedBy:  user,
		UploadedAt:  time.Now(),
	}
	if err := h.server.store.CreateFile(r.Context(), record); err != nil {
		os.Remove(storagePath)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("record upload: %w", err))
		return
	}

	// The transfer is complete; only now does the ping exist.
	ping, err := h.server.pings.CreateFile(r.Context(), roomKey, user, filename, written, locator)
	if err != nil {
		os.Remove(storagePath)
		_ = h.server.store.DeleteFile(r.Context(), locator)
		if errors.Is(err, ErrPayloadTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.New("file too large"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.server.metrics.IncUpload()
	h.server.metrics.IncPing()

	// Fan out to whoever is connected; offline viewers get it on replay.
	if room := h.server.hub.getRoom(roomKey); room != nil {
		room.deliverPing(ping)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          ping.ID,
		"filename":    filename,
		"stored_name": locator,
		"size":        written,
	})
}

// HandleDownload resolves a locator to bytes. Completion of this request is
// the consumption trigger the recipient's client acts on.
func (h *FileTransfer) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if err := h.server.auth.Verify(requestToken(r)); err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	locator := strings.TrimPrefix(r.URL.Path, "/files/")
	if locator == "" || strings.Contains(locator, "/") {
		http.Error(w, "locator required", http.StatusBadRequest)
		return
	}

	record, err := h.server.store.GetFile(r.Context(), locator)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if record == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	baseDir, err := filepath.Abs(h.uploadDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	filePath := filepath.Join(h.uploadDir, record.StoragePath)
	absPath, err := filepath.Abs(filePath)
	if err != nil || !strings.HasPrefix(absPath, baseDir) {
		http.Error(w, "invalid file path", http.StatusForbidden)
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found on disk", http.StatusNotFound)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, record.Name, record.UploadedAt, file)
}

// sanitizePathComponent removes dangerous characters from path components.
func sanitizePathComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}
