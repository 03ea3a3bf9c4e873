package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

type (
	authCheckMsg struct {
		required bool
		err      error
	}
	authOKMsg struct{ token string }
	authFailedMsg struct{ err error }
	connectedMsg  struct{}
	connectFailedMsg struct{ err error }
	reconnectMsg     struct{}
	frameMsg         Frame
	readErrorMsg     struct{ err error }
	expireMsg        struct{ id string }
	uploadedMsg      struct{ filename string }
	uploadFailedMsg  struct{ err error }
	downloadedMsg    struct {
		id   string
		path string
	}
	downloadFailedMsg struct{ err error }
)

// authCheckCmd probes the server for whether a room code is required.
func (model *TUIModel) authCheckCmd() tea.Cmd {
	return func() tea.Msg {
		base, err := httpBaseURL(model.serverJoinURL)
		if err != nil {
			return authCheckMsg{err: err}
		}
		client := &http.Client{Timeout: 3 * time.Second}
		resp, err := client.Get(base + "/auth/check")
		if err != nil {
			return authCheckMsg{err: err}
		}
		defer resp.Body.Close()
		var check struct {
			Required bool `json:"required"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&check); err != nil {
			return authCheckMsg{err: err}
		}
		return authCheckMsg{required: check.Required}
	}
}

// loginCmd exchanges a room code for a bearer token.
func (model *TUIModel) loginCmd(code string) tea.Cmd {
	return func() tea.Msg {
		base, err := httpBaseURL(model.serverJoinURL)
		if err != nil {
			return authFailedMsg{err: err}
		}
		payload, _ := json.Marshal(map[string]string{"code": code})
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Post(base+"/auth", "application/json", bytes.NewReader(payload))
		if err != nil {
			return authFailedMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusForbidden {
			return authFailedMsg{err: fmt.Errorf("wrong room code: %w", ErrUnauthenticated)}
		}
		if resp.StatusCode != http.StatusOK {
			return authFailedMsg{err: fmt.Errorf("server returned %d", resp.StatusCode)}
		}
		var login struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
			return authFailedMsg{err: err}
		}
		return authOKMsg{token: login.Token}
	}
}

func (model *TUIModel) scheduleReconnect() tea.Cmd {
	// each failed attempt pushes the next one further out, up to the ceiling.
	delay := model.reconnect.Next()
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return reconnectMsg{}
	})
}

// websocket dial
func (model *TUIModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		joinURL, err := buildJoinURL(model.serverJoinURL, model.roomKey, model.username, model.token)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		conn, _, err := websocket.DefaultDialer.Dial(joinURL, http.Header{})
		if err != nil {
			return connectFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransportUnavailable)}
		}
		model.websocketConn = conn
		return connectedMsg{}
	}
}

// readOnceCmd pulls one frame off the socket. A payload that fails to parse
// is skipped by returning an empty frame; only a transport error surfaces.
func (model *TUIModel) readOnceCmd() tea.Cmd {
	return func() tea.Msg {
		if model.websocketConn == nil {
			return readErrorMsg{err: ErrTransportUnavailable}
		}
		messageType, payload, err := model.websocketConn.ReadMessage()
		if err != nil {
			return readErrorMsg{err: err}
		}
		if messageType != websocket.TextMessage {
			return frameMsg(Frame{})
		}
		frame, err := ParseFrame(payload)
		if err != nil || !KnownFrameType(frame.Type) {
			return frameMsg(Frame{})
		}
		return frameMsg(frame)
	}
}

// sendFrameCmd writes one frame. With no open connection the send is a local
// no-op; the reconnect machinery is already in motion.
func (model *TUIModel) sendFrameCmd(frame Frame) tea.Cmd {
	return func() tea.Msg {
		if model.websocketConn == nil {
			return nil
		}
		encoded, err := frame.Encode()
		if err != nil {
			return nil
		}
		model.writeMutex.Lock()
		err = model.websocketConn.WriteMessage(websocket.TextMessage, encoded)
		model.writeMutex.Unlock()
		if err != nil {
			return readErrorMsg{err: err}
		}
		return nil
	}
}

func (model *TUIModel) sendTextCmd(content string) tea.Cmd {
	return model.sendFrameCmd(Frame{Type: FrameTypeText, Content: content})
}

func (model *TUIModel) sendDismissCmd(id string) tea.Cmd {
	return model.sendFrameCmd(Frame{Type: FrameTypeDismiss, ID: id})
}

// expireCmd schedules the self-removal of a rendered ping.
func expireCmd(id string) tea.Cmd {
	return tea.Tick(DismissWindow, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
}

// bellCmd rings the terminal bell for an arriving ping.
func bellCmd() tea.Cmd {
	return func() tea.Msg {
		fmt.Print("\a")
		return nil
	}
}

// uploadCmd streams a local file to the server as multipart form data. The
// server creates and fans out the file ping itself.
func (model *TUIModel) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return uploadFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransferFailed)}
		}
		if info.Size() > MaxFileSize {
			return uploadFailedMsg{err: fmt.Errorf("%s is over the 50 MiB cap: %w", filepath.Base(path), ErrPayloadTooLarge)}
		}
		file, err := os.Open(path)
		if err != nil {
			return uploadFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransferFailed)}
		}
		defer file.Close()

		pipeReader, pipeWriter := io.Pipe()
		form := multipart.NewWriter(pipeWriter)
		go func() {
			defer pipeWriter.Close()
			_ = form.WriteField("room", model.roomKey)
			_ = form.WriteField("user", model.username)
			part, err := form.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, file); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			_ = form.Close()
		}()

		base, err := httpBaseURL(model.serverJoinURL)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		req, err := http.NewRequest(http.MethodPost, base+"/upload", pipeReader)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		req.Header.Set("Content-Type", form.FormDataContentType())
		if model.token != "" {
			req.Header.Set("Authorization", "Bearer "+model.token)
		}
		client := &http.Client{Timeout: 2 * time.Minute}
		resp, err := client.Do(req)
		if err != nil {
			return uploadFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransferFailed)}
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK:
			return uploadedMsg{filename: filepath.Base(path)}
		case resp.StatusCode == http.StatusRequestEntityTooLarge:
			return uploadFailedMsg{err: fmt.Errorf("%s rejected by server: %w", filepath.Base(path), ErrPayloadTooLarge)}
		case resp.StatusCode == http.StatusUnauthorized:
			return uploadFailedMsg{err: fmt.Errorf("upload rejected: %w", ErrUnauthenticated)}
		default:
			return uploadFailedMsg{err: fmt.Errorf("server returned %d: %w", resp.StatusCode, ErrTransferFailed)}
		}
	}
}

// downloadCmd fetches a file ping's payload into the download directory.
// Completion is the consumption trigger; the Update loop dismisses the ping
// when this succeeds.
func (model *TUIModel) downloadCmd(item BoardItem) tea.Cmd {
	return func() tea.Msg {
		base, err := httpBaseURL(model.serverJoinURL)
		if err != nil {
			return downloadFailedMsg{err: err}
		}
		req, err := http.NewRequest(http.MethodGet, base+"/files/"+url.PathEscape(item.StoredName), nil)
		if err != nil {
			return downloadFailedMsg{err: err}
		}
		if model.token != "" {
			req.Header.Set("Authorization", "Bearer "+model.token)
		}
		client := &http.Client{Timeout: 2 * time.Minute}
		resp, err := client.Do(req)
		if err != nil {
			return downloadFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransferFailed)}
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized {
			return downloadFailedMsg{err: fmt.Errorf("download rejected: %w", ErrUnauthenticated)}
		}
		if resp.StatusCode != http.StatusOK {
			return downloadFailedMsg{err: fmt.Errorf("server returned %d: %w", resp.StatusCode, ErrTransferFailed)}
		}
		if err := os.MkdirAll(model.downloadDir, 0755); err != nil {
			return downloadFailedMsg{err: err}
		}
		destPath := filepath.Join(model.downloadDir, filepath.Base(item.Filename))
		dest, err := os.Create(destPath)
		if err != nil {
			return downloadFailedMsg{err: err}
		}
		defer dest.Close()
		if _, err := io.Copy(dest, resp.Body); err != nil {
			os.Remove(destPath)
			return downloadFailedMsg{err: fmt.Errorf("%v: %w", err, ErrTransferFailed)}
		}
		return downloadedMsg{id: item.ID, path: destPath}
	}
}

// entry for bubbletea
func RunClient(serverJoinURL, roomKey, username, downloadDir string) error {
	program := tea.NewProgram(NewTUIModel(serverJoinURL, roomKey, username, downloadDir))
	_, err := program.Run()
	return err
}

func buildJoinURL(base, roomKey, user, token string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return "", fmt.Errorf("invalid scheme for websocket: %s", parsed.Scheme)
	}
	query := parsed.Query()
	query.Set("room", roomKey)
	query.Set("user", user)
	if token != "" {
		query.Set("token", token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// httpBaseURL maps the websocket join URL back to the server's HTTP root.
func httpBaseURL(wsBase string) (string, error) {
	parsed, err := url.Parse(wsBase)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	default:
		return "", fmt.Errorf("invalid scheme for websocket: %s", parsed.Scheme)
	}
	parsed.Path = ""
	parsed.RawQuery = ""
	return parsed.String(), nil
}
