package internal

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

func (model *TUIModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.KeyMsg:
		// Ctrl+C bails out from any mode.
		if typedMessage.Type == tea.KeyCtrlC {
			model.closeConn("")
			return model, tea.Quit
		}
		switch model.mode {
		case modeCodePrompt:
			if typedMessage.Type == tea.KeyEnter {
				trimmed := strings.TrimSpace(model.textInput.Value())
				if trimmed == "" {
					return model, nil
				}
				model.textInput.SetValue("")
				return model, model.loginCmd(trimmed)
			}
			var cmd tea.Cmd
			model.textInput, cmd = model.textInput.Update(typedMessage)
			return model, cmd
		case modeBrowser:
			return model.updateBrowser(typedMessage)
		case modeBoard:
			if typedMessage.Type == tea.KeyEnter {
				trimmed := strings.TrimSpace(model.textInput.Value())
				model.textInput.SetValue("")
				return model.handleBoardInput(trimmed)
			}
			var command tea.Cmd
			model.textInput, command = model.textInput.Update(typedMessage)
			return model, command
		}

	case authCheckMsg:
		if typedMessage.err != nil {
			// The dial below will fail and back off until the server is up.
			model.notice(fmt.Sprintf("Server check failed: %v", typedMessage.err))
			return model, model.connectCmd()
		}
		if typedMessage.required {
			model.mode = modeCodePrompt
			model.textInput.Placeholder = "Enter room code…"
			model.textInput.Prompt = "code> "
			return model, model.textInput.Focus()
		}
		return model, model.connectCmd()

	case authOKMsg:
		model.token = typedMessage.token
		model.mode = modeBoard
		model.textInput.Placeholder = "Type a ping…"
		model.textInput.Prompt = "> "
		return model, tea.Batch(model.textInput.Focus(), model.connectCmd())

	case authFailedMsg:
		model.notice(fmt.Sprintf("Login failed: %v", typedMessage.err))
		return model, nil

	case connectedMsg:
		model.isConnected = true
		model.connectionError = nil
		model.reconnect.Reset()
		return model, model.readOnceCmd()

	case frameMsg:
		return model.handleFrame(Frame(typedMessage))

	case readErrorMsg:
		model.isConnected = false
		model.websocketConn = nil
		model.connectionError = typedMessage.err
		return model, model.scheduleReconnect()

	case connectFailedMsg:
		model.isConnected = false
		model.connectionError = typedMessage.err
		return model, model.scheduleReconnect()

	case reconnectMsg:
		if !model.isConnected && model.mode != modeCodePrompt {
			return model, model.connectCmd()
		}
		return model, nil

	case expireMsg:
		// The timer fires once per render; Remove makes a second trigger for
		// the same id a no-op.
		if model.board.Remove(typedMessage.id) {
			return model, model.sendDismissCmd(typedMessage.id)
		}
		return model, nil

	case uploadedMsg:
		model.notice(fmt.Sprintf("Sent %s", typedMessage.filename))
		return model, nil

	case uploadFailedMsg:
		model.notice(fmt.Sprintf("Upload failed: %v", typedMessage.err))
		return model, nil

	case downloadedMsg:
		model.notice(fmt.Sprintf("Saved to %s", typedMessage.path))
		// Consumption on download: fetching the payload dismisses the ping.
		model.board.MarkDownloaded(typedMessage.id)
		if model.board.Remove(typedMessage.id) {
			return model, model.sendDismissCmd(typedMessage.id)
		}
		return model, nil

	case downloadFailedMsg:
		model.notice(fmt.Sprintf("Download failed: %v", typedMessage.err))
		return model, nil
	}
	return model, nil
}

// handleFrame routes one inbound frame. Empty frames stand in for payloads
// the read loop skipped; the loop always continues.
func (model *TUIModel) handleFrame(frame Frame) (tea.Model, tea.Cmd) {
	commands := []tea.Cmd{model.readOnceCmd()}
	switch frame.Type {
	case FrameTypePresence:
		model.presenceCount = frame.Count
	case FrameTypeText, FrameTypeFile:
		item := itemFromFrame(frame)
		if model.board.Add(item) {
			if item.NeedsTimer() {
				commands = append(commands, expireCmd(item.ID))
			}
			if !item.Self {
				commands = append(commands, bellCmd())
			}
		}
	}
	return model, tea.Batch(commands...)
}

// handleBoardInput interprets one line of board input: slash commands or a
// text ping.
func (model *TUIModel) handleBoardInput(input string) (tea.Model, tea.Cmd) {
	if input == "" {
		return model, nil
	}
	if strings.HasPrefix(input, "/") {
		fields := strings.Fields(input)
		switch strings.ToLower(fields[0]) {
		case "/quit", "/exit":
			model.closeConn("client quit")
			return model, tea.Quit
		case "/dismiss":
			item, ok := model.itemAt(fields)
			if !ok {
				return model, nil
			}
			if model.board.Remove(item.ID) {
				return model, model.sendDismissCmd(item.ID)
			}
			return model, nil
		case "/get":
			item, ok := model.itemAt(fields)
			if !ok {
				return model, nil
			}
			if item.Kind != KindFile {
				model.notice("Not a file ping.")
				return model, nil
			}
			model.notice(fmt.Sprintf("Fetching %s…", item.Filename))
			return model, model.downloadCmd(item)
		case "/send":
			if len(fields) < 2 {
				model.notice("Usage: /send <path>")
				return model, nil
			}
			path := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
			model.notice(fmt.Sprintf("Uploading %s…", path))
			return model, model.uploadCmd(path)
		case "/browse":
			model.mode = modeBrowser
			model.openBrowser(defaultBrowsePath())
			return model, nil
		default:
			model.notice("Commands: /dismiss N, /get N, /send <path>, /browse, /quit")
			return model, nil
		}
	}
	if !model.isConnected {
		model.notice("Not connected; ping not sent.")
		return model, nil
	}
	return model, model.sendTextCmd(input)
}

// itemAt resolves a 1-based board index from a command's arguments.
func (model *TUIModel) itemAt(fields []string) (BoardItem, bool) {
	if len(fields) < 2 {
		model.notice(fmt.Sprintf("Usage: %s <number>", fields[0]))
		return BoardItem{}, false
	}
	index, err := strconv.Atoi(fields[1])
	items := model.board.Items()
	if err != nil || index < 1 || index > len(items) {
		model.notice(fmt.Sprintf("No ping #%s on the board.", fields[1]))
		return BoardItem{}, false
	}
	return items[index-1], true
}

func (model *TUIModel) closeConn(reason string) {
	if model.websocketConn != nil {
		_ = model.websocketConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
		_ = model.websocketConn.Close()
	}
}
