package internal

import (
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// tui model struct for all the components and modes
type TUIModel struct {
	textInput       textinput.Model
	board           *Board
	notices         []string
	serverJoinURL   string
	roomKey         string
	username        string
	token           string
	downloadDir     string
	websocketConn   *websocket.Conn
	writeMutex      sync.Mutex
	isConnected     bool
	connectionError error
	presenceCount   int
	reconnect       *ReconnectState
	mode            appMode
	browserItems    []FileItem
	browserIndex    int
	browserPath     string
}

type appMode int

const (
	modeCodePrompt appMode = iota
	modeBoard
	modeBrowser
)

func NewTUIModel(serverJoinURL, roomKey, username, downloadDir string) *TUIModel {
	input := textinput.New()
	input.Placeholder = "Type a ping…"
	input.CharLimit = 0
	input.Focus()
	input.Prompt = "> "

	if username == "" {
		username = defaultUsername()
	}

	return &TUIModel{
		textInput:     input,
		board:         NewBoard(),
		serverJoinURL: serverJoinURL,
		roomKey:       roomKey,
		username:      username,
		downloadDir:   downloadDir,
		reconnect:     NewReconnectState(),
		mode:          modeBoard,
	}
}

// init user
func defaultUsername() string {
	if user := os.Getenv("PING_USER"); user != "" {
		return user
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "anon"
}

func (model *TUIModel) Init() tea.Cmd {
	// Ask the server whether a room code is required before dialing.
	return model.authCheckCmd()
}

func (model *TUIModel) notice(text string) {
	model.notices = append(model.notices, text)
	if len(model.notices) > 5 {
		model.notices = model.notices[len(model.notices)-5:]
	}
}
