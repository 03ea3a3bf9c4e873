package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// pre styled colors, all from lipgloss
var (
	appTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Padding(0, 1)
	subtitleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).MarginTop(1)
	noticeBoxStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("95")).Padding(1, 2).MarginTop(1)
	boardHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("109")).MarginTop(1)
	connectedStyle     = statusStyle.Copy().Foreground(lipgloss.Color("42")).Bold(true)
	connectingStyle    = statusStyle.Copy().Foreground(lipgloss.Color("178")).Italic(true)
	pingBodyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("253"))
	pingBoxStyle       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2).MarginTop(1)
	inputBoxStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).MarginTop(1)
	timestampStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	usernameStyle      = lipgloss.NewStyle().Bold(true)
	activeUserStyle    = usernameStyle.Copy().Foreground(lipgloss.Color("213"))
	systemNoticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	errorStyle         = statusStyle.Copy().Foreground(lipgloss.Color("196")).Bold(true)
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("237")).Render(" ┃ ")
	fileTagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).MarginTop(1)
	browserSelectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	browserItemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	userColorPalette   = []lipgloss.Color{
		lipgloss.Color("45"),
		lipgloss.Color("81"),
		lipgloss.Color("141"),
		lipgloss.Color("98"),
		lipgloss.Color("63"),
		lipgloss.Color("135"),
		lipgloss.Color("32"),
	}
)

func (model TUIModel) View() string {
	switch model.mode {
	case modeCodePrompt:
		return model.renderCodePromptView()
	case modeBrowser:
		return model.renderBrowserView()
	default:
		return model.renderBoardView()
	}
}

func (model TUIModel) renderCodePromptView() string {
	header := appTitleStyle.Render("Ping")
	hint := hintStyle.Render("This server requires a room code.")

	viewSections := []string{header, hint}
	if notices := model.renderNotices(); notices != "" {
		viewSections = append(viewSections, notices)
	}
	viewSections = append(viewSections, inputBoxStyle.Render(model.textInput.View()))

	return lipgloss.JoinVertical(lipgloss.Left, viewSections...)
}

func (model TUIModel) renderBoardView() string {
	headerSegments := []string{"Ping"}
	headerSegments = append(headerSegments, fmt.Sprintf("Room %s", model.roomKey))
	headerSegments = append(headerSegments, fmt.Sprintf("User %s", model.username))
	headerSegments = append(headerSegments, fmt.Sprintf("Online %d", model.presenceCount))
	header := boardHeaderStyle.Render(strings.Join(headerSegments, dividerStyle))

	var statusLine string
	switch {
	case model.isConnected:
		statusLine = connectedStyle.Render("Connected")
	case model.connectionError != nil:
		statusLine = errorStyle.Render(fmt.Sprintf("Disconnected: %v, retrying in %s", model.connectionError, model.reconnect.Current()))
	default:
		statusLine = connectingStyle.Render("Connecting…")
	}

	var pingLines []string
	for index, item := range model.board.Items() {
		pingLines = append(pingLines, model.renderBoardItem(index+1, item))
	}
	if len(pingLines) == 0 {
		pingLines = append(pingLines, systemNoticeStyle.Render("Nothing on the board. Pings disappear 20s after they land."))
	}

	boardView := pingBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, pingLines...))
	inputView := inputBoxStyle.Render(model.textInput.View())
	footerHint := hintStyle.Render("/dismiss N • /get N • /send <path> • /browse • /quit")

	sections := []string{header, statusLine, boardView}
	if notices := model.renderNotices(); notices != "" {
		sections = append(sections, notices)
	}
	sections = append(sections, inputView, footerHint)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderBoardItem renders one ping line: index, timestamp, sender, and either
// the text or the file name with its size.
func (model TUIModel) renderBoardItem(index int, item BoardItem) string {
	timestamp := timestampStyle.Render(fmt.Sprintf("[%d] %s", index, item.CreatedAt.Format("15:04:05")))

	var nameStyle lipgloss.Style
	if item.Self {
		nameStyle = activeUserStyle
	} else {
		nameStyle = usernameStyle.Copy().Foreground(colorForUser(item.Sender))
	}
	name := nameStyle.Render(item.Sender)

	if item.Kind == KindFile {
		tag := fileTagStyle.Render(fmt.Sprintf("⇩ %s (%s)", item.Filename, humanize.Bytes(uint64(item.Size))))
		note := ""
		if !item.Self && !item.Downloaded {
			note = systemNoticeStyle.Render(fmt.Sprintf("  /get %d to fetch", index))
		}
		return lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", name, ": ", tag, note)
	}

	body := pingBodyStyle.Render(strings.ReplaceAll(item.Content, "\n", "\n   "))
	return lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", name, ": ", body)
}

func (model TUIModel) renderBrowserView() string {
	header := appTitleStyle.Render("Pick a file to send")
	subtitle := subtitleStyle.Render(model.browserPath)

	var lines []string
	if len(model.browserItems) == 0 {
		lines = append(lines, hintStyle.Render("Empty directory."))
	} else {
		for idx, item := range model.browserItems {
			label := item.Name
			if item.IsDir {
				label += "/"
			} else {
				label += "  " + humanize.Bytes(uint64(item.Size))
			}
			if idx == model.browserIndex {
				lines = append(lines, browserSelectStyle.Render("➤ "+label))
			} else {
				lines = append(lines, browserItemStyle.Render("  "+label))
			}
		}
	}

	hints := hintStyle.Render("↑/↓ select • Enter send • Esc back")
	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle,
		pingBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), hints)
}

func (model TUIModel) renderNotices() string {
	if len(model.notices) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(model.notices))
	for _, notice := range model.notices {
		rendered = append(rendered, systemNoticeStyle.Render(notice))
	}
	return noticeBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rendered...))
}

// color for users
func colorForUser(name string) lipgloss.Color {
	if name == "" {
		return userColorPalette[0]
	}
	var sum int
	for _, r := range name {
		sum += int(r)
	}
	return userColorPalette[sum%len(userColorPalette)]
}
