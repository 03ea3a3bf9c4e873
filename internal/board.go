package internal

import (
	"sort"
	"time"
)

// DismissWindow is how long a rendered ping stays on the board before it
// removes itself.
const DismissWindow = 20 * time.Second

// BoardItem is one ping as the viewer sees it.
type BoardItem struct {
	ID         string
	Kind       string
	Sender     string
	Content    string
	Filename   string
	StoredName string
	Size       int64
	CreatedAt  time.Time
	Self       bool
	Downloaded bool
}

// Board holds the pings currently visible to one viewer, ordered by creation
// time. It remembers removed ids, so a late expiry timer, a second dismiss, or
// a replayed duplicate of a removed ping all collapse to no-ops.
type Board struct {
	items   []BoardItem
	removed map[string]bool
}

func NewBoard() *Board {
	return &Board{removed: make(map[string]bool)}
}

// Add places a ping on the board. It reports whether the item is new; frames
// replayed for an id already shown, or already removed, change nothing.
func (board *Board) Add(item BoardItem) bool {
	if item.ID == "" || board.removed[item.ID] {
		return false
	}
	for _, existing := range board.items {
		if existing.ID == item.ID {
			return false
		}
	}
	board.items = append(board.items, item)
	sort.SliceStable(board.items, func(i, j int) bool {
		if board.items[i].CreatedAt.Equal(board.items[j].CreatedAt) {
			return board.items[i].ID < board.items[j].ID
		}
		return board.items[i].CreatedAt.Before(board.items[j].CreatedAt)
	})
	return true
}

// Remove takes a ping off the board. Only the first removal of an id returns
// true; callers fire side effects (the server dismiss) off that result, which
// keeps removal at-most-once however many triggers race.
func (board *Board) Remove(id string) bool {
	if board.removed[id] {
		return false
	}
	for i, existing := range board.items {
		if existing.ID == id {
			board.items = append(board.items[:i], board.items[i+1:]...)
			board.removed[id] = true
			return true
		}
	}
	return false
}

// NeedsTimer reports whether an item should self-remove after DismissWindow.
// A received file waits for its download; everything else is on the clock
// from the moment it renders.
func (item BoardItem) NeedsTimer() bool {
	if item.Kind == KindFile && !item.Self && !item.Downloaded {
		return false
	}
	return true
}

// MarkDownloaded flags a file item as fetched and reports whether it was
// present.
func (board *Board) MarkDownloaded(id string) bool {
	for i := range board.items {
		if board.items[i].ID == id {
			board.items[i].Downloaded = true
			return true
		}
	}
	return false
}

func (board *Board) Get(id string) (BoardItem, bool) {
	for _, existing := range board.items {
		if existing.ID == id {
			return existing, true
		}
	}
	return BoardItem{}, false
}

// Items returns the visible pings in display order.
func (board *Board) Items() []BoardItem {
	out := make([]BoardItem, len(board.items))
	copy(out, board.items)
	return out
}

func (board *Board) Len() int {
	return len(board.items)
}

// itemFromFrame converts a wire frame into the viewer's representation.
func itemFromFrame(frame Frame) BoardItem {
	return BoardItem{
		ID:         frame.ID,
		Kind:       frame.Type,
		Sender:     frame.Sender,
		Content:    frame.Content,
		Filename:   frame.Filename,
		StoredName: frame.StoredName,
		Size:       frame.Size,
		CreatedAt:  time.UnixMilli(frame.Timestamp),
		Self:       frame.Self,
	}
}
