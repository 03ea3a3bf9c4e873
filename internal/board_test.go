package internal

import (
	"testing"
	"time"
)

func textItem(id, sender string, createdAt time.Time, self bool) BoardItem {
	return BoardItem{
		ID:        id,
		Kind:      KindText,
		Sender:    sender,
		Content:   "hello",
		CreatedAt: createdAt,
		Self:      self,
	}
}

// TestBoardOrdering verifies items render in creation order regardless of the
// order they arrive in.
func TestBoardOrdering(t *testing.T) {
	board := NewBoard()
	base := time.UnixMilli(1_700_000_000_000)

	board.Add(textItem("p2", "a", base.Add(2*time.Second), false))
	board.Add(textItem("p1", "a", base.Add(1*time.Second), false))
	board.Add(textItem("p3", "a", base.Add(3*time.Second), false))

	items := board.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if items[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, items[i].ID)
		}
	}
}

// TestBoardRemoveIsAtMostOnce verifies only the first removal of an id reports
// true, so racing expiry timers and manual dismissals fire one side effect.
func TestBoardRemoveIsAtMostOnce(t *testing.T) {
	board := NewBoard()
	board.Add(textItem("p1", "a", time.Now(), false))

	if !board.Remove("p1") {
		t.Fatal("first removal should report true")
	}
	if board.Remove("p1") {
		t.Error("second removal of the same id should be a no-op")
	}
	if board.Remove("never-added") {
		t.Error("removing an unknown id should be a no-op")
	}
	if board.Len() != 0 {
		t.Errorf("expected empty board, got %d items", board.Len())
	}
}

// TestBoardIgnoresRemovedDuplicates verifies a replayed frame for a dismissed
// ping does not resurrect it.
func TestBoardIgnoresRemovedDuplicates(t *testing.T) {
	board := NewBoard()
	item := textItem("p1", "a", time.Now(), false)

	board.Add(item)
	board.Remove("p1")

	if board.Add(item) {
		t.Error("adding a removed id should be a no-op")
	}
	if board.Add(item) {
		t.Error("duplicate add should be a no-op")
	}
	if board.Len() != 0 {
		t.Errorf("expected empty board, got %d items", board.Len())
	}
}

// TestBoardFileTimerExemption verifies a received file ping is not on the
// expiry clock until it has been downloaded, while sent files and all text
// pings are.
func TestBoardFileTimerExemption(t *testing.T) {
	receivedFile := BoardItem{ID: "f1", Kind: KindFile, Filename: "a.txt"}
	if receivedFile.NeedsTimer() {
		t.Error("a received, undownloaded file should not be on the clock")
	}

	receivedFile.Downloaded = true
	if !receivedFile.NeedsTimer() {
		t.Error("a downloaded file should be on the clock")
	}

	sentFile := BoardItem{ID: "f2", Kind: KindFile, Filename: "b.txt", Self: true}
	if !sentFile.NeedsTimer() {
		t.Error("the sender's own file echo should be on the clock")
	}

	receivedText := BoardItem{ID: "t1", Kind: KindText}
	if !receivedText.NeedsTimer() {
		t.Error("a received text ping should be on the clock")
	}
}

// TestBoardMarkDownloaded verifies the downloaded flag flips in place.
func TestBoardMarkDownloaded(t *testing.T) {
	board := NewBoard()
	board.Add(BoardItem{ID: "f1", Kind: KindFile, Filename: "a.txt", CreatedAt: time.Now()})

	if !board.MarkDownloaded("f1") {
		t.Fatal("expected item to be found")
	}
	item, ok := board.Get("f1")
	if !ok || !item.Downloaded {
		t.Error("expected item to be flagged downloaded")
	}
	if board.MarkDownloaded("missing") {
		t.Error("marking an unknown id should report false")
	}
}
