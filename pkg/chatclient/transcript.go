package chatclient

type EntryStatus int

const (
	EntryPending EntryStatus = iota
	EntryConfirmed
)

func (s EntryStatus) String() string {
	if s == EntryPending {
		return "pending"
	}
	return "confirmed"
}

// Entry is one visible line of the transcript. ID is empty until the server confirms it.
type Entry struct {
	LocalID int64
	ID      string
	Role    string
	Content string
	Image   *Image
	Status  EntryStatus
}

// Transcript is the ordered, locally visible message list. It is not safe for
// concurrent use; Session guards it.
type Transcript struct {
	entries []Entry
	nextID  int64
}

func (t *Transcript) add(e Entry) int64 {
	t.nextID++
	e.LocalID = t.nextID
	t.entries = append(t.entries, e)
	return e.LocalID
}

func (t *Transcript) AppendPending(role, content string, image *Image) int64 {
	return t.add(Entry{Role: role, Content: content, Image: image, Status: EntryPending})
}

func (t *Transcript) AppendConfirmed(id, role, content string) int64 {
	return t.add(Entry{ID: id, Role: role, Content: content, Status: EntryConfirmed})
}

// Confirm promotes a pending entry. It reports false if the entry is gone.
func (t *Transcript) Confirm(localID int64, serverID string) bool {
	for i := range t.entries {
		if t.entries[i].LocalID == localID {
			t.entries[i].Status = EntryConfirmed
			t.entries[i].ID = serverID
			return true
		}
	}
	return false
}

// Remove drops an entry, used to roll back a failed optimistic append.
func (t *Transcript) Remove(localID int64) bool {
	for i := range t.entries {
		if t.entries[i].LocalID == localID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Transcript) Reset() {
	t.entries = nil
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
