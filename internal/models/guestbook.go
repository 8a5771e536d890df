package models

import (
	"encoding/json"
	"time"
)

// DisplayLayout is how entry timestamps are rendered to clients.
const DisplayLayout = "2006-01-02 15:04:05"

// KST is Korea Standard Time. A fixed zone keeps rendering independent of the host tzdata.
var KST = time.FixedZone("KST", 9*60*60)

type Entry struct {
	ID        int64     `json:"-"` // relational backend only
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"-"`
}

// Timestamp renders CreatedAt in KST.
func (e Entry) Timestamp() string {
	return FormatTimestamp(e.CreatedAt)
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(EntryView{
		Name:      e.Name,
		Message:   e.Message,
		Timestamp: e.Timestamp(),
	})
}

// EntryView is the wire form of an Entry.
type EntryView struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func FormatTimestamp(t time.Time) string {
	return t.In(KST).Format(DisplayLayout)
}

type CreateEntryRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type CreateEntryResponse struct {
	Success bool   `json:"success"`
	Entry   *Entry `json:"entry"`
}
