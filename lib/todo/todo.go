package todo

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeLayout always writes milliseconds, "2024-03-10T08:00:00.000Z"
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Todo is the record stored under its ID. The JSON form is the persisted value.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Deleted     bool       `json:"deleted"`
}

// MarshalJSON writes both timestamps in UTC with exactly three fractional digits
func (t Todo) MarshalJSON() ([]byte, error) {
	var completedAt *string
	if t.CompletedAt != nil {
		formatted := t.CompletedAt.UTC().Format(timeLayout)
		completedAt = &formatted
	}
	return json.Marshal(struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Completed   bool    `json:"completed"`
		CreatedAt   string  `json:"createdAt"`
		CompletedAt *string `json:"completedAt"`
		Deleted     bool    `json:"deleted"`
	}{t.ID, t.Title, t.Completed, t.CreatedAt.UTC().Format(timeLayout), completedAt, t.Deleted})
}

func (t Todo) String() string {
	return fmt.Sprintf("Todo{ID: %s, Title: %q, Completed: %t}", t.ID, t.Title, t.Completed)
}

// Draft is the body accepted by Create. Timestamps and the deleted flag are set by the service.
type Draft struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Patch is the body accepted by Update. Nil fields keep the stored value.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
