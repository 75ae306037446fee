package models

import "time"

// Palette — сохранённая пользователем палитра.
type Palette struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Colors    []string  `json:"colors"`
	CreatedAt time.Time `json:"created_at"`
}

// PalettePage — страница палитр при keyset-пагинации.
type PalettePage struct {
	Items      []Palette `json:"items"`
	Limit      int       `json:"limit"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasNext    bool      `json:"has_next"`
}
