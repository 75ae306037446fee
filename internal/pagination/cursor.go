// pagination реализует курсоры keyset-пагинации по ключу (created_at, id).
//
// Страницы отдаются в порядке убывания (created_at DESC, id DESC), продолжение
// выбирается предикатом (created_at, id) < (cursor.created_at, cursor.id).
// Новые записи, вставленные во время листания, попадают только на будущую
// «первую страницу» и не приводят к дублям или пропускам.
package pagination

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Cursor — позиция последнего отданного элемента.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// wireCursor — JSON-представление курсора; порядок полей фиксирован.
type wireCursor struct {
	CreatedAt string `json:"created_at"`
	ID        *int64 `json:"id"`
}

// Encode кодирует позицию в непрозрачную строку: base64url без паддинга
// поверх компактного JSON {"created_at":"<RFC3339Nano>","id":<int>}.
func Encode(createdAt time.Time, id int64) string {
	raw, _ := json.Marshal(wireCursor{
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
		ID:        &id,
	})

	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode разбирает строку курсора. Любая ошибка структуры или типов
// (битая кодировка, нет поля, нецелый id, неразбираемое время) даёт ok=false.
func Decode(s string) (Cursor, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return Cursor{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, false
	}

	var w wireCursor
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil || dec.More() {
		return Cursor{}, false
	}

	if w.ID == nil || w.CreatedAt == "" {
		return Cursor{}, false
	}

	ts, err := time.Parse(time.RFC3339Nano, w.CreatedAt)
	if err != nil {
		return Cursor{}, false
	}

	return Cursor{CreatedAt: ts.UTC(), ID: *w.ID}, true
}

// Less сообщает, лежит ли (createdAt, id) строго после курсора в порядке выдачи,
// то есть (createdAt, id) < (c.CreatedAt, c.ID) лексикографически.
func (c Cursor) Less(createdAt time.Time, id int64) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}

	return id < c.ID
}

// NormalizeLimit приводит запрошенный размер страницы к [1, max];
// limit <= 0 заменяется на def.
func NormalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}

	if max > 0 && limit > max {
		limit = max
	}

	if limit < 1 {
		limit = 1
	}

	return limit
}
