// memory — хранилище в памяти процесса. Используется в тестах и для
// локального запуска без PostgreSQL. Транзакции сериализуются мьютексом,
// при ошибке состояние откатывается к снимку, сделанному на входе в InTx.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/pagination"
	"github.com/pribylovaa/paleta/internal/storage"
)

type state struct {
	seq      int64
	users    map[int64]models.User
	refresh  map[int64]models.RefreshToken
	codes    map[int64]models.PasswordResetCode
	palettes map[int64]models.Palette
}

func newState() *state {
	return &state{
		users:    make(map[int64]models.User),
		refresh:  make(map[int64]models.RefreshToken),
		codes:    make(map[int64]models.PasswordResetCode),
		palettes: make(map[int64]models.Palette),
	}
}

// clone делает глубокую копию: указатели и срезы внутри записей не разделяются.
func (s *state) clone() *state {
	out := newState()
	out.seq = s.seq
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.refresh {
		out.refresh[k] = copyRefresh(v)
	}
	for k, v := range s.codes {
		out.codes[k] = copyCode(v)
	}
	for k, v := range s.palettes {
		out.palettes[k] = copyPalette(v)
	}

	return out
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Storage — потокобезопасное хранилище в памяти.
type Storage struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{mu: &sync.Mutex{}, st: newState()}
}

// lock захватывает мьютекс вне транзакции; внутри InTx он уже удерживается.
func (s *Storage) lock() func() {
	if s.inTx {
		return func() {}
	}

	s.mu.Lock()
	return s.mu.Unlock
}

// InTx выполняет fn под мьютексом; ошибка или panic восстанавливают снимок.
func (s *Storage) InTx(ctx context.Context, fn storage.TxFunc) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			*s.st = *snap
			panic(p)
		}

		if err != nil {
			*s.st = *snap
		}
	}()

	return fn(ctx, &Storage{mu: s.mu, st: s.st, inTx: true})
}

// Ping всегда успешен.
func (s *Storage) Ping(context.Context) error { return nil }

// Close — no-op.
func (s *Storage) Close() {}

// SaveUser создаёт пользователя.
func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	defer s.lock()()

	for _, u := range s.st.users {
		if strings.EqualFold(u.Username, user.Username) ||
			(user.Email != "" && u.Email == user.Email) ||
			(user.Phone != "" && u.Phone == user.Phone) {
			return storage.ErrAlreadyExists
		}
	}

	user.ID = s.st.nextID()
	s.st.users[user.ID] = *user

	return nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(_ context.Context, id int64) (*models.User, error) {
	defer s.lock()()

	u, ok := s.st.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &u, nil
}

// LockUser только проверяет, что пользователь существует: транзакции
// в памяти и так сериализованы мьютексом.
func (s *Storage) LockUser(_ context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.st.users[id]; !ok {
		return storage.ErrNotFound
	}

	return nil
}

// UserByUsername находит пользователя по имени без учёта регистра.
func (s *Storage) UserByUsername(_ context.Context, username string) (*models.User, error) {
	defer s.lock()()

	for _, u := range s.st.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}

	return nil, storage.ErrNotFound
}

// UserByContact находит пользователя по e-mail или телефону.
func (s *Storage) UserByContact(_ context.Context, channel models.Channel, destination string) (*models.User, error) {
	defer s.lock()()

	if destination == "" {
		return nil, storage.ErrNotFound
	}

	for _, u := range s.st.users {
		if (channel == models.ChannelEmail && u.Email == destination) ||
			(channel == models.ChannelPhone && u.Phone == destination) {
			return &u, nil
		}
	}

	return nil, storage.ErrNotFound
}

// UpdatePassword заменяет хэш пароля.
func (s *Storage) UpdatePassword(_ context.Context, id int64, passwordHash string, now time.Time) error {
	defer s.lock()()

	u, ok := s.st.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = now
	s.st.users[id] = u

	return nil
}

// SaveRefreshToken сохраняет refresh-токен.
func (s *Storage) SaveRefreshToken(_ context.Context, token *models.RefreshToken) error {
	defer s.lock()()

	for _, t := range s.st.refresh {
		if t.TokenHash == token.TokenHash {
			return storage.ErrAlreadyExists
		}
	}

	token.ID = s.st.nextID()
	s.st.refresh[token.ID] = copyRefresh(*token)

	return nil
}

// RefreshTokenByHash находит refresh-токен по хэшу.
func (s *Storage) RefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	defer s.lock()()

	t, ok := s.st.refreshByHash(hash)
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &t, nil
}

// LockRefreshToken внутри транзакции эквивалентен чтению: мьютекс уже удерживается.
func (s *Storage) LockRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	return s.RefreshTokenByHash(ctx, hash)
}

// MarkRefreshTokenRotated отзывает запись как израсходованную ротацией.
func (s *Storage) MarkRefreshTokenRotated(_ context.Context, id, replacedBy int64, now time.Time) error {
	defer s.lock()()

	t, ok := s.st.refresh[id]
	if !ok || t.RevokedAt != nil {
		return storage.ErrNotFound
	}

	t.RevokedAt = &now
	t.LastUsedAt = now
	t.ReplacedBy = &replacedBy
	s.st.refresh[id] = t

	return nil
}

// RevokeRefreshToken отзывает токен и сообщает, существовал ли он.
func (s *Storage) RevokeRefreshToken(_ context.Context, hash string, now time.Time) (bool, error) {
	defer s.lock()()

	t, ok := s.st.refreshByHash(hash)
	if !ok {
		return false, nil
	}

	if t.RevokedAt == nil {
		t.RevokedAt = &now
		s.st.refresh[t.ID] = t
	}

	return true, nil
}

// RevokeRefreshLineage отзывает активных потомков записи.
func (s *Storage) RevokeRefreshLineage(_ context.Context, id int64, now time.Time) (int64, error) {
	defer s.lock()()

	var n int64
	seen := make(map[int64]bool)
	cur, ok := s.st.refresh[id]
	for ok && cur.ReplacedBy != nil && !seen[*cur.ReplacedBy] {
		next := *cur.ReplacedBy
		seen[next] = true

		cur, ok = s.st.refresh[next]
		if ok && cur.RevokedAt == nil {
			cur.RevokedAt = &now
			s.st.refresh[next] = cur
			n++
		}
	}

	return n, nil
}

// RevokeUserRefreshTokens отзывает все активные сессии пользователя.
func (s *Storage) RevokeUserRefreshTokens(_ context.Context, userID int64, now time.Time) (int64, error) {
	defer s.lock()()

	var n int64
	for id, t := range s.st.refresh {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			s.st.refresh[id] = t
			n++
		}
	}

	return n, nil
}

// SaveResetCode сохраняет код сброса.
func (s *Storage) SaveResetCode(_ context.Context, code *models.PasswordResetCode) error {
	defer s.lock()()

	code.ID = s.st.nextID()
	s.st.codes[code.ID] = copyCode(*code)

	return nil
}

// ActiveResetCode возвращает самый новый активный код.
func (s *Storage) ActiveResetCode(_ context.Context, userID int64, channel models.Channel, destination string, now time.Time) (*models.PasswordResetCode, error) {
	defer s.lock()()

	var best *models.PasswordResetCode
	for _, c := range s.st.codes {
		if c.UserID != userID || c.Channel != channel || c.Destination != destination || !c.Active(now) {
			continue
		}

		if best == nil || c.CreatedAt.After(best.CreatedAt) || (c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			cc := copyCode(c)
			best = &cc
		}
	}

	if best == nil {
		return nil, storage.ErrNotFound
	}

	return best, nil
}

// ReserveResetAttempt — условный инкремент счётчика попыток.
func (s *Storage) ReserveResetAttempt(_ context.Context, id int64, maxAttempts int) (int, error) {
	defer s.lock()()

	c, ok := s.st.codes[id]
	if !ok || c.Attempts >= maxAttempts {
		return 0, storage.ErrAttemptsExhausted
	}

	c.Attempts++
	s.st.codes[id] = c

	return c.Attempts, nil
}

// StaleResetCodeExists ищет неактивный код пользователя с таким хэшем.
func (s *Storage) StaleResetCodeExists(_ context.Context, userID int64, codeHash string, now time.Time) (bool, error) {
	defer s.lock()()

	for _, c := range s.st.codes {
		if c.UserID == userID && c.CodeHash == codeHash && !c.Active(now) {
			return true, nil
		}
	}

	return false, nil
}

// MarkResetCodeUsed помечает код использованным.
func (s *Storage) MarkResetCodeUsed(_ context.Context, id int64, now time.Time) error {
	defer s.lock()()

	c, ok := s.st.codes[id]
	if !ok || c.UsedAt != nil {
		return storage.ErrNotFound
	}

	c.UsedAt = &now
	s.st.codes[id] = c

	return nil
}

// SupersedeResetCodes помечает использованными все активные коды пользователя.
func (s *Storage) SupersedeResetCodes(_ context.Context, userID int64, now time.Time) (int64, error) {
	defer s.lock()()

	var n int64
	for id, c := range s.st.codes {
		if c.UserID == userID && c.Active(now) {
			c.UsedAt = &now
			s.st.codes[id] = c
			n++
		}
	}

	return n, nil
}

// DeleteStaleResetCodes удаляет коды, отработавшие раньше before.
func (s *Storage) DeleteStaleResetCodes(_ context.Context, before time.Time) (int64, error) {
	defer s.lock()()

	var n int64
	for id, c := range s.st.codes {
		if !c.ExpiresAt.After(before) || (c.UsedAt != nil && !c.UsedAt.After(before)) {
			delete(s.st.codes, id)
			n++
		}
	}

	return n, nil
}

// SavePalette создаёт палитру.
func (s *Storage) SavePalette(_ context.Context, p *models.Palette) error {
	defer s.lock()()

	if s.st.paletteNameTaken(p.UserID, p.Name, 0) {
		return storage.ErrAlreadyExists
	}

	p.ID = s.st.nextID()
	s.st.palettes[p.ID] = copyPalette(*p)

	return nil
}

// PaletteByID находит палитру по ID.
func (s *Storage) PaletteByID(_ context.Context, id int64) (*models.Palette, error) {
	defer s.lock()()

	p, ok := s.st.palettes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	p = copyPalette(p)
	return &p, nil
}

// ListPalettes — keyset-выборка палитр владельца.
func (s *Storage) ListPalettes(_ context.Context, userID int64, after *pagination.Cursor, limit int) ([]models.Palette, error) {
	defer s.lock()()

	if limit <= 0 {
		limit = 1
	}

	items := make([]models.Palette, 0, limit)
	for _, p := range s.st.palettes {
		if p.UserID != userID {
			continue
		}

		if after != nil && !after.Less(p.CreatedAt, p.ID) {
			continue
		}

		items = append(items, copyPalette(p))
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}

		return items[i].ID > items[j].ID
	})

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// PaletteNames возвращает имена палитр владельца с заданным префиксом.
func (s *Storage) PaletteNames(_ context.Context, userID int64, prefix string) ([]string, error) {
	defer s.lock()()

	var names []string
	for _, p := range s.st.palettes {
		if p.UserID == userID && strings.HasPrefix(p.Name, prefix) {
			names = append(names, p.Name)
		}
	}

	return names, nil
}

// UpdatePalette сохраняет имя и цвета палитры.
func (s *Storage) UpdatePalette(_ context.Context, p *models.Palette) error {
	defer s.lock()()

	cur, ok := s.st.palettes[p.ID]
	if !ok {
		return storage.ErrNotFound
	}

	if s.st.paletteNameTaken(cur.UserID, p.Name, p.ID) {
		return storage.ErrAlreadyExists
	}

	cur.Name = p.Name
	cur.Colors = append([]string(nil), p.Colors...)
	s.st.palettes[p.ID] = cur

	return nil
}

// DeletePalette удаляет палитру.
func (s *Storage) DeletePalette(_ context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.st.palettes[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.st.palettes, id)

	return nil
}

func (s *state) refreshByHash(hash string) (models.RefreshToken, bool) {
	for _, t := range s.refresh {
		if t.TokenHash == hash {
			return copyRefresh(t), true
		}
	}

	return models.RefreshToken{}, false
}

func (s *state) paletteNameTaken(userID int64, name string, exceptID int64) bool {
	for _, p := range s.palettes {
		if p.UserID == userID && p.Name == name && p.ID != exceptID {
			return true
		}
	}

	return false
}

func copyRefresh(t models.RefreshToken) models.RefreshToken {
	if t.RevokedAt != nil {
		v := *t.RevokedAt
		t.RevokedAt = &v
	}

	if t.ReplacedBy != nil {
		v := *t.ReplacedBy
		t.ReplacedBy = &v
	}

	return t
}

func copyCode(c models.PasswordResetCode) models.PasswordResetCode {
	if c.UsedAt != nil {
		v := *c.UsedAt
		c.UsedAt = &v
	}

	return c
}

func copyPalette(p models.Palette) models.Palette {
	p.Colors = append([]string(nil), p.Colors...)
	return p
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
