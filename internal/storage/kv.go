// ABOUTME: Repository implementation over a generic key-value store.
// ABOUTME: Records are JSON values under day:, program:, supplement:, and note: key prefixes.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/dojo/internal/models"
)

// Key prefixes used by KVStore.
const (
	DayPrefix        = "day:"
	ProgramPrefix    = "program:"
	SupplementPrefix = "supplement:"
	NotePrefix       = "note:"
)

// KV is the minimal contract shared by the Badger and Charm Cloud backends.
// Get must return an error wrapping ErrNotFound for a missing key.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys(prefix []byte) ([][]byte, error)
	Close() error
}

// KVStore implements Repository on top of a KV.
type KVStore struct {
	kv KV
}

// Compile-time check that KVStore implements Repository.
var _ Repository = (*KVStore)(nil)

// NewKVStore wraps kv as a Repository.
func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

// Close closes the underlying KV.
func (s *KVStore) Close() error {
	return s.kv.Close()
}

// GetDay retrieves the log for date.
func (s *KVStore) GetDay(date string) (*models.DailyLog, error) {
	log, err := getJSON[models.DailyLog](s.kv, DayPrefix+date)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("day " + date)
	}
	if err != nil {
		return nil, fmt.Errorf("get day: %w", err)
	}
	return log.Normalize(), nil
}

// UpsertDay replaces the stored log for log.Date.
func (s *KVStore) UpsertDay(log *models.DailyLog) error {
	if _, err := models.ParseDateKey(log.Date); err != nil {
		return fmt.Errorf("upsert day: %w", err)
	}
	if err := setJSON(s.kv, DayPrefix+log.Date, log); err != nil {
		return fmt.Errorf("upsert day: %w", err)
	}
	return nil
}

// DeleteDay removes the log for date.
func (s *KVStore) DeleteDay(date string) error {
	key := []byte(DayPrefix + date)
	if _, err := s.kv.Get(key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("day " + date)
		}
		return fmt.Errorf("delete day: %w", err)
	}
	if err := s.kv.Delete(key); err != nil {
		return fmt.Errorf("delete day: %w", err)
	}
	return nil
}

// ListDays returns every stored day, oldest first.
func (s *KVStore) ListDays() ([]*models.DailyLog, error) {
	logs, err := listJSON[models.DailyLog](s.kv, DayPrefix)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	for _, log := range logs {
		log.Normalize()
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return logs, nil
}

// CreateProgram stores a new program.
func (s *KVStore) CreateProgram(p *models.Program) error {
	if err := setJSON(s.kv, ProgramPrefix+p.ID.String(), p); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// GetProgram retrieves a program by ID or ID prefix.
func (s *KVStore) GetProgram(idOrPrefix string) (*models.Program, error) {
	key, err := s.resolveKey(ProgramPrefix, idOrPrefix)
	if err != nil {
		return nil, err
	}
	p, err := getJSON[models.Program](s.kv, key)
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return p, nil
}

// ListPrograms returns all programs sorted by name.
func (s *KVStore) ListPrograms() ([]*models.Program, error) {
	programs, err := listJSON[models.Program](s.kv, ProgramPrefix)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	sort.SliceStable(programs, func(i, j int) bool {
		a, b := strings.ToLower(programs[i].Name), strings.ToLower(programs[j].Name)
		if a != b {
			return a < b
		}
		return programs[i].CreatedAt.Before(programs[j].CreatedAt)
	})
	return programs, nil
}

// UpdateProgram overwrites a stored program, matched by its full ID.
func (s *KVStore) UpdateProgram(p *models.Program) error {
	key := ProgramPrefix + p.ID.String()
	if _, err := s.kv.Get([]byte(key)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(p.ID.String())
		}
		return fmt.Errorf("update program: %w", err)
	}
	if err := setJSON(s.kv, key, p); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

// DeleteProgram removes a program by ID or prefix.
func (s *KVStore) DeleteProgram(idOrPrefix string) error {
	key, err := s.resolveKey(ProgramPrefix, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if err := s.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}

// CreateSupplement stores a new supplement.
func (s *KVStore) CreateSupplement(sup *models.Supplement) error {
	if err := setJSON(s.kv, SupplementPrefix+sup.ID.String(), sup); err != nil {
		return fmt.Errorf("create supplement: %w", err)
	}
	return nil
}

// GetSupplement retrieves a supplement by ID or ID prefix.
func (s *KVStore) GetSupplement(idOrPrefix string) (*models.Supplement, error) {
	key, err := s.resolveKey(SupplementPrefix, idOrPrefix)
	if err != nil {
		return nil, err
	}
	sup, err := getJSON[models.Supplement](s.kv, key)
	if err != nil {
		return nil, fmt.Errorf("get supplement: %w", err)
	}
	return sup, nil
}

// ListSupplements returns supplements in the order they were added.
func (s *KVStore) ListSupplements() ([]*models.Supplement, error) {
	sups, err := listJSON[models.Supplement](s.kv, SupplementPrefix)
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	sort.SliceStable(sups, func(i, j int) bool {
		return sups[i].CreatedAt.Before(sups[j].CreatedAt)
	})
	return sups, nil
}

// UpdateSupplement overwrites a stored supplement, matched by its full ID.
func (s *KVStore) UpdateSupplement(sup *models.Supplement) error {
	key := SupplementPrefix + sup.ID.String()
	if _, err := s.kv.Get([]byte(key)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(sup.ID.String())
		}
		return fmt.Errorf("update supplement: %w", err)
	}
	if err := setJSON(s.kv, key, sup); err != nil {
		return fmt.Errorf("update supplement: %w", err)
	}
	return nil
}

// DeleteSupplement removes a supplement by ID or prefix.
func (s *KVStore) DeleteSupplement(idOrPrefix string) error {
	key, err := s.resolveKey(SupplementPrefix, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}
	if err := s.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}
	return nil
}

// CreateNote stores a new note.
func (s *KVStore) CreateNote(n *models.Note) error {
	if err := setJSON(s.kv, NotePrefix+n.ID.String(), n); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by ID or ID prefix.
func (s *KVStore) GetNote(idOrPrefix string) (*models.Note, error) {
	key, err := s.resolveKey(NotePrefix, idOrPrefix)
	if err != nil {
		return nil, err
	}
	n, err := getJSON[models.Note](s.kv, key)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListNotes returns notes newest date first.
func (s *KVStore) ListNotes() ([]*models.Note, error) {
	notes, err := listJSON[models.Note](s.kv, NotePrefix)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Date != notes[j].Date {
			return notes[i].Date > notes[j].Date
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// UpdateNote overwrites a stored note, matched by its full ID.
func (s *KVStore) UpdateNote(n *models.Note) error {
	key := NotePrefix + n.ID.String()
	if _, err := s.kv.Get([]byte(key)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(n.ID.String())
		}
		return fmt.Errorf("update note: %w", err)
	}
	if err := setJSON(s.kv, key, n); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by ID or prefix.
func (s *KVStore) DeleteNote(idOrPrefix string) error {
	key, err := s.resolveKey(NotePrefix, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if err := s.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// GetAllData retrieves all data for export.
func (s *KVStore) GetAllData() (*ExportData, error) {
	return collectData(s)
}

// ImportData imports data from an export file.
func (s *KVStore) ImportData(data *ExportData) error {
	return importData(s, data)
}

// resolveKey finds the full key for an ID prefix under typePrefix.
func (s *KVStore) resolveKey(typePrefix, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", notFound("empty id")
	}
	if isFullUUID(idOrPrefix) {
		key := typePrefix + idOrPrefix
		if _, err := s.kv.Get([]byte(key)); err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", notFound(idOrPrefix)
			}
			return "", err
		}
		return key, nil
	}

	keys, err := s.kv.Keys([]byte(typePrefix + idOrPrefix))
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	switch len(keys) {
	case 0:
		return "", notFound(idOrPrefix)
	case 1:
		return string(keys[0]), nil
	default:
		return "", ambiguous(idOrPrefix)
	}
}

func getJSON[T any](kv KV, key string) (*T, error) {
	data, err := kv.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &out, nil
}

func setJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set([]byte(key), data)
}

func listJSON[T any](kv KV, prefix string) ([]*T, error) {
	keys, err := kv.Keys([]byte(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(keys))
	for _, key := range keys {
		v, err := getJSON[T](kv, string(key))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
