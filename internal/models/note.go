// ABOUTME: Note model for the training diary: dated entries about a session or a reflection.
// ABOUTME: Notes carry a category, free text, tags, and an optional 1-5 mood.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoteCategory separates training notes from reflections.
type NoteCategory string

const (
	CategoryTraining   NoteCategory = "training"
	CategoryPhilosophy NoteCategory = "philosophy"
)

// Mood bounds.
const (
	MinMood = 1
	MaxMood = 5
)

// ParseNoteCategory accepts a category name case-insensitively. The French
// names used by older diaries map onto the same categories. An empty string
// means training.
func ParseNoteCategory(s string) (NoteCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "training", "entrainement", "entraînement":
		return CategoryTraining, nil
	case "philosophy", "philosophie", "reflection":
		return CategoryPhilosophy, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q (use training or philosophy)", ErrInvalidNote, s)
	}
}

// Note is one diary entry.
type Note struct {
	ID       uuid.UUID    `json:"id" yaml:"id"`
	Date     string       `json:"date" yaml:"date"`
	Category NoteCategory `json:"category" yaml:"category"`
	Title    string       `json:"title" yaml:"title"`
	Text     string       `json:"text" yaml:"text"`
	Tags     []string     `json:"tags" yaml:"tags"`
	Mood     *int         `json:"mood,omitempty" yaml:"mood,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewNote creates a Note with a generated UUID. Title and text are trimmed.
func NewNote(date string, category NoteCategory, title, text string) *Note {
	return &Note{
		ID:       uuid.New(),
		Date:     date,
		Category: category,
		Title:    strings.TrimSpace(title),
		Text:     strings.TrimSpace(text),
		Tags:     []string{},

		CreatedAt: time.Now(),
	}
}

// WithTags sets the tags, dropping blanks.
func (n *Note) WithTags(tags ...string) *Note {
	n.Tags = cleanTags(tags)
	return n
}

// WithMood sets the mood.
func (n *Note) WithMood(mood int) *Note {
	n.Mood = &mood
	return n
}

// ParseTags splits a comma-separated tag list.
func ParseTags(s string) []string {
	return cleanTags(strings.Split(s, ","))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DisplayTitle returns the title, or a label for the category when untitled.
func (n *Note) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	if n.Category == CategoryPhilosophy {
		return "Reflection"
	}
	return "Training"
}

// Matches reports whether query appears in the title, text, or tags,
// ignoring case. An empty query matches every note.
func (n *Note) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Text), q) ||
		strings.Contains(strings.ToLower(strings.Join(n.Tags, " ")), q)
}

// Validate checks the date, category, mood, and that the note says something.
func (n *Note) Validate() error {
	if _, err := ParseDateKey(n.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNote, err)
	}
	if n.Category != CategoryTraining && n.Category != CategoryPhilosophy {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidNote, n.Category)
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Text) == "" {
		return fmt.Errorf("%w: a title or text is required", ErrInvalidNote)
	}
	if n.Mood != nil && (*n.Mood < MinMood || *n.Mood > MaxMood) {
		return fmt.Errorf("%w: mood must be between %d and %d", ErrInvalidNote, MinMood, MaxMood)
	}
	return nil
}
