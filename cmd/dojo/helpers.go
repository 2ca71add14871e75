// ABOUTME: Shared helpers for dojo CLI commands.
// ABOUTME: Date flag parsing, text padding, and confirmation prompts.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/harperreed/dojo/internal/models"
)

var faint = color.New(color.Faint)

// resolveDate turns a --date flag into a day key. Empty means today;
// "yesterday" and negative offsets like "-2" are relative to today.
func resolveDate(s string) (string, error) {
	now := time.Now()
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "", "today":
		return models.DateKey(now), nil
	case "yesterday":
		return models.DateKey(now.AddDate(0, 0, -1)), nil
	}
	if strings.HasPrefix(s, "-") {
		var days int
		if _, err := fmt.Sscanf(s, "-%d", &days); err == nil && days >= 0 {
			return models.DateKey(now.AddDate(0, 0, -days)), nil
		}
	}
	if _, err := models.ParseDateKey(s); err != nil {
		return "", fmt.Errorf("invalid date: %s (use YYYY-MM-DD, today, yesterday, or -N)", s)
	}
	return s, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// confirm prints prompt and reports whether the reply matches one of want.
func confirm(in io.Reader, out io.Writer, prompt string, want ...string) bool {
	fmt.Fprint(out, prompt)
	reply, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && reply == "" {
		return false
	}
	reply = strings.TrimSpace(reply)
	for _, w := range want {
		if strings.EqualFold(reply, w) {
			return true
		}
	}
	return false
}

// formatSeconds renders a countdown as m:ss.
func formatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// describeTarget renders an exercise target such as "12 reps" or "0:30".
func describeTarget(e models.ProgramExercise) string {
	if e.IsTimed() {
		return formatSeconds(e.Target.TimeSec)
	}
	return fmt.Sprintf("%d reps", e.Target.Reps)
}
