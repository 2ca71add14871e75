// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation, overwrite, and embedded content.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSkillInstallWritesFile verifies that the skill directory and file are
// created with the embedded content.
func TestSkillInstallWritesFile(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(home, strings.NewReader(""), &out, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	skillDir := filepath.Join(home, ".claude", "skills", "dojo")
	info, err := os.Stat(skillDir)
	if err != nil {
		t.Fatalf("Skill directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected skill path to be a directory")
	}
	if info.Mode().Perm()&0700 != 0700 {
		t.Errorf("Expected owner rwx on skill directory, got %v", info.Mode().Perm())
	}

	written, err := os.ReadFile(filepath.Join(skillDir, "SKILL.md"))
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if !bytes.Equal(written, embedded) {
		t.Error("Installed SKILL.md does not match the embedded copy")
	}
	if !strings.Contains(out.String(), "Installed dojo skill") {
		t.Errorf("Expected success message, got:\n%s", out.String())
	}
}

// TestSkillInstallDeclined verifies nothing is written without confirmation.
func TestSkillInstallDeclined(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(home, strings.NewReader("n\n"), &out, false); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".claude", "skills", "dojo", "SKILL.md")); !os.IsNotExist(err) {
		t.Error("Skill file should not exist after declining")
	}
	if !strings.Contains(out.String(), "Installation canceled.") {
		t.Errorf("Expected cancel message, got:\n%s", out.String())
	}
}

// TestSkillInstallOverwritesExistingFile verifies that a stale skill file is replaced.
func TestSkillInstallOverwritesExistingFile(t *testing.T) {
	home := t.TempDir()
	skillDir := filepath.Join(home, ".claude", "skills", "dojo")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	if err := os.MkdirAll(skillDir, 0755); err != nil {
		t.Fatalf("Failed to create skill directory: %v", err)
	}
	if err := os.WriteFile(skillPath, []byte("# Old Skill\nstale content"), 0644); err != nil {
		t.Fatalf("Failed to write old skill file: %v", err)
	}

	var out bytes.Buffer
	if err := installSkill(home, strings.NewReader("yes\n"), &out, false); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Error("Expected overwrite note in output")
	}

	newData, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Failed to read new skill file: %v", err)
	}
	if strings.Contains(string(newData), "stale content") {
		t.Error("Old content should have been replaced")
	}
	if !strings.Contains(string(newData), "name: dojo") {
		t.Error("Expected new content to contain 'name: dojo'")
	}
}

// TestSkillFSReadEmbeddedContent verifies the embedded SKILL.md has frontmatter
// and names the MCP tools it advertises.
func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}

	for _, marker := range []string{
		"name: dojo",
		"description:",
		"mcp__dojo__log_water",
		"mcp__dojo__toggle_supplement",
		"mcp__dojo__get_level",
		"mcp__dojo__create_program",
		"## When to use dojo",
	} {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}
