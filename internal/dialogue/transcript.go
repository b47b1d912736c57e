package dialogue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cory-johannsen/notevillage/internal/village"
)

// TranscriptFolder is the vault subdirectory conversations are saved under.
const TranscriptFolder = "Conversations"

// TranscriptWriter appends finished conversations into the vault as
// markdown, one file per villager.
type TranscriptWriter struct {
	vaultRoot string
}

// NewTranscriptWriter creates a writer rooted at the vault directory.
//
// Precondition: vaultRoot must be non-empty.
func NewTranscriptWriter(vaultRoot string) *TranscriptWriter {
	return &TranscriptWriter{vaultRoot: vaultRoot}
}

// Append writes the conversation to the villager's transcript file, creating
// the file and the Conversations folder as needed.
//
// Precondition: turns must be non-empty.
// Postcondition: Returns the vault-relative path of the transcript file.
func (w *TranscriptWriter) Append(v village.Villager, turns []Turn, at time.Time) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("dialogue: transcript for %s has no turns", v.ID)
	}

	dir := filepath.Join(w.vaultRoot, TranscriptFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dialogue: creating transcript folder: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(TranscriptFolder, transcriptFileName(v)))
	path := filepath.Join(dir, transcriptFileName(v))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("dialogue: opening transcript %s: %w", rel, err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "## Conversation with %s — %s\n\n", v.DisplayName, at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Note: [[%s]]\n\n", strings.TrimSuffix(v.NotePath, ".md"))
	for _, t := range turns {
		speaker := "Player"
		if t.Role == RoleVillager {
			speaker = v.DisplayName
		}
		fmt.Fprintf(&b, "**%s:** %s\n\n", speaker, t.Text)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return "", fmt.Errorf("dialogue: writing transcript %s: %w", rel, err)
	}
	return rel, nil
}

// transcriptFileName sanitizes the villager's display name into a markdown
// file name.
func transcriptFileName(v village.Villager) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, v.DisplayName)
	if name == "" {
		name = v.ID
	}
	return name + ".md"
}
