package outreach

import (
	"errors"
	"strings"
)

// MaxNoteLength is the platform's character limit for connection notes.
const MaxNoteLength = 300

// ClampNote truncates a note to MaxNoteLength characters, replacing the
// tail with an ellipsis marker when it was longer. Counts runes, not
// bytes, because the limit is a character limit.
func ClampNote(note string) string {
	r := []rune(note)
	if len(r) <= MaxNoteLength {
		return note
	}
	return string(r[:MaxNoteLength-3]) + "..."
}

// NoteResult reports how the composer fared. Method names which
// fallback technique succeeded and exists only for diagnostics.
type NoteResult struct {
	Success bool
	Method  string
	Err     error
}

var addNoteRules = []Rule{
	{Selector: "button[aria-label='Add a note']"},
	{Selector: "button", Text: `^Add a note$`},
	{Selector: "button.artdeco-button--secondary", Text: `Add a note`},
}

var noteFieldRules = []Rule{
	{Selector: "textarea[name='message']"},
	{Selector: "textarea#custom-message"},
	{Selector: "textarea[id*='custom-message']"},
	{Selector: "textarea[aria-label*='note']"},
}

var composeContainerRules = []Rule{
	{Selector: "div.send-invite"},
	{Selector: "div.artdeco-modal__content"},
	{Selector: "div[role='dialog']"},
}

// ComposeNote injects the note into the invite dialog, trying three
// techniques in order: reveal the field via the "Add a note" button,
// use a field that is already visible, and finally click the dialog
// body to force the field to render. Best effort; the dispatcher sends
// the invite without a note when all three fail.
func ComposeNote(p Page, note string, t Timing) NoteResult {
	note = ClampNote(note)

	btn, err := FirstMatch(p, "Add a note button", addNoteRules, t.Find)
	if err == nil {
		if err := btn.Click(); err == nil {
			t.settle()
			if err := populateNoteField(p, note, t); err == nil {
				return NoteResult{Success: true, Method: "add-note-button"}
			} else if isSessionError(err) {
				return NoteResult{Err: err}
			}
		} else if isSessionError(err) {
			return NoteResult{Err: err}
		}
	} else if isSessionError(err) {
		return NoteResult{Err: err}
	}

	if err := populateNoteField(p, note, t); err == nil {
		return NoteResult{Success: true, Method: "direct-field"}
	} else if isSessionError(err) {
		return NoteResult{Err: err}
	}

	if container, err := FirstMatch(p, "compose dialog body", composeContainerRules, t.Find); err == nil {
		if err := container.Click(); err == nil {
			t.settle()
			if err := populateNoteField(p, note, t); err == nil {
				return NoteResult{Success: true, Method: "container-expand"}
			} else if isSessionError(err) {
				return NoteResult{Err: err}
			}
		}
	} else if isSessionError(err) {
		return NoteResult{Err: err}
	}

	return NoteResult{Err: &StructuralError{Target: "note field"}}
}

// populateNoteField types the note and confirms the field actually
// holds it. Content comparison tolerates whitespace trimming on either
// side.
func populateNoteField(p Page, note string, t Timing) error {
	field, err := FirstMatch(p, "note field", noteFieldRules, t.Find)
	if err != nil {
		return err
	}
	// Focus and reset are best effort; stale residue is caught by the
	// content check below.
	_ = field.Click()
	_ = field.Clear()
	if err := field.Input(note); err != nil {
		if isSessionError(err) {
			return err
		}
		return &StructuralError{Target: "note field", Err: err}
	}
	got, err := field.Text()
	if err != nil {
		if isSessionError(err) {
			return err
		}
		return &StructuralError{Target: "note field", Err: err}
	}
	if !strings.Contains(strings.TrimSpace(got), strings.TrimSpace(note)) {
		return &StructuralError{Target: "note field", Err: errContentMismatch}
	}
	return nil
}

var errContentMismatch = errors.New("typed note did not stick")
