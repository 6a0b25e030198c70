package wall

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/model"
)

// NoteCreator stores new notes.
type NoteCreator interface {
	Create(ctx context.Context, note model.NewNote) (uuid.UUID, error)
}

// FormController handles submissions of the new-note form.
type FormController struct {
	notes NoteCreator
	view  View
}

func NewFormController(notes NoteCreator, view View) *FormController {
	return &FormController{notes: notes, view: view}
}

// Submit creates a note for ownerID and resets the form.
// Incomplete forms and submissions without an owner are dropped and reported as not created.
func (f *FormController) Submit(ctx context.Context, ownerID uuid.UUID, form model.NoteForm) (bool, error) {
	if ownerID == uuid.Nil {
		return false, nil
	}
	if err := form.Validate(); err != nil {
		return false, nil
	}

	_, err := f.notes.Create(ctx, model.NewNote{
		OwnerID: ownerID,
		Date:    form.Date,
		Title:   strings.TrimSpace(form.Title),
		Body:    form.Body,
	})
	if err != nil {
		return false, err
	}

	f.view.ResetForm()
	return true, nil
}
