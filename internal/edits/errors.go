package edits

import "errors"

var (
	ErrCannotUndo     = errors.New("edits: undo not available")
	ErrCannotRedo     = errors.New("edits: redo not available")
	ErrNotAlive       = errors.New("edits: edit no longer alive")
	ErrNoJournal      = errors.New("edits: edit has no target journal")
	ErrAlreadyApplied = errors.New("edits: edit already applied")
	ErrNotApplied     = errors.New("edits: edit has not been applied")
	ErrForeignJournal = errors.New("edits: edit targets another journal")
)
