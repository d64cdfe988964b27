package edits

import "fmt"

// Description is a human-readable summary such as `add entry "Dues"`.
func (e *Edit) Description() string {
	switch e.kind {
	case KindEntrySet:
		verb := "remove"
		if e.adding {
			verb = "add"
		}
		if len(e.entries) == 1 && e.entries[0] != nil {
			return fmt.Sprintf("%s entry %q", verb, e.entries[0].Name())
		}
		return fmt.Sprintf("%s %d entries", verb, len(e.entries))
	case KindEntryReplace:
		if e.oldEntry != nil {
			return fmt.Sprintf("change entry %q", e.oldEntry.Name())
		}
		return "change entry"
	case KindReadingPoint:
		verb := "remove"
		if e.adding {
			verb = "add"
		}
		if e.point == nil {
			return verb + " reading point"
		}
		return fmt.Sprintf("%s reading point %q", verb, e.point.Name())
	case KindStartValue:
		switch {
		case e.newValue == nil:
			return fmt.Sprintf("clear start value of %s", e.accountID)
		case e.oldValue == nil:
			return fmt.Sprintf("set start value of %s to %s", e.accountID, e.newValue.StringFixed(2))
		}
		return fmt.Sprintf("change start value of %s from %s to %s", e.accountID, e.oldValue.StringFixed(2), e.newValue.StringFixed(2))
	case KindName:
		return fmt.Sprintf("rename journal to %q", e.newText)
	case KindDescription:
		return "change journal description"
	}
	return "edit"
}

// UndoDescription is the label for undoing this edit.
func (e *Edit) UndoDescription() string { return "Undo " + e.Description() }

// RedoDescription is the label for redoing this edit.
func (e *Edit) RedoDescription() string { return "Redo " + e.Description() }
