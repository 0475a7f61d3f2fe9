package engine

import "github.com/henri123lemoine/grain/internal/cursor"

// Action is a logical input, decoded from keys by the app.
type Action int

const (
	MoveUp Action = iota
	MoveDown
	MoveHome
	MoveEnd
	DiffDown
	DiffUp
	PageDown
	PageUp
	HalfPageDown
	HalfPageUp
	ScrollLeft
	ScrollRight
	StageOrEnter
	StageLine
	DiscardSelection
	DiscardLine
	IgnoreSelection
	SwitchFocus
	Undo
	Redo
	StageAllShortcut
	UnstageAllShortcut
	BeginAmend
	BeginReorder
	SwapUp
	SwapDown
	ToggleFixup
	ToggleDiscard
	ConfirmReorder
	CancelReorder
	EditReorderMessage
	BeginFind
	Refresh
)

var actionNames = [...]string{
	MoveUp:             "move-up",
	MoveDown:           "move-down",
	MoveHome:           "home",
	MoveEnd:            "end",
	DiffDown:           "diff-down",
	DiffUp:             "diff-up",
	PageDown:           "page-down",
	PageUp:             "page-up",
	HalfPageDown:       "half-page-down",
	HalfPageUp:         "half-page-up",
	ScrollLeft:         "scroll-left",
	ScrollRight:        "scroll-right",
	StageOrEnter:       "stage",
	StageLine:          "stage-line",
	DiscardSelection:   "discard",
	DiscardLine:        "discard-line",
	IgnoreSelection:    "ignore",
	SwitchFocus:        "switch",
	Undo:               "undo",
	Redo:               "redo",
	StageAllShortcut:   "stage-all",
	UnstageAllShortcut: "unstage-all",
	BeginAmend:         "amend",
	BeginReorder:       "reorder",
	SwapUp:             "swap-up",
	SwapDown:           "swap-down",
	ToggleFixup:        "fixup",
	ToggleDiscard:      "drop",
	ConfirmReorder:     "confirm-reorder",
	CancelReorder:      "cancel-reorder",
	EditReorderMessage: "reword",
	BeginFind:          "find",
	Refresh:            "refresh",
}

func (a Action) String() string {
	if int(a) >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Do performs a. Actions that make no sense in the current state are
// ignored; errors are also kept for the status line.
func (e *Engine) Do(a Action) error {
	switch e.mode {
	case ModeReorder:
		return e.doReorder(a)
	case ModeNormal:
	default:
		// Text modes take input through the dedicated methods.
		return nil
	}

	switch a {
	case MoveUp:
		e.cur.MoveUp(e.itemCount(e.cur.Focus()))
	case MoveDown:
		e.cur.MoveDown(e.itemCount(e.cur.Focus()))
	case MoveHome:
		e.cur.Home(e.itemCount(e.cur.Focus()))
	case MoveEnd:
		e.cur.End(e.itemCount(e.cur.Focus()))
	case DiffDown:
		e.cur.MoveLine(1, e.lineCount())
	case DiffUp:
		e.cur.MoveLine(-1, e.lineCount())
	case PageDown:
		e.cur.Page(1, false, e.lineCount())
	case PageUp:
		e.cur.Page(-1, false, e.lineCount())
	case HalfPageDown:
		e.cur.Page(1, true, e.lineCount())
	case HalfPageUp:
		e.cur.Page(-1, true, e.lineCount())
	case ScrollLeft:
		e.cur.ScrollLeft()
	case ScrollRight:
		e.cur.ScrollRight(e.widest())
	case StageOrEnter:
		return e.stageOrEnter()
	case StageLine:
		return e.stageLine()
	case DiscardSelection:
		return e.discardSelection()
	case DiscardLine:
		return e.discardLine()
	case IgnoreSelection:
		return e.ignoreSelection()
	case SwitchFocus:
		e.SwitchFocus(true)
	case Undo:
		return e.undo()
	case Redo:
		return e.redo()
	case StageAllShortcut:
		return e.stageAll()
	case UnstageAllShortcut:
		return e.unstageAll()
	case BeginAmend:
		e.beginAmend()
	case BeginReorder:
		e.beginReorder()
	case BeginFind:
		if len(e.files(e.cur.Focus())) > 0 {
			e.mode = ModeFind
		}
	case Refresh:
		if err := e.reload(true); err != nil {
			return err
		}
		e.succeed("refreshed")
	}
	return nil
}

// doReorder handles actions while reorder mode is active.
func (e *Engine) doReorder(a Action) error {
	switch a {
	case MoveUp:
		e.reorder.Move(-1)
	case MoveDown:
		e.reorder.Move(1)
	case MoveHome:
		e.reorder.Move(-len(e.repo.Commits))
	case MoveEnd:
		e.reorder.Move(len(e.repo.Commits))
	case SwapUp:
		e.reorder.Swap(-1)
	case SwapDown:
		e.reorder.Swap(1)
	case ToggleFixup:
		e.reorder.ToggleFixup()
	case ToggleDiscard, DiscardSelection:
		e.reorder.ToggleDiscard()
	case Undo:
		e.reorder.Undo()
	case Redo:
		e.reorder.Redo()
	case EditReorderMessage:
		if _, ok := e.reorder.Selected(); ok {
			e.mode = ModeReorderMessage
		}
	case ConfirmReorder, StageOrEnter:
		return e.confirmReorder()
	case CancelReorder:
		e.cancelReorder()
	}
	return nil
}

// focusedFileCount is used to detect a screen that has just been emptied.
func (e *Engine) focusedFileCount() int {
	return len(e.files(e.cur.Focus()))
}

// Focus returns the focused screen.
func (e *Engine) Focus() cursor.Screen { return e.cur.Focus() }
