package engine

// String backed identifiers so persisted payloads and catalogs stay readable.

type ScreenID string
type PuzzleID string
type ViewKind string

const (
	ScreenHub         ScreenID = "hub"
	ScreenPins        ScreenID = "pins"
	ScreenSnippet     ScreenID = "snippet"
	ScreenBookmarks   ScreenID = "bookmarks"
	ScreenLoading     ScreenID = "loading"
	ScreenPassword    ScreenID = "password"
	ScreenFiles       ScreenID = "files"
	ScreenSlash       ScreenID = "slash"
	ScreenSwitchboard ScreenID = "switchboard"
	ScreenAlign       ScreenID = "align"
	ScreenFinale      ScreenID = "finale"
)

var AllScreens = []ScreenID{ScreenHub, ScreenPins, ScreenSnippet, ScreenBookmarks, ScreenLoading, ScreenPassword, ScreenFiles, ScreenSlash, ScreenSwitchboard, ScreenAlign, ScreenFinale}

const (
	PuzzlePins        PuzzleID = "pins"
	PuzzleSnippet     PuzzleID = "snippet"
	PuzzleBookmarks   PuzzleID = "bookmarks"
	PuzzleFiles       PuzzleID = "files"
	PuzzleSlash       PuzzleID = "slash"
	PuzzleSwitchboard PuzzleID = "switchboard"
	PuzzleAlign       PuzzleID = "align"
	PuzzleFinale      PuzzleID = "finale"
)

var AllPuzzles = []PuzzleID{PuzzlePins, PuzzleSnippet, PuzzleBookmarks, PuzzleFiles, PuzzleSlash, PuzzleSwitchboard, PuzzleAlign, PuzzleFinale}

const (
	ViewChannel ViewKind = "channel"
	ViewDirect  ViewKind = "direct"
)

// KnownScreen reports whether id is one of the built-in screens.
func KnownScreen(id ScreenID) bool {
	for _, s := range AllScreens {
		if s == id {
			return true
		}
	}
	return false
}
