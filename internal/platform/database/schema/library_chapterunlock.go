package schema

// LibraryChapterUnlockTable represents the 'library.chapterunlock' table
type LibraryChapterUnlockTable struct {
	Table      string
	UserID     string
	ComicID    string
	ChapterID  string
	OrderID    string
	UnlockedAt string
}

// LibraryChapterUnlock is the schema definition for library.chapterunlock
var LibraryChapterUnlock = LibraryChapterUnlockTable{
	Table:      "library.chapterunlock",
	UserID:     "userid",
	ComicID:    "comicid",
	ChapterID:  "chapterid",
	OrderID:    "orderid",
	UnlockedAt: "unlockedat",
}

func (t LibraryChapterUnlockTable) Columns() []string {
	return []string{t.UserID, t.ComicID, t.ChapterID, t.OrderID, t.UnlockedAt}
}
