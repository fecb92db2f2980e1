package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table       string
	ID          string
	ComicID     string
	Number      string
	Title       string
	IsFree      string
	PageCount   string
	PublishedAt string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:       "core.chapter",
	ID:          "id",
	ComicID:     "comicid",
	Number:      "chapternumber",
	Title:       "title",
	IsFree:      "isfree",
	PageCount:   "pagecount",
	PublishedAt: "publishedat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.Number, t.Title, t.IsFree, t.PageCount,
		t.PublishedAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
