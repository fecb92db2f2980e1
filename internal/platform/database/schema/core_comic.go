package schema

// CoreComicTable represents the 'core.comic' table
type CoreComicTable struct {
	Table            string
	ID               string
	Title            string
	Slug             string
	Synopsis         string
	CoverURL         string
	Status           string
	UnlockPrice      string
	FreeChapterCount string
	ViewCount        string
	CreatedAt        string
	UpdatedAt        string
	DeletedAt        string
}

// CoreComic is the schema definition for core.comic
var CoreComic = CoreComicTable{
	Table:            "core.comic",
	ID:               "id",
	Title:            "title",
	Slug:             "slug",
	Synopsis:         "synopsis",
	CoverURL:         "coverurl",
	Status:           "status",
	UnlockPrice:      "unlockprice",
	FreeChapterCount: "freechaptercount",
	ViewCount:        "viewcount",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
	DeletedAt:        "deletedat",
}

func (t CoreComicTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Synopsis, t.CoverURL, t.Status, t.UnlockPrice,
		t.FreeChapterCount, t.ViewCount, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
