package schema

// LibraryEntitlementTable represents the 'library.entitlement' table
type LibraryEntitlementTable struct {
	Table              string
	UserID             string
	ComicID            string
	IsFavorited        string
	PurchasedAt        string
	LastReadChapterID  string
	LastReadPageNumber string
	LastReadAt         string
	CreatedAt          string
	UpdatedAt          string
}

// LibraryEntitlement is the schema definition for library.entitlement
var LibraryEntitlement = LibraryEntitlementTable{
	Table:              "library.entitlement",
	UserID:             "userid",
	ComicID:            "comicid",
	IsFavorited:        "isfavorited",
	PurchasedAt:        "purchasedat",
	LastReadChapterID:  "lastreadchapterid",
	LastReadPageNumber: "lastreadpagenumber",
	LastReadAt:         "lastreadat",
	CreatedAt:          "createdat",
	UpdatedAt:          "updatedat",
}

func (t LibraryEntitlementTable) Columns() []string {
	return []string{
		t.UserID, t.ComicID, t.IsFavorited, t.PurchasedAt, t.LastReadChapterID,
		t.LastReadPageNumber, t.LastReadAt, t.CreatedAt, t.UpdatedAt,
	}
}
