package schema

// BillingOrderTable represents the 'billing.orders' table
type BillingOrderTable struct {
	Table       string
	ID          string
	UserID      string
	ComicID     string
	ChapterID   string
	Kind        string
	Amount      string
	Status      string
	CreatedAt   string
	CompletedAt string
	FailedAt    string
}

// BillingOrder is the schema definition for billing.orders
var BillingOrder = BillingOrderTable{
	Table:       "billing.orders",
	ID:          "id",
	UserID:      "userid",
	ComicID:     "comicid",
	ChapterID:   "chapterid",
	Kind:        "kind",
	Amount:      "amount",
	Status:      "status",
	CreatedAt:   "createdat",
	CompletedAt: "completedat",
	FailedAt:    "failedat",
}

func (t BillingOrderTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ComicID, t.ChapterID, t.Kind, t.Amount, t.Status,
		t.CreatedAt, t.CompletedAt, t.FailedAt,
	}
}
