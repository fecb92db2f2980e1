package schema

// BillingBalanceLedgerTable represents the 'billing.balanceledger' table
type BillingBalanceLedgerTable struct {
	Table        string
	ID           string
	UserID       string
	Delta        string
	BalanceAfter string
	Reason       string
	OrderID      string
	Note         string
	CreatedAt    string
}

// BillingBalanceLedger is the schema definition for billing.balanceledger
var BillingBalanceLedger = BillingBalanceLedgerTable{
	Table:        "billing.balanceledger",
	ID:           "id",
	UserID:       "userid",
	Delta:        "delta",
	BalanceAfter: "balanceafter",
	Reason:       "reason",
	OrderID:      "orderid",
	Note:         "note",
	CreatedAt:    "createdat",
}

func (t BillingBalanceLedgerTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Delta, t.BalanceAfter, t.Reason, t.OrderID, t.Note, t.CreatedAt,
	}
}
