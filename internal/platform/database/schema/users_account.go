package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Role         string
	Balance      string
	Version      string
	IsVIP        string
	VIPExpiresAt string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Role:         "role",
	Balance:      "balance",
	Version:      "version",
	IsVIP:        "isvip",
	VIPExpiresAt: "vipexpiresat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Role, t.Balance, t.Version,
		t.IsVIP, t.VIPExpiresAt, t.CreatedAt, t.UpdatedAt,
	}
}
