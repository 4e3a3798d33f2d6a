package enums

import "fmt"

// TableName identifies one of the four ingested datasets.
type TableName string

const (
	TableProducts  TableName = "products"
	TableStores    TableName = "stores"
	TableSales     TableName = "sales"
	TableInventory TableName = "inventory"
)

var validTableNames = []TableName{
	TableProducts,
	TableStores,
	TableSales,
	TableInventory,
}

// String implements fmt.Stringer.
func (t TableName) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TableName.
func (t TableName) IsValid() bool {
	for _, candidate := range validTableNames {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTableName converts the raw string to TableName.
func ParseTableName(value string) (TableName, error) {
	for _, candidate := range validTableNames {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table name %q", value)
}

// TableNames returns all dataset identifiers in ingestion order.
func TableNames() []TableName {
	out := make([]TableName, len(validTableNames))
	copy(out, validTableNames)
	return out
}
