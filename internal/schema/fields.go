package schema

import "github.com/uaepulse/pulse-backend/pkg/enums"

// Field describes one canonical column of a dataset schema together with
// the header spellings accepted for it. Alias comparison is
// case-insensitive and whitespace/underscore-normalized.
type Field struct {
	Name     string
	Aliases  []string
	Required bool
}

// Column name constants shared with the cleaning pipeline and reporting.
const (
	ColSKU             = "sku"
	ColCategory        = "category"
	ColBasePrice       = "base_price"
	ColUnitCost        = "unit_cost"
	ColBrand           = "brand"
	ColLaunchFlag      = "launch_flag"
	ColStoreID         = "store_id"
	ColCity            = "city"
	ColChannel         = "channel"
	ColFulfillmentType = "fulfillment_type"
	ColOrderID         = "order_id"
	ColQty             = "qty"
	ColSellingPrice    = "selling_price"
	ColOrderTime       = "order_time"
	ColDiscountPct     = "discount_pct"
	ColPaymentStatus   = "payment_status"
	ColReturnFlag      = "return_flag"
	ColStockOnHand     = "stock_on_hand"
	ColReorderPoint    = "reorder_point"
	ColLeadTimeDays    = "lead_time_days"
	ColSnapshotDate    = "snapshot_date"
)

var productFields = []Field{
	{Name: ColSKU, Aliases: []string{"product_id", "productid", "item_id"}, Required: true},
	{Name: ColCategory, Aliases: []string{"product_category", "cat"}, Required: true},
	{Name: ColBasePrice, Aliases: []string{"base_price_aed", "price", "list_price"}, Required: true},
	{Name: ColUnitCost, Aliases: []string{"unit_cost_aed", "cost", "cost_aed"}},
	{Name: ColBrand, Aliases: []string{"brand_name", "manufacturer"}},
	{Name: ColLaunchFlag, Aliases: []string{"launch", "is_new"}},
}

var storeFields = []Field{
	{Name: ColStoreID, Aliases: []string{"storeid", "store"}, Required: true},
	{Name: ColCity, Aliases: []string{"store_city", "location", "emirate"}, Required: true},
	{Name: ColChannel, Aliases: []string{"sales_channel", "store_channel"}, Required: true},
	{Name: ColFulfillmentType, Aliases: []string{"fulfillment", "fulfilment_type"}},
}

var salesFields = []Field{
	{Name: ColOrderID, Aliases: []string{"orderid", "transaction_id"}, Required: true},
	{Name: ColSKU, Aliases: []string{"product_id", "productid"}, Required: true},
	{Name: ColStoreID, Aliases: []string{"storeid"}, Required: true},
	{Name: ColQty, Aliases: []string{"quantity", "units"}, Required: true},
	{Name: ColSellingPrice, Aliases: []string{"selling_price_aed", "price", "amount", "sale_price"}, Required: true},
	{Name: ColOrderTime, Aliases: []string{"order_ts", "order_date", "timestamp"}},
	{Name: ColDiscountPct, Aliases: []string{"discount", "discount_percent"}},
	{Name: ColPaymentStatus, Aliases: []string{"payment", "pay_status", "status"}},
	{Name: ColReturnFlag, Aliases: []string{"is_returned", "returned"}},
}

var inventoryFields = []Field{
	{Name: ColSKU, Aliases: []string{"product_id", "productid"}, Required: true},
	{Name: ColStoreID, Aliases: []string{"storeid"}, Required: true},
	{Name: ColStockOnHand, Aliases: []string{"stock", "inventory", "on_hand", "quantity"}, Required: true},
	{Name: ColReorderPoint, Aliases: []string{"reorder", "reorder_level"}},
	{Name: ColLeadTimeDays, Aliases: []string{"lead_time", "leadtime"}},
	{Name: ColSnapshotDate, Aliases: []string{"as_of_date", "snapshot"}},
}

var fieldsByTable = map[enums.TableName][]Field{
	enums.TableProducts:  productFields,
	enums.TableStores:    storeFields,
	enums.TableSales:     salesFields,
	enums.TableInventory: inventoryFields,
}

// Fields returns the schema definition for a table type, nil when unknown.
func Fields(name enums.TableName) []Field {
	return fieldsByTable[name]
}

// RequiredColumns lists the canonical required column names for a table type.
func RequiredColumns(name enums.TableName) []string {
	var out []string
	for _, f := range fieldsByTable[name] {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}
