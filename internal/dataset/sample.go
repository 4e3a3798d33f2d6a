package dataset

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Sample holds one generated demo dataset.
type Sample struct {
	Products  *table.Table
	Stores    *table.Table
	Sales     *table.Table
	Inventory *table.Table
}

var (
	sampleCategories = []string{
		"Electronics", "Fashion", "Grocery", "Beauty", "Home", "Sports",
		// deliberately dirty variants the cleaner is expected to repair
		"electronics", "Fashon", "groceries",
	}
	sampleCities = []string{
		"Dubai", "Abu Dhabi", "Sharjah", "Ajman",
		"dubai", "DXB", "Sharja",
	}
	sampleChannels = []string{
		"Online", "Store", "Marketplace",
		"app", "ONLINE",
	}
	sampleFulfillments   = []string{"Own", "3PL", "in-house", ""}
	samplePayments       = []string{"Paid", "Paid", "Paid", "paid", "Failed", "Refunded"}
	sampleReturnFlags    = []string{"false", "false", "false", "true", "yes", "N", "maybe"}
	sampleLaunchFlags    = []string{"New", "Regular", "regular", ""}
	sampleProductCount   = 40
	sampleStoreCount     = 12
	sampleHistoryDays    = 60
	sampleInventoryEvery = 2 // every other sku-store pair gets a snapshot
)

// GenerateSample produces a deterministic, deliberately messy demo dataset:
// variant spellings, blanks, negative numbers, duplicate keys, dangling
// foreign keys and a few corrupted timestamps, so a fresh install has
// something for the cleaning pipeline to chew on. The same seed and clock
// always produce the same bytes.
func GenerateSample(seed uint64, orders int, now time.Time) Sample {
	faker := gofakeit.New(int64(seed))
	day := now.Truncate(24 * time.Hour)

	products := table.New("sku", "category", "base_price", "unit_cost", "brand", "launch_flag")
	skus := make([]string, sampleProductCount)
	for i := range skus {
		skus[i] = fmt.Sprintf("SKU-%04d", 1001+i)
		price := faker.Float64Range(10, 500)
		cost := price * faker.Float64Range(0.4, 0.8)
		priceCell := fmt.Sprintf("%.2f", price)
		costCell := fmt.Sprintf("%.2f", cost)
		switch faker.Number(1, 20) {
		case 1:
			costCell = "" // missing cost, imputed from price
		case 2:
			costCell = fmt.Sprintf("%.2f", price*1.3) // inverted margin
		case 3:
			priceCell = fmt.Sprintf("%.2f", -price) // negative price
		}
		products.AppendRow(
			skus[i],
			faker.RandomString(sampleCategories),
			priceCell,
			costCell,
			faker.Company(),
			faker.RandomString(sampleLaunchFlags),
		)
	}
	// one duplicate sku so dedup always has work
	products.AppendRow(skus[0], "Electronics", "99.00", "55.00", faker.Company(), "Regular")

	stores := table.New("store_id", "city", "channel", "fulfillment_type")
	storeIDs := make([]string, sampleStoreCount)
	for i := range storeIDs {
		storeIDs[i] = fmt.Sprintf("ST-%02d", 1+i)
		stores.AppendRow(
			storeIDs[i],
			faker.RandomString(sampleCities),
			faker.RandomString(sampleChannels),
			faker.RandomString(sampleFulfillments),
		)
	}

	sales := table.New("order_id", "sku", "store_id", "qty", "selling_price", "order_time", "discount_pct", "payment_status", "return_flag")
	for i := 0; i < orders; i++ {
		orderID := fmt.Sprintf("ORD-%05d", 1+i)
		sku := faker.RandomString(skus)
		qty := fmt.Sprintf("%d", faker.Number(1, 5))
		price := fmt.Sprintf("%.2f", faker.Float64Range(10, 500))
		orderTime := day.AddDate(0, 0, -faker.Number(0, sampleHistoryDays-1)).
			Add(time.Duration(faker.Number(8, 22)) * time.Hour).
			Format("2006-01-02 15:04:05")
		discount := fmt.Sprintf("%d", faker.Number(0, 30))

		switch faker.Number(1, 25) {
		case 1:
			qty = fmt.Sprintf("%d", -faker.Number(1, 3))
		case 2:
			price = ""
		case 3:
			sku = "SKU-9999" // dangling FK
		case 4:
			orderTime = "2015-01-01 00:00:00" // before the epoch boundary
		case 5:
			orderTime = day.AddDate(0, 0, 30).Format("2006-01-02 15:04:05") // future
		case 6:
			discount = ""
		case 7:
			orderID = fmt.Sprintf("ORD-%05d", 1+faker.Number(0, i)) // duplicate
		}

		sales.AppendRow(
			orderID,
			sku,
			faker.RandomString(storeIDs),
			qty,
			price,
			orderTime,
			discount,
			faker.RandomString(samplePayments),
			faker.RandomString(sampleReturnFlags),
		)
	}

	inventory := table.New("sku", "store_id", "stock_on_hand", "reorder_point", "lead_time_days", "snapshot_date")
	snapshot := day.AddDate(0, 0, -1).Format("2006-01-02")
	pair := 0
	for _, sku := range skus {
		for _, storeID := range storeIDs {
			pair++
			if pair%sampleInventoryEvery != 0 {
				continue
			}
			stock := fmt.Sprintf("%d", faker.Number(0, 200))
			reorder := fmt.Sprintf("%d", faker.Number(5, 30))
			lead := fmt.Sprintf("%d", faker.Number(1, 10))
			switch faker.Number(1, 20) {
			case 1:
				stock = fmt.Sprintf("%d", -faker.Number(1, 10))
			case 2:
				reorder = ""
			case 3:
				lead = ""
			}
			inventory.AppendRow(sku, storeID, stock, reorder, lead, snapshot)
		}
	}

	return Sample{Products: products, Stores: stores, Sales: sales, Inventory: inventory}
}
