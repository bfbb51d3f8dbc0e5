package domain

// OrderLine is one product line within a captured customer order.
type OrderLine struct {
	OrderID     string
	StoreID     string
	OrderDate   Partition
	OrderTime   string
	SKU         string
	ProductName string
	Quantity    int
}

// AggregatedDemand is the per-SKU summed order quantity for one partition.
type AggregatedDemand struct {
	SKU           string
	TotalQuantity int
	ProductName   string
}
