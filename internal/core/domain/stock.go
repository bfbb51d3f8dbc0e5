package domain

// StockSnapshot is the end-of-day inventory of one SKU at one warehouse.
type StockSnapshot struct {
	WarehouseCode     string
	SKU               string
	ProductName       string
	AvailableQuantity int
	ReservedQuantity  int
	SnapshotDate      Partition
	SnapshotTime      string
}

// StockPosition is the network-wide position of one SKU, summed across all
// warehouse snapshots of a partition.
type StockPosition struct {
	SKU       string
	Available int
	Reserved  int
}
