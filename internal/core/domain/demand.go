package domain

// NetDemandRow is the per-SKU reorder decision for one partition.
type NetDemandRow struct {
	SKU            string
	TotalQuantity  int
	ProductName    string
	AvailableStock int
	ReservedStock  int
	SupplierID     int
	PackSize       int
	MOQ            int
	SafetyStock    int
	NetDemand      int
	OrderQuantity  int
}

// Replenishment computes net demand and the resulting order quantity for one
// SKU. All arithmetic is integral. Order of operations matters: pack rounding
// floors first, then the MOQ floor is applied, which keeps the result a pack
// multiple as long as the MOQ itself is one. Net demand below one pack floors
// to zero and the SKU is not ordered.
func Replenishment(totalQty, safetyStock, available, reserved, packSize, moq int) (netDemand, orderQty int) {
	netDemand = totalQty + safetyStock - (available - reserved)
	if netDemand < 0 {
		netDemand = 0
	}
	if packSize <= 0 {
		return netDemand, 0
	}
	orderQty = netDemand / packSize * packSize
	if orderQty > 0 && orderQty < moq {
		orderQty = moq
	}
	return netDemand, orderQty
}
