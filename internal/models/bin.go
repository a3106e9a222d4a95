package models

// Bin is a waste bin tracked by the fleet.
type Bin struct {
	ID             string  `json:"id"`
	BinNumber      int     `json:"bin_number"`
	CurrentStreet  string  `json:"current_street"`
	City           string  `json:"city"`
	Zip            string  `json:"zip"`
	FillPercentage int     `json:"fill_percentage"`
	Status         string  `json:"status"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// BinList is the cached form of the bins collection.
type BinList []Bin

// DeepCopy implements cache.Cloner.
func (l BinList) DeepCopy() any {
	if l == nil {
		return BinList(nil)
	}
	out := make(BinList, len(l))
	copy(out, l)
	return out
}

// Driver is a driver account with its current shift, if any.
type Driver struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Status  string `json:"status"`
	ShiftID string `json:"shift_id,omitempty"`
}

// DriverList is the cached form of the drivers collection.
type DriverList []Driver

// DeepCopy implements cache.Cloner.
func (l DriverList) DeepCopy() any {
	if l == nil {
		return DriverList(nil)
	}
	out := make(DriverList, len(l))
	copy(out, l)
	return out
}
