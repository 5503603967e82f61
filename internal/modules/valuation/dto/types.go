package dto

type ClassifyInput struct {
	ItemID      int64
	Name        string
	Quality     int
	Class       int
	Subclass    int
	VendorPrice int64
}

type ItemInput struct {
	ItemID      int64
	Name        string
	Quality     int
	Class       int
	Subclass    int
	VendorPrice int64
}

type ItemOutput struct {
	ItemID      int64
	Name        string
	Quality     string
	Class       int
	Subclass    int
	VendorPrice int64
	Bucket      string
}

type PriceInput struct {
	ItemID int64
	Copper int64
}

type Appraisal struct {
	ItemID       int64
	Name         string
	Quality      string
	Bucket       string
	VendorPrice  int64
	MarketPrice  int64
	ValuePerUnit int64
}
