package dto

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type QuoteInput struct {
	PluginName string
	ItemID     int64
}

type QuoteOutput struct {
	PluginName string
	ItemID     int64
	Copper     int64
	Found      bool
}
