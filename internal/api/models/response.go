package models

// ImportResponse reports the outcome of a merge run.
type ImportResponse struct {
	Status     string `json:"status"`
	FromDate   string `json:"from_date"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Filtered   int    `json:"filtered"`
}

// SummaryResponse mirrors model.CostSummary for JSON clients.
type SummaryResponse struct {
	Vendor             string             `json:"vendor"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	TotalDays          int                `json:"total_days"`
	DailyCosts         map[string]float64 `json:"daily_costs"`
	DailySolar         map[string]float64 `json:"daily_solar"`
	TotalUsageCost     float64            `json:"total_usage_cost"`
	TotalSolarCredit   float64            `json:"total_solar_credit"`
	TotalSupplyCharges float64            `json:"total_supply_charges"`
	NetCost            float64            `json:"net_cost"`
}

// Bucket is one rate-type slice of a breakdown.
type Bucket struct {
	KWh  float64 `json:"kwh"`
	Cost float64 `json:"cost"`
}

// SolarBucket is the feed-in slice of a breakdown.
type SolarBucket struct {
	KWh    float64 `json:"kwh"`
	Credit float64 `json:"credit"`
}

// BreakdownResponse mirrors model.BreakdownSummary for JSON clients.
type BreakdownResponse struct {
	Vendor             string            `json:"vendor"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	TotalDays          int               `json:"total_days"`
	Usage              map[string]Bucket `json:"usage"`
	Solar              SolarBucket       `json:"solar"`
	TotalUsageKWh      float64           `json:"total_usage_kwh"`
	TotalUsageCost     float64           `json:"total_usage_cost"`
	TotalSupplyCharges float64           `json:"total_supply_charges"`
	SubTotalCost       float64           `json:"sub_total_cost"`
	NetCost            float64           `json:"net_cost"`
}

// NMIInfo is one NMI found in a NEM12 file.
type NMIInfo struct {
	NMI      string   `json:"nmi"`
	Channels []string `json:"channels"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code plus a human-readable reason.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
