package models

// ImportRequest asks the server to merge a NEM12 file into the canonical
// dataset. FromDate is optional; when empty the import continues after the
// last stored entry for the NMI.
type ImportRequest struct {
	File     string `json:"file" binding:"required"`
	NMI      string `json:"nmi" binding:"required"`
	FromDate string `json:"from_date,omitempty"` // YYYY-MM-DD
}

// BillingRequest selects a vendor and a closed date range for a bill.
type BillingRequest struct {
	Vendor    string `form:"vendor" binding:"required"`
	StartDate string `form:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `form:"end_date" binding:"required"`   // YYYY-MM-DD
}

// ListNMIsRequest names the NEM12 file to inspect.
type ListNMIsRequest struct {
	File string `form:"file" binding:"required"`
}
