package ingest

import (
	"fmt"

	"meter-billing/internal/model"
)

// defaultDeviceType is used for NEM12 imports; the retailer export carries a
// real device type but the interval format does not.
const defaultDeviceType = "COMMS4D"

// Convert turns raw source records into canonical readings: the register
// code is "<serial>#<suffix>" and the channel suffix decides the rate type
// description.
func Convert(raw []RawReading) []model.MeterReading {
	out := make([]model.MeterReading, 0, len(raw))
	for _, rr := range raw {
		quality := rr.Quality
		if quality == "" {
			quality = "A"
		}
		out = append(out, model.MeterReading{
			NMI:              rr.NMI,
			DeviceNumber:     rr.Serial,
			DeviceType:       defaultDeviceType,
			RegisterCode:     fmt.Sprintf("%s#%s", rr.Serial, rr.Suffix),
			RateType:         model.RateTypeFromSuffix(rr.Suffix),
			StartTime:        rr.Start,
			EndTime:          rr.End,
			ProfileReadValue: rr.Value,
			QualityFlag:      quality,
		})
	}
	return out
}
