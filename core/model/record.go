package model

// SavingsRecord is one timestamped carbon/fuel measurement attributed to a
// device. DeviceTimestamp is opaque text; its temporal meaning is only
// established at query time, in the queried device's timezone. The
// fueld_saved spelling comes from the source dataset and is part of the
// wire contract.
type SavingsRecord struct {
	DeviceID        int     `json:"device_id"`
	DeviceTimestamp string  `json:"device_timestamp"`
	CarbonSaved     float64 `json:"carbon_saved"`
	FueldSaved      float64 `json:"fueld_saved"`
}
