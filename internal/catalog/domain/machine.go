package catalog

import "time"

// Machine statuses.
const (
	MachineStatusNormal = "normal"
	MachineStatusFault  = "fault"
)

// Machine is a vending machine placed at a location.
type Machine struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
	RegionCode string    `json:"region_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidMachineStatus reports whether status is a known machine status.
func ValidMachineStatus(status string) bool {
	return status == MachineStatusNormal || status == MachineStatusFault
}
