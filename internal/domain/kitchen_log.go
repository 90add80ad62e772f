package domain

import "time"

// KitchenLogCategories lists the accepted incident categories.
var KitchenLogCategories = []string{
	"Reporting Issue",
	"Kot Process",
	"Behaviour Issue",
	"Grooming",
	"Assigned Task Not Completed",
}

// ValidKitchenLogCategory reports whether category is accepted.
func ValidKitchenLogCategory(category string) bool {
	for _, c := range KitchenLogCategories {
		if c == category {
			return true
		}
	}
	return false
}

// KitchenLog is an incident note about a staff member. StaffID may be nil for
// staff not yet provisioned; EmpID and EmpName then carry the snapshot.
type KitchenLog struct {
	ID             string
	StaffID        *string
	EmpID          string
	EmpName        string
	LocationCode   string
	Category       string
	Remarks        string
	LogDate        time.Time
	CreatedByID    string
	IsAcknowledged bool
	AcknowledgedAt *time.Time
	CreatedAt      time.Time
}
