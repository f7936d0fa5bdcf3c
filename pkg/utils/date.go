package utils

import (
	"log"
	"time"
)

// GetStockholmTimeLocation returns the Europe/Stockholm location used for
// report date stamping.
func GetStockholmTimeLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// TimeNowStockholm returns the current time in Europe/Stockholm.
func TimeNowStockholm() time.Time {
	return time.Now().In(GetStockholmTimeLocation())
}
