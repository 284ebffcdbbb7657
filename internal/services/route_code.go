package services

import (
	"fmt"
	"strings"
)

// GenerateRouteCode derives the short unique route identifier from the
// departure time text, the terminal stand codes, the bus class and the seat
// count: {HHMM}{departure}{arrival}{TYP}{seats}. Deterministic and pure;
// uniqueness is enforced by the store at persistence time, not here.
func GenerateRouteCode(departureTimeText, departureStandCode, arrivalStandCode, busType string, totalSeats int) string {
	timeCode := strings.ReplaceAll(departureTimeText, ":", "")
	if timeCode == "" {
		timeCode = "0000"
	}

	typeCode := busType
	if runes := []rune(typeCode); len(runes) > 3 {
		typeCode = string(runes[:3])
	}
	typeCode = strings.ToUpper(typeCode)

	return fmt.Sprintf("%s%s%s%s%d", timeCode, departureStandCode, arrivalStandCode, typeCode, totalSeats)
}
