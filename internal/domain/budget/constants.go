package budget

const (
	WageTypeDaily   = "daily"
	WageTypeMonthly = "monthly"

	// DefaultWorkingDaysPerMonth converts a monthly salary to a daily rate
	// when the wage config does not set its own divisor.
	DefaultWorkingDaysPerMonth = 26

	// FullDayHours is the fixed full-day-equivalent denominator for
	// hour-based attendance.
	FullDayHours = 8

	// DefaultHourFallback substitutes for missing or non-positive hours on
	// hour-based attendance.
	DefaultHourFallback = 1

	// DefaultFullDayEquivalentHours is the report-bucketing threshold: an
	// hour-based record at or above it counts as a full day, below it as a
	// half day. Overridable per Service.
	DefaultFullDayEquivalentHours = 6
)

var WageTypes = []string{WageTypeDaily, WageTypeMonthly}
