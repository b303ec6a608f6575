package budget

import (
	"github.com/shopspring/decimal"

	"sitecrew/internal/domain/attendance"
)

var (
	two   = decimal.NewFromInt(2)
	eight = decimal.NewFromInt(FullDayHours)
)

// CalcAmount computes the budget for one member on one work-unit from their
// wage basis and recorded attendance. Leave is unpaid regardless of subtype;
// hour-based attendance is scaled against an eight-hour day, with missing or
// non-positive hours treated as one hour.
func CalcAmount(basis WageBasis, attendanceType string, hours float64) decimal.Decimal {
	rate := basis.EffectiveDailyRate()
	switch attendanceType {
	case attendance.TypeFullDay:
		return rate
	case attendance.TypeHalfDay:
		return rate.Div(two)
	case attendance.TypeHourBased:
		if hours <= 0 {
			hours = DefaultHourFallback
		}
		return rate.Div(eight).Mul(decimal.NewFromFloat(hours))
	case attendance.TypeLeave:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// SumLines totals CalcAmount over priced lines for one work-unit. Lines
// without a wage basis contribute zero.
func SumLines(basis map[string]WageBasis, lines []LineInput) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		b, ok := basis[line.MemberID]
		if !ok {
			continue
		}
		total = total.Add(CalcAmount(b, line.AttendanceType, line.Hours))
	}
	return total
}

// Round2 rounds to currency precision. Applied only at display/aggregation
// edges so intermediate sums do not compound rounding error.
func Round2(value decimal.Decimal) float64 {
	rounded, _ := value.Round(2).Float64()
	return rounded
}
