package budget

import (
	"testing"

	"github.com/shopspring/decimal"

	"sitecrew/internal/domain/attendance"
)

func dailyBasis(rate float64) WageBasis {
	return WageBasis{
		MemberID:  "member-1",
		ProjectID: "project-1",
		WageType:  WageTypeDaily,
		DailyRate: decimal.NewFromFloat(rate),
	}
}

func monthlyBasis(salary float64, workingDays int) WageBasis {
	return WageBasis{
		MemberID:            "member-1",
		ProjectID:           "project-1",
		WageType:            WageTypeMonthly,
		MonthlySalary:       decimal.NewFromFloat(salary),
		WorkingDaysPerMonth: workingDays,
	}
}

func TestCalcAmount(t *testing.T) {
	tests := []struct {
		name           string
		basis          WageBasis
		attendanceType string
		hours          float64
		want           float64
	}{
		{name: "daily full day", basis: dailyBasis(100), attendanceType: attendance.TypeFullDay, want: 100},
		{name: "daily half day", basis: dailyBasis(100), attendanceType: attendance.TypeHalfDay, want: 50},
		{name: "monthly full day default divisor", basis: monthlyBasis(2600, 0), attendanceType: attendance.TypeFullDay, want: 100},
		{name: "monthly full day explicit divisor", basis: monthlyBasis(2600, 26), attendanceType: attendance.TypeFullDay, want: 100},
		{name: "monthly half day", basis: monthlyBasis(2600, 26), attendanceType: attendance.TypeHalfDay, want: 50},
		{name: "hour based four hours", basis: dailyBasis(80), attendanceType: attendance.TypeHourBased, hours: 4, want: 40},
		{name: "hour based full eight hours", basis: dailyBasis(80), attendanceType: attendance.TypeHourBased, hours: 8, want: 80},
		{name: "hour based zero hours floors to one", basis: dailyBasis(80), attendanceType: attendance.TypeHourBased, hours: 0, want: 10},
		{name: "hour based negative hours floors to one", basis: dailyBasis(80), attendanceType: attendance.TypeHourBased, hours: -3, want: 10},
		{name: "leave is unpaid", basis: dailyBasis(100), attendanceType: attendance.TypeLeave, want: 0},
		{name: "leave unpaid on monthly too", basis: monthlyBasis(2600, 26), attendanceType: attendance.TypeLeave, want: 0},
		{name: "unknown type contributes nothing", basis: dailyBasis(100), attendanceType: "overtime", want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Round2(CalcAmount(tc.basis, tc.attendanceType, tc.hours))
			if got != tc.want {
				t.Fatalf("expected %.2f, got %.2f", tc.want, got)
			}
		})
	}
}

func TestCalcAmountIsIdempotent(t *testing.T) {
	basis := monthlyBasis(3900, 26)
	first := CalcAmount(basis, attendance.TypeHourBased, 5)
	second := CalcAmount(basis, attendance.TypeHourBased, 5)
	if !first.Equal(second) {
		t.Fatalf("expected identical results, got %s and %s", first, second)
	}
}

func TestCalcAmountNoCompoundedRounding(t *testing.T) {
	// 100/26 is periodic; summing 26 full days must land exactly on the
	// monthly salary once rounded at the edge.
	basis := monthlyBasis(100, 26)
	total := decimal.Zero
	for i := 0; i < 26; i++ {
		total = total.Add(CalcAmount(basis, attendance.TypeFullDay, 0))
	}
	if got := Round2(total); got != 100 {
		t.Fatalf("expected 100.00 after 26 full days, got %.2f", got)
	}
}

func TestEffectiveDailyRateDefaultsDivisor(t *testing.T) {
	basis := monthlyBasis(5200, -4)
	want := decimal.NewFromFloat(200)
	if got := basis.EffectiveDailyRate(); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMonthlyProjection(t *testing.T) {
	if got := Round2(monthlyBasis(2600, 26).MonthlyProjection()); got != 2600 {
		t.Fatalf("expected monthly salary projection 2600, got %.2f", got)
	}
	if got := Round2(dailyBasis(100).MonthlyProjection()); got != 2600 {
		t.Fatalf("expected daily projection 2600, got %.2f", got)
	}
}

func TestSumLines(t *testing.T) {
	basis := map[string]WageBasis{
		"member-a": dailyBasis(100),
		"member-b": monthlyBasis(2600, 26),
	}
	lines := []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeFullDay},
		{MemberID: "member-b", AttendanceType: attendance.TypeHalfDay},
		{MemberID: "member-c", AttendanceType: attendance.TypeFullDay}, // no wage config
		{MemberID: "member-a", AttendanceType: attendance.TypeLeave},
	}
	if got := Round2(SumLines(basis, lines)); got != 150 {
		t.Fatalf("expected 150.00, got %.2f", got)
	}
}

func TestSumLinesEmpty(t *testing.T) {
	if got := Round2(SumLines(nil, nil)); got != 0 {
		t.Fatalf("expected 0 for empty assignment list, got %.2f", got)
	}
}
