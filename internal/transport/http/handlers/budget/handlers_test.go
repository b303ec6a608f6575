package budgethandler

import (
	"net/http/httptest"
	"testing"
)

func TestReportFilterFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/budget/report/p1?memberId=m1&wageType=daily&start=2026-03-01&end=2026-03-31", nil)
	filter, v := ReportFilterFromRequest(req)
	if v.HasIssues() {
		t.Fatalf("unexpected validation issues: %+v", v.Issues())
	}
	if filter.MemberID != "m1" || filter.WageType != "daily" {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.StartDate == nil || filter.EndDate == nil {
		t.Fatal("expected both dates parsed")
	}
	if filter.StartDate.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("unexpected start date %v", filter.StartDate)
	}
}

func TestReportFilterOmittedDatesAreOptional(t *testing.T) {
	req := httptest.NewRequest("GET", "/budget/report/p1", nil)
	filter, v := ReportFilterFromRequest(req)
	if v.HasIssues() {
		t.Fatalf("unexpected validation issues: %+v", v.Issues())
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		t.Fatal("expected nil dates when absent")
	}
}

func TestReportFilterRejectsReversedRange(t *testing.T) {
	req := httptest.NewRequest("GET", "/budget/report/p1?start=2026-04-01&end=2026-03-01", nil)
	_, v := ReportFilterFromRequest(req)
	if !v.HasIssues() {
		t.Fatal("expected validation issues for reversed range")
	}
}

func TestReportFilterRejectsUnknownWageType(t *testing.T) {
	req := httptest.NewRequest("GET", "/budget/report/p1?wageType=weekly", nil)
	_, v := ReportFilterFromRequest(req)
	if !v.HasIssues() {
		t.Fatal("expected validation issues for unknown wage type")
	}
}
