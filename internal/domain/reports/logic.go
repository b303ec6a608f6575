package reports

func WorkerDashboard(hoursThisMonth float64, daysWorked, pendingRecords int, billedTotal float64) map[string]interface{} {
	return map[string]interface{}{
		"hoursThisMonth": hoursThisMonth,
		"daysWorked":     daysWorked,
		"pendingRecords": pendingRecords,
		"billedTotal":    billedTotal,
	}
}

func SupervisorDashboard(pendingApprovals, supervisedProjects int, supervisedSpend float64) map[string]interface{} {
	return map[string]interface{}{
		"pendingApprovals":   pendingApprovals,
		"supervisedProjects": supervisedProjects,
		"supervisedSpend":    supervisedSpend,
	}
}

func AdminDashboard(activeProjects, totalMembers int, budgetAllocated, budgetBilled float64, draftInvoices int) map[string]interface{} {
	return map[string]interface{}{
		"activeProjects":  activeProjects,
		"totalMembers":    totalMembers,
		"budgetAllocated": budgetAllocated,
		"budgetBilled":    budgetBilled,
		"draftInvoices":   draftInvoices,
	}
}
