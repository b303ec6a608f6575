package attendance

const (
	TypeFullDay   = "full_day"
	TypeHalfDay   = "half_day"
	TypeHourBased = "hour_based"
	TypeLeave     = "leave"

	LeaveSick     = "sick"
	LeaveVacation = "vacation"
	LeavePersonal = "personal"
)

var Types = []string{TypeFullDay, TypeHalfDay, TypeHourBased, TypeLeave}

var LeaveSubtypes = []string{LeaveSick, LeaveVacation, LeavePersonal}

func ValidType(value string) bool {
	for _, t := range Types {
		if t == value {
			return true
		}
	}
	return false
}

func ValidLeaveSubtype(value string) bool {
	for _, t := range LeaveSubtypes {
		if t == value {
			return true
		}
	}
	return false
}
