package models

// BloodGroup is one of the eight ABO/Rh groups.
type BloodGroup string

const (
	GroupAPos  BloodGroup = "A+"
	GroupANeg  BloodGroup = "A-"
	GroupBPos  BloodGroup = "B+"
	GroupBNeg  BloodGroup = "B-"
	GroupABPos BloodGroup = "AB+"
	GroupABNeg BloodGroup = "AB-"
	GroupOPos  BloodGroup = "O+"
	GroupONeg  BloodGroup = "O-"
)

// AllBloodGroups lists every group in dashboard display order.
var AllBloodGroups = []BloodGroup{
	GroupOPos, GroupONeg, GroupABPos, GroupABNeg,
	GroupAPos, GroupANeg, GroupBPos, GroupBNeg,
}

// Index returns a stable position in [0, 8) for the group, or -1 when invalid.
// The threshold table is an array indexed by this.
func (g BloodGroup) Index() int {
	switch g {
	case GroupOPos:
		return 0
	case GroupONeg:
		return 1
	case GroupABPos:
		return 2
	case GroupABNeg:
		return 3
	case GroupAPos:
		return 4
	case GroupANeg:
		return 5
	case GroupBPos:
		return 6
	case GroupBNeg:
		return 7
	}
	return -1
}

func (g BloodGroup) Valid() bool {
	return g.Index() >= 0
}

// Direction marks which way blood moved through an organisation's stock.
type Direction string

const (
	DirectionIn  Direction = "in"  // stock entering via donation
	DirectionOut Direction = "out" // stock leaving to a hospital
)
