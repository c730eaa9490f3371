package enums

// LeadStatus is a stage in the sales pipeline.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusSiteVisit   LeadStatus = "site_visit"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusBooked      LeadStatus = "booked"
	LeadStatusClosed      LeadStatus = "closed"
	LeadStatusLost        LeadStatus = "lost"
)

// pipeline order; lost sits outside it.
var validLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusSiteVisit,
	LeadStatusNegotiation,
	LeadStatusBooked,
	LeadStatusClosed,
	LeadStatusLost,
}

func (s LeadStatus) String() string { return string(s) }

func (s LeadStatus) IsValid() bool {
	return isValid(validLeadStatuses, s)
}

// IsTerminal reports whether no further transition is allowed.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusClosed || s == LeadStatusLost
}

// Stage returns the pipeline position, or -1 for lost and unknown values.
func (s LeadStatus) Stage() int {
	if s == LeadStatusLost {
		return -1
	}
	for i, candidate := range validLeadStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

func ParseLeadStatus(value string) (LeadStatus, error) {
	return parse(validLeadStatuses, "lead status", value)
}

// LeadPriority is the temperature assigned to a lead.
type LeadPriority string

const (
	LeadPriorityHot           LeadPriority = "hot"
	LeadPriorityWarm          LeadPriority = "warm"
	LeadPriorityCold          LeadPriority = "cold"
	LeadPriorityNotInterested LeadPriority = "not_interested"
)

var validLeadPriorities = []LeadPriority{
	LeadPriorityHot,
	LeadPriorityWarm,
	LeadPriorityCold,
	LeadPriorityNotInterested,
}

func (p LeadPriority) String() string { return string(p) }

func (p LeadPriority) IsValid() bool {
	return isValid(validLeadPriorities, p)
}

func ParseLeadPriority(value string) (LeadPriority, error) {
	return parse(validLeadPriorities, "lead priority", value)
}
