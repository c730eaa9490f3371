package listing

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

// View names.
const (
	ViewUsers         = "users"
	ViewAgents        = "agents"
	ViewLeads         = "leads"
	ViewProperties    = "properties"
	ViewSubscriptions = "subscriptions"
	ViewTransactions  = "transactions"
	ViewAgencies      = "agencies"
)

// View describes one list page: where it fetches from and which knobs the
// operator may turn.
type View struct {
	Key        string
	Path       string
	Collection string
	Fallback   string
	// Fixed parameters are sent on every fetch and cannot be overridden.
	Fixed url.Values
	// Filters are the entity filter keys the page exposes.
	Filters []string
	// Statuses limits the status dropdown; empty means any value.
	Statuses []string
	Columns  []Column
	// ClientSort sorts each page after it arrives instead of asking the
	// backend to sort.
	ClientSort bool
}

// Column looks up a sortable column.
func (v View) Column(name string) (Column, bool) {
	for _, c := range v.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Query is the backend query for state on this view.
func (v View) Query(state State) url.Values {
	q := state.Values(!v.ClientSort)
	for k, vals := range v.Fixed {
		q[k] = append([]string(nil), vals...)
	}
	return q
}

var activeStatuses = []string{"active", "inactive"}

var views = map[string]View{
	ViewUsers: {
		Key:        ViewUsers,
		Path:       "/users",
		Collection: "users",
		Fallback:   "Failed to load users",
		Filters:    []string{"role", "agency"},
		Statuses:   activeStatuses,
		Columns: []Column{
			nameColumn("name"),
			stringColumn("email", "email"),
			stringColumn("role", "role"),
			dateColumn("createdAt", "createdAt"),
		},
	},
	ViewAgents: {
		Key:        ViewAgents,
		Path:       "/users",
		Collection: "users",
		Fallback:   "Failed to load agents",
		Fixed:      url.Values{"role": {string(enums.UserRoleAgent)}},
		Filters:    []string{"agency"},
		Statuses:   activeStatuses,
		Columns: []Column{
			nameColumn("name"),
			stringColumn("email", "email"),
			numberColumn("totalSales", "agentInfo", "totalSales"),
			numberColumn("totalLeads", "agentInfo", "totalLeads"),
			numberColumn("rating", "agentInfo", "rating"),
			numberColumn("commissionRate", "agentInfo", "commissionRate"),
			dateColumn("createdAt", "createdAt"),
		},
		ClientSort: true,
	},
	ViewLeads: {
		Key:        ViewLeads,
		Path:       "/leads",
		Collection: "leads",
		Fallback:   "Failed to load leads",
		Filters:    []string{"priority", "source", "assignedAgent", "agency", "property"},
		Statuses:   enumStrings(enums.LeadStatusNew, enums.LeadStatusContacted, enums.LeadStatusSiteVisit, enums.LeadStatusNegotiation, enums.LeadStatusBooked, enums.LeadStatusClosed, enums.LeadStatusLost),
		Columns: []Column{
			nameColumn("name", "contact"),
			stringColumn("status", "status"),
			stringColumn("priority", "priority"),
			numberColumn("score", "score"),
			dateColumn("createdAt", "createdAt"),
		},
	},
	ViewProperties: {
		Key:        ViewProperties,
		Path:       "/properties",
		Collection: "properties",
		Fallback:   "Failed to load properties",
		Filters:    []string{"propertyType", "listingType", "city", "agency", "agent", "category", "featured"},
		Statuses:   enumStrings(enums.PropertyStatusDraft, enums.PropertyStatusPending, enums.PropertyStatusActive, enums.PropertyStatusSold, enums.PropertyStatusRented, enums.PropertyStatusInactive),
		Columns: []Column{
			stringColumn("title", "title"),
			numberColumn("price", "price", "sale"),
			stringColumn("city", "location", "city"),
			dateColumn("createdAt", "createdAt"),
		},
	},
	ViewSubscriptions: {
		Key:        ViewSubscriptions,
		Path:       "/subscriptions",
		Collection: "subscriptions",
		Fallback:   "Failed to load subscriptions",
		Filters:    []string{"provider", "user"},
		Statuses:   activeStatuses,
		Columns: []Column{
			stringColumn("plan", "plan", "plan_name"),
			numberColumn("price", "plan", "price"),
			dateColumn("startedAt", "startedAt"),
			dateColumn("endedAt", "endedAt"),
		},
	},
	ViewTransactions: {
		Key:        ViewTransactions,
		Path:       "/transactions",
		Collection: "transactions",
		Fallback:   "Failed to load transactions",
		Filters:    []string{"type", "agent", "property"},
		Statuses:   enumStrings(enums.TransactionStatusCompleted, enums.TransactionStatusPending, enums.TransactionStatusCancelled),
		Columns: []Column{
			numberColumn("amount", "amount"),
			stringColumn("type", "type"),
			dateColumn("transactionDate", "transactionDate"),
		},
	},
	ViewAgencies: {
		Key:        ViewAgencies,
		Path:       "/agencies",
		Collection: "agencies",
		Fallback:   "Failed to load agencies",
		Filters:    []string{"city"},
		Statuses:   activeStatuses,
		Columns: []Column{
			stringColumn("name", "name"),
			stringColumn("email", "email"),
			dateColumn("createdAt", "createdAt"),
		},
	},
}

// Lookup returns the named view.
func Lookup(key string) (View, bool) {
	v, ok := views[key]
	return v, ok
}

// Views lists every registered view key.
func Views() []string {
	out := make([]string, 0, len(views))
	for k := range views {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func enumStrings[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func (v View) allowsFilter(key string) bool {
	return slices.Contains(v.Filters, key)
}

func (v View) allowsStatus(status string) bool {
	return status == "" || len(v.Statuses) == 0 || slices.Contains(v.Statuses, status)
}

func unknown(kind, value, view string) error {
	return invalid(fmt.Sprintf("Unknown %s %q for %s", kind, strings.TrimSpace(value), view))
}
