package diet

import (
	"slices"

	"github.com/shiliao/dietplan/internal/domain/shared"
)

// NameSet is a set of food names
type NameSet map[string]struct{}

// Has reports membership
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts name
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Sorted returns the members in sorted order
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// WeeklyRecord is the repetition state of one generation run. The used sets
// only grow; the log is for diagnostics. A record must never be shared
// between two independent runs.
type WeeklyRecord struct {
	shared.AggregateRoot

	UsedStaples  NameSet
	UsedProteins NameSet

	log map[int]map[Slot]map[Role][]string
}

// NewWeeklyRecord creates an empty record
func NewWeeklyRecord() *WeeklyRecord {
	return &WeeklyRecord{
		UsedStaples:  NameSet{},
		UsedProteins: NameSet{},
		log:          make(map[int]map[Slot]map[Role][]string),
	}
}

// Log appends a picked name under day/slot/role
func (r *WeeklyRecord) Log(day int, slot Slot, role Role, name string) {
	slots, ok := r.log[day]
	if !ok {
		slots = make(map[Slot]map[Role][]string)
		r.log[day] = slots
	}
	roles, ok := slots[slot]
	if !ok {
		roles = make(map[Role][]string)
		slots[slot] = roles
	}
	roles[role] = append(roles[role], name)
}

// Logged returns the names logged for day/slot/role
func (r *WeeklyRecord) Logged(day int, slot Slot, role Role) []string {
	return slices.Clone(r.log[day][slot][role])
}

// LoggedForRole returns every name logged for role across the week, in day and slot order
func (r *WeeklyRecord) LoggedForRole(role Role) []string {
	var names []string
	for day := 1; day <= DaysPerWeek; day++ {
		for _, slot := range Slots() {
			names = append(names, r.log[day][slot][role]...)
		}
	}
	return names
}
