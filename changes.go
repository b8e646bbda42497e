package etfwatch

// ChangeKind tells what happened to a holding between two snapshots.
type ChangeKind int

const (
	Removed ChangeKind = iota // in the previous snapshot only
	Added                     // in today's snapshot only
	Renamed                   // same identifier, different company name
)

func (k ChangeKind) String() string {
	switch k {
	case Removed:
		return "removed"
	case Added:
		return "added"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Change is a structural change in a fund's holdings.
type Change struct {
	Kind    ChangeKind
	Fund    string
	Ticker  string
	Company string

	// PreviousCompany is the former name of a renamed holding.
	PreviousCompany string

	// Position is the 1-based position of an added holding in today's
	// snapshot, and Count the number of holdings in that snapshot.
	Position int
	Count    int
}

// DetectChanges lists the holdings removed from, added to and renamed in a fund.
//
// Holdings are matched on their key (the CUSIP), so that a company changing
// its name is reported as renamed rather than as removed and added.
// Removed holdings come first in yesterday's order, then added holdings and
// renamed holdings, each in today's order.
func DetectChanges(today, yesterday *Snapshot) []Change {
	var changes []Change
	for _, h := range yesterday.Holdings() {
		if _, ok := today.Lookup(h.Key()); !ok {
			changes = append(changes, Change{
				Kind:    Removed,
				Fund:    today.Fund(),
				Ticker:  h.Ticker,
				Company: h.Company,
			})
		}
	}

	var renamed []Change
	for i, h := range today.Holdings() {
		prev, ok := yesterday.Lookup(h.Key())
		switch {
		case !ok:
			changes = append(changes, Change{
				Kind:     Added,
				Fund:     today.Fund(),
				Ticker:   h.Ticker,
				Company:  h.Company,
				Position: i + 1,
				Count:    today.Len(),
			})
		case prev.Company != h.Company:
			renamed = append(renamed, Change{
				Kind:            Renamed,
				Fund:            today.Fund(),
				Ticker:          h.Ticker,
				Company:         h.Company,
				PreviousCompany: prev.Company,
			})
		}
	}
	return append(changes, renamed...)
}
