package domain

// Occupancy is an immutable guest-count tuple. Infants never count toward
// occupancy totals; extra beds count toward sleeping capacity only.
type Occupancy struct {
	Adults    int `json:"adults"`
	Children  int `json:"children"`
	Infants   int `json:"infants"`
	ExtraBeds int `json:"extra_beds"`
}

func NewOccupancy(adults, children, infants, extraBeds int) (Occupancy, error) {
	if adults < 1 {
		return Occupancy{}, &InvalidInputError{Field: "adults", Reason: "at least one adult required"}
	}
	if children < 0 || infants < 0 || extraBeds < 0 {
		return Occupancy{}, &InvalidInputError{Field: "occupancy", Reason: "counts must not be negative"}
	}
	return Occupancy{Adults: adults, Children: children, Infants: infants, ExtraBeds: extraBeds}, nil
}

// Total is the occupancy count that rate rules and room capacity apply to.
func (o Occupancy) Total() int { return o.Adults + o.Children }

// Sleeps is the number of sleeping places the party needs.
func (o Occupancy) Sleeps() int { return o.Adults + o.Children + o.ExtraBeds }
