package domain

import "time"

// Allotment is the per-room-type, per-date inventory row, unique on
// (room_type_id, date). MinStay/MaxStay of 0 mean unconstrained.
type Allotment struct {
	ID         int64
	RoomTypeID int64
	Date       time.Time
	Quantity   int
	Allocated  int
	StopSell   bool
	MinStay    int
	MaxStay    int
	CTA        bool // closed to arrival
	CTD        bool // closed to departure
}

func (a Allotment) Remaining() int {
	if r := a.Quantity - a.Allocated; r > 0 {
		return r
	}
	return 0
}

func (a Allotment) Bookable() bool {
	return !a.StopSell && a.Remaining() > 0
}
