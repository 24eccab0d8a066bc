// Package policy holds the quota rules that decide whether an admission
// attempt may proceed. It is pure: the service gathers occupancy counters
// from storage and the policy turns them into a verdict, which keeps every
// rule unit-testable without a database.
package policy

import "upasana/pkg/model"

// Reason codes returned on rejection
const (
	ReasonNotAValidSlotDay      = "NOT_A_VALID_SLOT_DAY"
	ReasonNotSaturday           = "NOT_SATURDAY"
	ReasonNotSunday             = "NOT_SUNDAY"
	ReasonSaturdaysNotExhausted = "SATURDAYS_NOT_EXHAUSTED"
	ReasonYearLimitExceeded     = "YEAR_LIMIT_EXCEEDED"
	ReasonDateClosedForMember   = "DATE_PERMANENTLY_CLOSED_FOR_MEMBER"
	ReasonZoneAMemberCap        = "ZONE_A_MEMBER_CAP"
	ReasonZoneACollectiveCap    = "ZONE_A_COLLECTIVE_CAP"
	ReasonReservedForZoneA      = "RESERVED_FOR_ZONE_A"
	ReasonZoneBCMemberCap       = "ZONE_BC_MEMBER_CAP"
	ReasonZoneBCCollectiveCap   = "ZONE_BC_COLLECTIVE_CAP"
	ReasonSlotAlreadyTaken      = "SLOT_ALREADY_TAKEN"
	ReasonMemberNotFound        = "MEMBER_NOT_FOUND"
)

// Monthly caps per quota pool. Zone A members get one visit a month and
// the zone as a whole gets one; zones B and C share a pool of two.
const (
	ZoneAMemberMonthlyCap  = 1
	ZoneAZoneMonthlyCap    = 1
	ZoneBCMemberMonthlyCap = 2
	ZoneBCZoneMonthlyCap   = 2

	MemberYearlyCap = 1
)

// Counters is the occupancy snapshot the service reads under the slot
// lock. All counts include only active bookings.
type Counters struct {
	ValidSlotDay       bool // date is a season Saturday (or Sunday, per pool)
	SaturdaysExhausted bool // every season Saturday is fully booked (Sunday pool only)
	CancelledOnDate    bool // member previously cancelled this exact date

	MemberYear  int // member's bookings across both pools this season
	MemberMonth int // member's bookings in the date's month
	ZoneMonth   int // bookings in the member's quota pool this month
	ZoneAMonth  int // zone A bookings this month (for the reservation rule)

	SlotsRemainingInMonth int // slot dates in the month with spare capacity, this date included
	DateActive            int // active bookings on this date
	DateCapacity          int // seats on this date
}

// Verdict is the policy outcome for one attempt
type Verdict struct {
	Admitted bool
	Reason   string
}

func admit() Verdict          { return Verdict{Admitted: true} }
func reject(r string) Verdict { return Verdict{Reason: r} }

// Evaluate applies the quota rules in their fixed order. zoneRestriction
// toggles the zone-scoped monthly caps, including the rule that holds the
// last open slot date of a month for zone A until that zone has booked.
func Evaluate(pool model.Pool, zone model.Zone, c Counters, zoneRestriction bool) Verdict {
	if !c.ValidSlotDay {
		switch pool {
		case model.PoolSunday:
			return reject(ReasonNotSunday)
		default:
			return reject(ReasonNotSaturday)
		}
	}

	if pool == model.PoolSunday && !c.SaturdaysExhausted {
		return reject(ReasonSaturdaysNotExhausted)
	}

	if c.MemberYear >= MemberYearlyCap {
		return reject(ReasonYearLimitExceeded)
	}

	if c.CancelledOnDate {
		return reject(ReasonDateClosedForMember)
	}

	if zoneRestriction {
		if zone == model.ZoneA {
			if c.MemberMonth >= ZoneAMemberMonthlyCap {
				return reject(ReasonZoneAMemberCap)
			}
			if c.ZoneMonth >= ZoneAZoneMonthlyCap {
				return reject(ReasonZoneACollectiveCap)
			}
		} else {
			if c.MemberMonth >= ZoneBCMemberMonthlyCap {
				return reject(ReasonZoneBCMemberCap)
			}
			if c.ZoneMonth >= ZoneBCZoneMonthlyCap {
				return reject(ReasonZoneBCCollectiveCap)
			}
			if c.SlotsRemainingInMonth <= 1 && c.ZoneAMonth == 0 {
				return reject(ReasonReservedForZoneA)
			}
		}
	}

	if c.DateActive >= c.DateCapacity {
		return reject(ReasonSlotAlreadyTaken)
	}

	return admit()
}
