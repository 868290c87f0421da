package engine

import "fmt"

// Reason names the policy rule that selected a card.
type Reason int

const (
	LeadHighestNo7 Reason = iota + 1
	LeadHighest
	FollowSuitWinLow
	FollowSuitLowAvoid7
	FollowSuitLow
	CutWithLowTrumpNo7
	CutWithLowTrump
	OvertrumpLowNo7
	OvertrumpLow
	DumpTrumpLowNo7
	DumpTrumpLow
	DiscardLowest
)

var reasonTags = map[Reason]string{
	LeadHighestNo7:      "lead_highest_no7",
	LeadHighest:         "lead_highest",
	FollowSuitWinLow:    "follow_suit_win_low",
	FollowSuitLowAvoid7: "follow_suit_low_avoid7",
	FollowSuitLow:       "follow_suit_low",
	CutWithLowTrumpNo7:  "cut_with_low_trump_no7",
	CutWithLowTrump:     "cut_with_low_trump",
	OvertrumpLowNo7:     "overtrump_low_no7",
	OvertrumpLow:        "overtrump_low",
	DumpTrumpLowNo7:     "dump_trump_low_no7",
	DumpTrumpLow:        "dump_trump_low",
	DiscardLowest:       "discard_lowest",
}

// Reasons lists every reason in decision-procedure order.
var Reasons = []Reason{
	LeadHighestNo7, LeadHighest,
	FollowSuitWinLow, FollowSuitLowAvoid7, FollowSuitLow,
	CutWithLowTrumpNo7, CutWithLowTrump,
	OvertrumpLowNo7, OvertrumpLow,
	DumpTrumpLowNo7, DumpTrumpLow,
	DiscardLowest,
}

func (r Reason) String() string {
	if tag, ok := reasonTags[r]; ok {
		return tag
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

func (r Reason) MarshalText() ([]byte, error) {
	tag, ok := reasonTags[r]
	if !ok {
		return nil, fmt.Errorf("unknown reason %d", int(r))
	}
	return []byte(tag), nil
}

func (r *Reason) UnmarshalText(text []byte) error {
	for reason, tag := range reasonTags {
		if tag == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}
