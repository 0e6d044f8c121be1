package loot

import "math"

// ExperienceMultiplier returns the per-damage-point XP multiplier for a
// player of playerLevel killing a mob of mobLevel: fighting up pays
// linearly more, fighting down pays exponentially less.
//
// Postcondition: Returns >= 0; equal levels return 1.
func ExperienceMultiplier(mobLevel, playerLevel int) float64 {
	if mobLevel >= playerLevel {
		return float64(mobLevel - playerLevel + 1)
	}
	return 1 / math.Pow(2, float64(playerLevel-mobLevel))
}

// ExperienceForDamage converts credited damage into an XP award.
//
// Postcondition: Returns 0 for zero credit, otherwise at least 1.
func ExperienceForDamage(credited, mobLevel, playerLevel int) int {
	if credited <= 0 {
		return 0
	}
	xp := int(float64(credited) * ExperienceMultiplier(mobLevel, playerLevel))
	if xp < 1 {
		xp = 1
	}
	return xp
}

// SplitGold divides a gold reward evenly among members, with floor
// division and a minimum share of 1. The undistributed remainder is
// returned to the caller, which must account for it (log or discard)
// rather than silently dropping it.
//
// Precondition: members must be >= 1.
// Postcondition: share >= 1 when total >= 1; remainder >= 0;
// share*members + remainder == total whenever total >= members.
func SplitGold(total, members int) (share, remainder int) {
	if members < 1 {
		members = 1
	}
	if total < 1 {
		return 0, 0
	}
	share = total / members
	if share < 1 {
		// Everyone gets a coin even when the purse is short; the mint
		// absorbs the difference.
		return 1, 0
	}
	return share, total - share*members
}
