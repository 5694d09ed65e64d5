package opk

import "github.com/pkg/errors"

// Tier is the customer classification label derived from credit.
type Tier string

const (
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// ClassifyCredit maps a credit value to a tier:
//
//	1 <= credit <= 1000      Silver
//	1000 < credit <= 25000   Gold
//	credit > 25000           Platinum
//
// Credit values of zero or below have no defined tier and return
// ErrInvalidCredit rather than silently defaulting.
func ClassifyCredit(credit int64) (Tier, error) {
	switch {
	case credit <= 0:
		return "", errors.Wrapf(ErrInvalidCredit, "credit %d", credit)
	case credit <= 1000:
		return TierSilver, nil
	case credit <= 25000:
		return TierGold, nil
	default:
		return TierPlatinum, nil
	}
}
