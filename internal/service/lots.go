package service

import (
	"fmt"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// centTolerance is the residual below which a lot or a remaining request is
// treated as fully consumed. Keeps float drift from resurrecting dust lots.
const centTolerance = 0.001

// quantityTolerance is the equivalent threshold for unit quantities, which
// can be legitimately tiny for crypto holdings.
const quantityTolerance = 1e-9

// holdingDays computes whole days between a lot opening and a reference time,
// floored.
func holdingDays(openedAt, asOf time.Time) int {
	d := int(asOf.Sub(openedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// MatchFIFO allocates a currency-denominated withdrawal across open lots,
// oldest first. lotValues[i] is the current value of lots[i] as of asOf.
//
// Consumption works in current-value terms: each lot covers
// min(remaining, lotValue); principal, quantity and unrealized gain are
// prorated by the fraction of the lot's value consumed. Returns
// apperrors.ErrInsufficientBalance when the lots are exhausted before the
// request is satisfied; no partial result is returned in that case.
func MatchFIFO(lots []model.Lot, lotValues []float64, amount float64, asOf time.Time) ([]model.LotConsumption, error) {
	if len(lots) != len(lotValues) {
		return nil, fmt.Errorf("lots and lotValues length mismatch: %d vs %d", len(lots), len(lotValues))
	}

	remaining := amount
	consumptions := []model.LotConsumption{}

	for i, lot := range lots {
		if remaining <= centTolerance {
			break
		}

		value := lotValues[i]
		if value <= centTolerance {
			continue
		}

		take := remaining
		if take > value {
			take = value
		}
		fraction := take / value

		gain := value - lot.RemainingPrincipal
		if gain < 0 {
			gain = 0
		}

		consumptions = append(consumptions, model.LotConsumption{
			LotID:             lot.OriginTransactionID,
			PrincipalConsumed: lot.RemainingPrincipal * fraction,
			QuantityConsumed:  lot.RemainingQuantity * fraction,
			HoldingDays:       holdingDays(lot.OpenedAt, asOf),
			GrossGainConsumed: gain * fraction,
		})

		remaining -= take
	}

	if remaining > centTolerance {
		return nil, apperrors.ErrInsufficientBalance
	}

	return consumptions, nil
}

// applyConsumptions reduces lots in place by the matched amounts. Remaining
// fields only ever decrease; a fully consumed lot stays at zero.
func applyConsumptions(lots []model.Lot, consumptions []model.LotConsumption) {
	byID := make(map[string]*model.Lot, len(lots))
	for i := range lots {
		byID[lots[i].OriginTransactionID] = &lots[i]
	}

	for _, c := range consumptions {
		lot, ok := byID[c.LotID]
		if !ok {
			continue
		}
		lot.RemainingPrincipal -= c.PrincipalConsumed
		lot.RemainingQuantity -= c.QuantityConsumed
		if lot.RemainingPrincipal < centTolerance {
			lot.RemainingPrincipal = 0
		}
		if lot.RemainingQuantity < quantityTolerance {
			lot.RemainingQuantity = 0
		}
	}
}

// consumeQuantityFIFO reduces lots in place by a quantity-denominated
// withdrawal, oldest lot first, prorating principal by the quantity fraction
// taken from each lot. Used when replaying market-priced assets, where
// historical consumption is defined by quantity, not by value at the time.
// Overdraws are tolerated: an edited history that makes an old withdrawal
// larger than what was held simply drains every lot.
//
// The returned consumptions carry no gain; the caller allocates the
// withdrawal's recorded proceeds across them to derive gains.
func consumeQuantityFIFO(lots []model.Lot, quantity float64, asOf time.Time) []model.LotConsumption {
	remaining := quantity
	consumptions := []model.LotConsumption{}
	for i := range lots {
		if remaining <= quantityTolerance {
			break
		}
		lot := &lots[i]
		if lot.RemainingQuantity <= quantityTolerance {
			continue
		}

		take := remaining
		if take > lot.RemainingQuantity {
			take = lot.RemainingQuantity
		}
		fraction := take / lot.RemainingQuantity

		consumptions = append(consumptions, model.LotConsumption{
			LotID:             lot.OriginTransactionID,
			PrincipalConsumed: lot.RemainingPrincipal * fraction,
			QuantityConsumed:  take,
			HoldingDays:       holdingDays(lot.OpenedAt, asOf),
		})

		lot.RemainingPrincipal -= lot.RemainingPrincipal * fraction
		lot.RemainingQuantity -= take
		if lot.RemainingQuantity < quantityTolerance {
			lot.RemainingQuantity = 0
		}
		if lot.RemainingPrincipal < centTolerance {
			lot.RemainingPrincipal = 0
		}
		remaining -= take
	}
	return consumptions
}

// consumeValueFIFO reduces lots in place by a currency-denominated withdrawal
// given each lot's value at the time of that withdrawal. Overdraws are
// tolerated the same way as in consumeQuantityFIFO.
func consumeValueFIFO(lots []model.Lot, lotValues []float64, amount float64, asOf time.Time) []model.LotConsumption {
	remaining := amount
	consumptions := []model.LotConsumption{}
	for i := range lots {
		if remaining <= centTolerance {
			break
		}
		lot := &lots[i]
		value := lotValues[i]
		if value <= centTolerance || lot.RemainingPrincipal <= centTolerance {
			continue
		}

		take := remaining
		if take > value {
			take = value
		}
		fraction := take / value

		gain := take - lot.RemainingPrincipal*fraction
		if gain < 0 {
			gain = 0
		}

		consumptions = append(consumptions, model.LotConsumption{
			LotID:             lot.OriginTransactionID,
			PrincipalConsumed: lot.RemainingPrincipal * fraction,
			QuantityConsumed:  lot.RemainingQuantity * fraction,
			HoldingDays:       holdingDays(lot.OpenedAt, asOf),
			GrossGainConsumed: gain,
		})

		lot.RemainingPrincipal -= lot.RemainingPrincipal * fraction
		lot.RemainingQuantity -= lot.RemainingQuantity * fraction
		if lot.RemainingPrincipal < centTolerance {
			lot.RemainingPrincipal = 0
		}
		if lot.RemainingQuantity < quantityTolerance {
			lot.RemainingQuantity = 0
		}
		remaining -= take
	}
	return consumptions
}
