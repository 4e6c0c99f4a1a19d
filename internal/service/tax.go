package service

import (
	"math"

	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// RoundingPrecision is the factor used to round monetary values to cents.
const RoundingPrecision = 100

// RoundCents rounds a monetary value to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*RoundingPrecision) / RoundingPrecision
}

// IncomeTaxRate returns the regressive income tax (IR) rate for a holding
// period. Boundaries are strict: day 180 still pays 22.5%, day 181 pays 20%.
func IncomeTaxRate(holdingDays int) float64 {
	switch {
	case holdingDays <= 180:
		return 0.225
	case holdingDays <= 360:
		return 0.20
	case holdingDays <= 720:
		return 0.175
	default:
		return 0.15
	}
}

// iofTable is the statutory regressive IOF schedule, indexed by holding days
// 0 through 29, in percent of the realized gain. The schedule is not linear;
// these are the canonical values.
var iofTable = [30]float64{
	100, 96, 93, 90, 86, 83, 80, 76, 73, 70,
	66, 63, 60, 56, 53, 50, 46, 43, 40, 36,
	33, 30, 26, 23, 20, 16, 13, 10, 6, 3,
}

// IOFRate returns the IOF rate for a holding period. Withdrawals held 30 days
// or more pay no IOF.
func IOFRate(holdingDays int) float64 {
	if holdingDays < 0 || holdingDays >= len(iofTable) {
		return 0
	}
	return iofTable[holdingDays] / 100
}

// TaxLotConsumption computes taxes and net proceeds for one consumed lot.
//
// Ordering: IOF is charged on the gross gain first; the income tax base is
// the gain net of IOF. Exempt assets skip income tax entirely but still pay
// IOF on short holdings. The taxExempt flag is the single policy switch;
// asset categories never enter tax logic.
func TaxLotConsumption(c model.LotConsumption, taxExempt bool) model.LotTax {
	gain := c.GrossGainConsumed
	if gain < 0 {
		gain = 0
	}

	iof := gain * IOFRate(c.HoldingDays)

	var incomeTax float64
	if !taxExempt {
		incomeTax = (gain - iof) * IncomeTaxRate(c.HoldingDays)
	}

	return model.LotTax{
		LotConsumption: c,
		IncomeTax:      incomeTax,
		IOF:            iof,
		NetProceeds:    c.PrincipalConsumed + c.GrossGainConsumed - incomeTax - iof,
	}
}
