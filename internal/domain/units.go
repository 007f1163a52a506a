package domain

type Currency string

const (
	USD Currency = "USD"
	ZAR Currency = "ZAR"
	MZN Currency = "MZN"
)

var Currencies = []Currency{USD, ZAR, MZN}

type Weight string

const (
	Ounce    Weight = "oz"
	Gram     Weight = "g"
	Kilogram Weight = "kg"
)

var Weights = []Weight{Ounce, Gram, Kilogram}

// weightFactor is expressed relative to the troy ounce.
var weightFactor = map[Weight]float64{
	Ounce:    1,
	Gram:     31.1035,
	Kilogram: 0.0311035,
}

var currencySymbols = map[Currency]string{
	USD: "$",
	ZAR: "R",
	MZN: "MT",
}

var weightLabels = map[Weight]string{
	Ounce:    "Troy Ounce",
	Gram:     "Gram",
	Kilogram: "Kilogram",
}

func ValidCurrency(c Currency) bool { _, ok := currencySymbols[c]; return ok }

func ValidWeight(w Weight) bool { _, ok := weightFactor[w]; return ok }

func CurrencySymbol(c Currency) string { return currencySymbols[c] }

func WeightLabel(w Weight) string { return weightLabels[w] }

// ConvertWeight re-expresses a price quoted for one weight unit in another:
// price / factor[from] * factor[to], rounded to cents. Unknown units yield false.
func ConvertWeight(price float64, from, to Weight) (float64, bool) {
	f, okFrom := weightFactor[from]
	t, okTo := weightFactor[to]
	if !okFrom || !okTo {
		return 0, false
	}
	return Round2(price / f * t), true
}
