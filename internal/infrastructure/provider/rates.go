package provider

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"goldprice-service/internal/domain"
)

var (
	usdPerOunceKeys = []string{"USDXAU", "usdxau"}
	xauKeys         = []string{"XAU", "xau"}
	closeKeys       = []string{"close", "price"}
	zarKeys         = []string{"ZAR", "zar", "USDZAR", "usdzar"}
	mznKeys         = []string{"MZN", "mzn", "USDMZN", "usdmzn"}
	nestedRateKeys  = []string{"rate", "close", "price", "value"}
)

// PositiveRate coerces a raw JSON value to a rate. Only finite values strictly
// greater than zero are accepted; everything else is absent.
func PositiveRate(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	return domain.PositiveRate(f)
}

// rateValue reads a plain rate or one nested as {rate|close|price|value: x}.
func rateValue(v any) (float64, bool) {
	if obj, ok := v.(map[string]any); ok {
		for _, k := range nestedRateKeys {
			if r, ok := PositiveRate(obj[k]); ok {
				return r, true
			}
		}
		return 0, false
	}
	return PositiveRate(v)
}

func firstRate(rates map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := rates[k]; ok {
			if r, ok := rateValue(v); ok {
				return r, true
			}
		}
	}
	return 0, false
}

// ouncePrice maps a raw XAU quote to USD per troy ounce. Values below 1 are
// taken as ounces-per-dollar and inverted. This is an approximation that holds
// only because gold never trades anywhere near $1/oz.
func ouncePrice(v float64) float64 {
	if v < 1 {
		return 1 / v
	}
	return v
}

// ResolveUSDPerOunce tries an explicit USD-per-ounce field first, then a plain
// XAU field (inverted when below 1), then a bare close/price field.
func ResolveUSDPerOunce(rates map[string]any) (float64, bool) {
	if rates == nil {
		return 0, false
	}
	if r, ok := firstRate(rates, usdPerOunceKeys); ok {
		return r, true
	}
	if r, ok := firstRate(rates, xauKeys); ok {
		return ouncePrice(r), true
	}
	if r, ok := firstRate(rates, closeKeys); ok {
		return ouncePrice(r), true
	}
	return 0, false
}

// ResolveCrossRates reads the USD→ZAR and USD→MZN legs a provider may carry.
func ResolveCrossRates(rates map[string]any) domain.CrossRates {
	var out domain.CrossRates
	if rates == nil {
		return out
	}
	if r, ok := firstRate(rates, zarKeys); ok {
		out.USDToZAR = &r
	}
	if r, ok := firstRate(rates, mznKeys); ok {
		out.USDToMZN = &r
	}
	return out
}

func isDateKey(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// ExtractTimeseries reads daily points from either
//
//	{"2025-01-01": {"XAU": 2000}}   (date → symbol → rate)
//	{"XAU": {"2025-01-01": 2000}}   (symbol → date → rate)
//
// The second shape is only consulted when the first yields nothing.
func ExtractTimeseries(rates map[string]any) []domain.DailyPoint {
	var points []domain.DailyPoint
	for date, v := range rates {
		if !isDateKey(date) {
			continue
		}
		var price float64
		var ok bool
		if obj, isObj := v.(map[string]any); isObj {
			price, ok = ResolveUSDPerOunce(obj)
		} else if r, isRate := PositiveRate(v); isRate {
			price, ok = ouncePrice(r), true
		}
		if ok {
			points = append(points, domain.DailyPoint{Date: date, USDPerOunce: price})
		}
	}

	if len(points) == 0 {
		for _, sym := range append(append([]string{}, usdPerOunceKeys...), xauKeys...) {
			series, ok := rates[sym].(map[string]any)
			if !ok {
				continue
			}
			for date, v := range series {
				if r, ok := rateValue(v); ok && isDateKey(date) {
					points = append(points, domain.DailyPoint{Date: date, USDPerOunce: ouncePrice(r)})
				}
			}
			if len(points) > 0 {
				break
			}
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
