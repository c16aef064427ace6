package pricing

// Rate tables keyed by aircraft model. Unknown models fall back to the
// default constant so an unfamiliar tail number still prices, conservatively;
// the breakdown flags those runs as estimated.

const (
	defaultBaseRate        = 5.0  // $/nm
	defaultFuelConsumption = 1.4  // gal/nm
	defaultPrestigeScore   = 65.0 // 0-100
)

var aircraftBaseRates = map[string]float64{
	"Citation X+":     4.5,
	"Phenom 300":      3.2,
	"Learjet 75":      3.0,
	"King Air 350":    2.4,
	"Challenger 350":  5.2,
	"Praetor 600":     5.0,
	"Gulfstream G280": 6.0,
	"Falcon 2000LXS":  6.5,
	"Gulfstream G650": 8.5,
	"Global 7500":     9.5,
	"Falcon 8X":       8.0,
}

var fuelConsumptionRates = map[string]float64{
	"Citation X+":     1.6,
	"Phenom 300":      1.0,
	"Learjet 75":      1.1,
	"King Air 350":    0.8,
	"Challenger 350":  1.5,
	"Praetor 600":     1.4,
	"Gulfstream G280": 1.7,
	"Falcon 2000LXS":  1.8,
	"Gulfstream G650": 2.2,
	"Global 7500":     2.4,
	"Falcon 8X":       2.1,
}

// heavyJets carry a third crew member; everything else flies with two.
var heavyJets = map[string]bool{
	"Gulfstream G650": true,
	"Global 7500":     true,
	"Falcon 8X":       true,
}

var prestigeScores = map[string]float64{
	"Global 7500":     98,
	"Gulfstream G650": 95,
	"Falcon 8X":       92,
	"Citation X+":     85,
	"Gulfstream G280": 82,
	"Falcon 2000LXS":  80,
	"Challenger 350":  78,
	"Praetor 600":     75,
	"Phenom 300":      70,
	"Learjet 75":      68,
	"King Air 350":    60,
}

const (
	cateringStandardRate = 150.0 // $/passenger
	cateringPremiumRate  = 300.0 // passengers > 8

	surchargeThunderstorm  = 1500.0
	surchargeFog           = 800.0
	surchargeSnow          = 1200.0
	surchargeHighWind      = 600.0 // wind > 25 kt
	surchargeLowVisibility = 900.0 // visibility < 1 sm
	surchargeLowCeiling    = 700.0 // ceiling < 1000 ft

	handlingWeatherSurcharge = 500.0 // any thunderstorm on the route
)

var seasonMultipliers = map[Season]float64{
	SeasonLow:    0.8,
	SeasonMedium: 1.0,
	SeasonHigh:   1.3,
	SeasonPeak:   1.6,
}

var timeOfDayMultipliers = map[TimeOfDay]float64{
	TimeEarly:     0.9,
	TimeMorning:   1.1,
	TimeAfternoon: 1.2,
	TimeEvening:   1.1,
	TimeNight:     0.8,
}

const (
	weekendMultiplier      = 1.2
	specialEventMultiplier = 1.5
)

func aircraftBaseRate(model string) (float64, bool) {
	rate, ok := aircraftBaseRates[model]
	if !ok {
		return defaultBaseRate, false
	}
	return rate, true
}

func fuelConsumptionRate(model string) (float64, bool) {
	rate, ok := fuelConsumptionRates[model]
	if !ok {
		return defaultFuelConsumption, false
	}
	return rate, true
}

func crewSize(model string) int {
	if heavyJets[model] {
		return 3
	}
	return 2
}

// PrestigeScore returns the 0-100 aircraft class score used by deal scoring.
func PrestigeScore(model string) float64 {
	score, ok := prestigeScores[model]
	if !ok {
		return defaultPrestigeScore
	}
	return score
}

// distanceMultiplier encodes short-haul premium and long-haul efficiency.
func distanceMultiplier(distanceNM float64) float64 {
	switch {
	case distanceNM < 500:
		return 1.2
	case distanceNM < 1500:
		return 1.0
	case distanceNM < 3000:
		return 0.9
	default:
		return 0.8
	}
}
