package pricing

import "time"

type Season string

const (
	SeasonLow    Season = "low"
	SeasonMedium Season = "medium"
	SeasonHigh   Season = "high"
	SeasonPeak   Season = "peak"
)

type TimeOfDay string

const (
	TimeEarly     TimeOfDay = "early"
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionRain         Condition = "rain"
	ConditionFog          Condition = "fog"
	ConditionSnow         Condition = "snow"
	ConditionThunderstorm Condition = "thunderstorm"
)

// Route is the ordered airport sequence of one pricing run. Waypoints sit
// between origin and destination, so the route has len(Waypoints)+1 legs.
type Route struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Waypoints   []string `json:"waypoints,omitempty"`
}

// Airports returns origin, waypoints and destination in flying order.
func (r Route) Airports() []string {
	airports := make([]string, 0, len(r.Waypoints)+2)
	airports = append(airports, r.Origin)
	airports = append(airports, r.Waypoints...)
	airports = append(airports, r.Destination)
	return airports
}

func (r Route) LegCount() int {
	return len(r.Waypoints) + 1
}

// WeatherSnapshot is the observed condition at one airport at request time.
type WeatherSnapshot struct {
	Airport      string    `json:"airport"`
	Condition    Condition `json:"condition"`
	WindKnots    float64   `json:"wind_knots"`
	VisibilitySM float64   `json:"visibility_sm"`
	CeilingFT    float64   `json:"ceiling_ft"`
}

// DemandSignals are caller-supplied pressure indicators. Unknown season or
// time-of-day buckets contribute a neutral 1.0 multiplier.
type DemandSignals struct {
	Season        Season    `json:"season"`
	Weekend       bool      `json:"weekend"`
	TimeOfDay     TimeOfDay `json:"time_of_day"`
	SpecialEvents []string  `json:"special_events,omitempty"`
}

type OperatorProfile struct {
	Rating          float64 `json:"rating"`
	YearsExperience int     `json:"years_experience"`
	FleetSize       int     `json:"fleet_size"`
}

// MarketRates is one point-in-time snapshot from the market data provider.
type MarketRates struct {
	FuelPricePerGallon   float64            `json:"fuel_price_per_gallon"`
	CrewHourlyRate       float64            `json:"crew_hourly_rate"`
	LandingFees          map[string]float64 `json:"landing_fees"`
	DefaultLandingFee    float64            `json:"default_landing_fee"`
	HandlingBasePerLeg   float64            `json:"handling_base_per_leg"`
	HandlingPerPassenger float64            `json:"handling_per_passenger"`
}

// Input is what an operator supplies to price one request. Weather and
// market rates are fetched from the injected providers.
type Input struct {
	Aircraft      string          `json:"aircraft"`
	DistanceNM    float64         `json:"distance_nm"`
	Passengers    int             `json:"passengers"`
	Route         Route           `json:"route"`
	Departure     time.Time       `json:"departure"`
	DurationHours float64         `json:"duration_hours"`
	Demand        DemandSignals   `json:"demand"`
	Operator      OperatorProfile `json:"operator"`
}

// Factors is the complete input bundle to one calculation: the caller's
// Input plus the provider snapshots. Owned by one calculation, never shared.
type Factors struct {
	Input
	Weather []WeatherSnapshot `json:"weather"`
	Market  MarketRates       `json:"market"`
}

// LineItem is one priced cost category with its share of the total.
type LineItem struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Breakdown is the immutable output of one pricing run. Line amounts are
// rounded to cents and sum exactly to Total.
type Breakdown struct {
	Lines         []LineItem `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	Taxes         float64    `json:"taxes"`
	Total         float64    `json:"total"`
	Currency      string     `json:"currency"`
	ValidUntil    time.Time  `json:"valid_until"`
	Estimated     bool       `json:"estimated"`
	EstimatedKeys []string   `json:"estimated_keys,omitempty"`
}

// Line item labels, in breakdown order.
const (
	LineBasePrice        = "base_price"
	LineFuelCost         = "fuel_cost"
	LineCrewCost         = "crew_cost"
	LineLandingFees      = "landing_fees"
	LineHandlingFees     = "handling_fees"
	LineCatering         = "catering"
	LineInsurance        = "insurance"
	LineWeatherSurcharge = "weather_surcharge"
	LineDemandPremium    = "demand_premium"
	LineOperatorPremium  = "operator_premium"
	LineTaxes            = "taxes"
)

// DeriveTimeOfDay buckets a departure hour. Kept as a helper for callers
// that do not carry explicit demand signals.
func DeriveTimeOfDay(t time.Time) TimeOfDay {
	switch hour := t.Hour(); {
	case hour < 5:
		return TimeNight
	case hour < 9:
		return TimeEarly
	case hour < 12:
		return TimeMorning
	case hour < 17:
		return TimeAfternoon
	case hour < 21:
		return TimeEvening
	default:
		return TimeNight
	}
}

// IsWeekend reports whether the departure falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
