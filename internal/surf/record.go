package surf

// SurfRecord is the structured result of one chart extraction.
//
// Condition fields (Clean, BlownOut, TooSmall) come from the chart header and
// are not range-clamped. Height fields come from the five bars in the bar band
// and are always within [0, 100].
type SurfRecord struct {
	Location string `json:"location"`
	Month    string `json:"month"`

	Clean    float64 `json:"clean"`
	BlownOut float64 `json:"blown_out"`
	TooSmall float64 `json:"too_small"`

	Flat         float64 `json:"flat"`
	Height0to4   float64 `json:"height_0_4"`
	Height4to6   float64 `json:"height_4_6"`
	Height6to10  float64 `json:"height_6_10"`
	Height10Plus float64 `json:"height_10_plus"`
}

// BarCount is the number of wave-height buckets in the bar band.
const BarCount = 5

// HeightBuckets names the bar buckets in their fixed left-to-right order.
var HeightBuckets = [BarCount]string{"flat", "height_0_4", "height_4_6", "height_6_10", "height_10_plus"}

// NewRecord returns a record for the spot and month with every percentage at
// its 0.0 default.
func NewRecord(location, month string) SurfRecord {
	return SurfRecord{
		Location: location,
		Month:    CanonicalMonth(month),
	}
}

// SetHeights assigns bar values positionally. Fewer than BarCount values
// leaves all five height fields untouched.
func (r *SurfRecord) SetHeights(values []float64) bool {
	if len(values) < BarCount {
		return false
	}
	r.Flat = values[0]
	r.Height0to4 = values[1]
	r.Height4to6 = values[2]
	r.Height6to10 = values[3]
	r.Height10Plus = values[4]
	return true
}

// Heights returns the height fields in bucket order.
func (r SurfRecord) Heights() [BarCount]float64 {
	return [BarCount]float64{r.Flat, r.Height0to4, r.Height4to6, r.Height6to10, r.Height10Plus}
}

// Spot is one row of the locations list.
type Spot struct {
	Name       string
	Region     string
	TimeOfYear string

	// GIFURL is a known chart URL for spots whose name does not map onto the
	// default URL pattern. Empty when unknown.
	GIFURL string
}

// HasSeasonData reports whether the spot publishes monthly charts.
func (s Spot) HasSeasonData() bool {
	return s.TimeOfYear != ""
}
