package plan

// Zone is a single heart-rate band covering [Min, Max) bpm.
type Zone struct {
	Min int
	Max int
}

// ZoneTable holds an athlete's five heart-rate zones in ascending order.
// Zone 1 is recovery, zone 5 is maximal effort.
type ZoneTable [5]Zone

// NumZones is the number of zones a table must provide.
const NumZones = 5

// Valid reports whether the zones are ascending and contiguous.
func (t ZoneTable) Valid() bool {
	for i, z := range t {
		if z.Min >= z.Max {
			return false
		}
		if i > 0 && z.Min != t[i-1].Max {
			return false
		}
	}
	return true
}

// Range returns the band for a 1-indexed zone.
func (t ZoneTable) Range(zone int) (Zone, bool) {
	if zone < 1 || zone > len(t) {
		return Zone{}, false
	}
	return t[zone-1], true
}

// Contains reports whether hr falls inside the zone's [min, max) band.
func (t ZoneTable) Contains(zone int, hr float64) bool {
	z, ok := t.Range(zone)
	if !ok {
		return false
	}
	return hr >= float64(z.Min) && hr < float64(z.Max)
}

// ZoneFor classifies a heart rate by scanning from the top band down and
// taking the first zone whose floor the rate meets. Rates below the zone 1
// floor still classify as zone 1.
func (t ZoneTable) ZoneFor(hr float64) int {
	for z := len(t); z >= 1; z-- {
		if hr >= float64(t[z-1].Min) {
			return z
		}
	}
	return 1
}

// zoneMaxPcts are the zone ceilings as fractions of max heart rate, used
// when the athlete hasn't configured explicit bands.
var zoneMaxPcts = [6]float64{0.50, 0.60, 0.70, 0.80, 0.90, 1.00}

// FromMaxHR derives a zone table from max heart rate alone using the
// standard five-band percentage model.
func FromMaxHR(maxHR int) ZoneTable {
	var t ZoneTable
	for i := 0; i < NumZones; i++ {
		t[i] = Zone{
			Min: int(float64(maxHR) * zoneMaxPcts[i]),
			Max: int(float64(maxHR) * zoneMaxPcts[i+1]),
		}
	}
	return t
}
