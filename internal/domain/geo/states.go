// Package geo holds the static U.S. state reference data: the state allowlist,
// Census regions and state centroids.
package geo

import (
	"regexp"
	"slices"
	"strings"
)

// National is the canonical name of the national aggregate area.
const National = "United States"

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Center is the geographic center of the contiguous United States.
var Center = Point{Lat: 39.8283, Lon: -98.5795}

var centroids = map[string]Point{
	"Alabama":              {32.806671, -86.791130},
	"Alaska":               {61.370716, -152.404419},
	"Arizona":              {33.729759, -111.431221},
	"Arkansas":             {34.969704, -92.373123},
	"California":           {36.116203, -119.681564},
	"Colorado":             {39.059811, -105.311104},
	"Connecticut":          {41.597782, -72.755371},
	"Delaware":             {39.318523, -75.507141},
	"District of Columbia": {38.897438, -77.026817},
	"Florida":              {27.766279, -81.686783},
	"Georgia":              {33.040619, -83.643074},
	"Hawaii":               {21.094318, -157.498337},
	"Idaho":                {44.240459, -114.478828},
	"Illinois":             {40.349457, -88.986137},
	"Indiana":              {39.849426, -86.258278},
	"Iowa":                 {42.011539, -93.210526},
	"Kansas":               {38.526600, -96.726486},
	"Kentucky":             {37.668140, -84.670067},
	"Louisiana":            {31.169546, -91.867805},
	"Maine":                {44.693947, -69.381927},
	"Maryland":             {39.063946, -76.802101},
	"Massachusetts":        {42.230171, -71.530106},
	"Michigan":             {43.326618, -84.536095},
	"Minnesota":            {45.694454, -93.900192},
	"Mississippi":          {32.741646, -89.678696},
	"Missouri":             {38.456085, -92.288368},
	"Montana":              {46.921925, -110.454353},
	"Nebraska":             {41.125370, -98.268082},
	"Nevada":               {38.313515, -117.055374},
	"New Hampshire":        {43.452492, -71.563896},
	"New Jersey":           {40.298904, -74.521011},
	"New Mexico":           {34.840515, -106.248482},
	"New York":             {42.165726, -74.948051},
	"North Carolina":       {35.630066, -79.806419},
	"North Dakota":         {47.528912, -99.784012},
	"Ohio":                 {40.388783, -82.764915},
	"Oklahoma":             {35.565342, -96.928917},
	"Oregon":               {44.572021, -122.070938},
	"Pennsylvania":         {40.590752, -77.209755},
	"Rhode Island":         {41.680893, -71.511780},
	"South Carolina":       {33.856892, -80.945007},
	"South Dakota":         {44.299782, -99.438828},
	"Tennessee":            {35.747845, -86.692345},
	"Texas":                {31.054487, -97.563461},
	"Utah":                 {40.150032, -111.862434},
	"Vermont":              {44.045876, -72.710686},
	"Virginia":             {37.769337, -78.169968},
	"Washington":           {47.400902, -121.490494},
	"West Virginia":        {38.491226, -80.954453},
	"Wisconsin":            {44.268543, -89.616508},
	"Wyoming":              {42.755966, -107.302490},
}

// states is the allowlist, sorted; byLower indexes it case-insensitively.
var (
	states  []string
	byLower map[string]string
)

func init() {
	states = make([]string, 0, len(centroids))
	byLower = make(map[string]string, len(centroids))
	for name := range centroids {
		states = append(states, name)
		byLower[strings.ToLower(name)] = name
	}
	slices.Sort(states)
}

// States returns the 51 allowlisted areas (50 states and the District of Columbia), sorted.
func States() []string {
	return append([]string(nil), states...)
}

// IsState reports whether name is an allowlisted state, exactly as spelled.
func IsState(name string) bool {
	_, ok := centroids[name]
	return ok
}

// Centroid returns the display coordinates of a state or of the national area.
func Centroid(name string) (Point, bool) {
	if name == National {
		return Center, true
	}
	p, ok := centroids[name]
	return p, ok
}

// metroSuffix matches BLS metro labels such as "Boston-Cambridge-Nashua, MA-NH".
var metroSuffix = regexp.MustCompile(`,\s*[A-Z]{2}(-[A-Z]{2})*$`)

// Canonicalize resolves a raw area label to an allowlisted state name or National.
// Metropolitan and nonmetropolitan area labels never resolve.
func Canonicalize(label string) (string, bool) {
	l := strings.TrimSpace(label)
	if l == "" {
		return "", false
	}
	lower := strings.ToLower(l)

	switch lower {
	case "u.s.", "united states":
		return National, true
	}
	if name, ok := byLower[lower]; ok {
		return name, true
	}

	if strings.Contains(lower, "metropolitan") || metroSuffix.MatchString(l) {
		return "", false
	}

	// "West Virginia" must beat "Virginia".
	best := ""
	for _, name := range states {
		if len(name) > len(best) && containsWord(lower, strings.ToLower(name)) {
			best = name
		}
	}
	return best, best != ""
}

func containsWord(s, word string) bool {
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(word)
		if (i == 0 || !isLetter(s[i-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		from = i + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
