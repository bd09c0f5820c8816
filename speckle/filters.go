package speckle

import (
	"sort"

	"github.com/pkg/errors"
)

// Parameter names understood by the built-in filters
const (
	ParamSLSThreshold          = "sls_threshold"
	ParamDurationThreshold     = "duration_threshold"
	ParamDisplacementThreshold = "displacement_threshold"
)

// FilterParams carries named per-call configuration of a filter
type FilterParams map[string]float64

// Float returns named parameter or ErrMissingParam
func (params FilterParams) Float(name string) (float64, error) {
	value, ok := params[name]
	if !ok {
		return 0, errors.Wrapf(ErrMissingParam, "'%s'", name)
	}
	return value, nil
}

// FilterFunc reports whether the given track should be removed.
// Filters are stateless: everything they need comes in params.
type FilterFunc func(track TrackStats, params FilterParams) (bool, error)

// SLSThresholdFilter removes any track whose mean straight line speed is strictly below 'sls_threshold'
func SLSThresholdFilter(track TrackStats, params FilterParams) (bool, error) {
	threshold, err := params.Float(ParamSLSThreshold)
	if err != nil {
		return false, err
	}
	return track.SLS() < threshold, nil
}

// DurationThresholdFilter removes any track spanning fewer frames than 'duration_threshold'
func DurationThresholdFilter(track TrackStats, params FilterParams) (bool, error) {
	threshold, err := params.Float(ParamDurationThreshold)
	if err != nil {
		return false, err
	}
	return float64(track.Duration()) < threshold, nil
}

// DisplacementThresholdFilter removes any track whose displacement is strictly below 'displacement_threshold'
func DisplacementThresholdFilter(track TrackStats, params FilterParams) (bool, error) {
	threshold, err := params.Float(ParamDisplacementThreshold)
	if err != nil {
		return false, err
	}
	return track.Displacement() < threshold, nil
}

// Filters maps filter names to their implementations
var Filters = map[string]FilterFunc{
	"sls":          SLSThresholdFilter,
	"duration":     DurationThresholdFilter,
	"displacement": DisplacementThresholdFilter,
}

// LookupFilter returns the named filter
func LookupFilter(name string) (FilterFunc, error) {
	fn, ok := Filters[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown filter '%s'", name)
	}
	return fn, nil
}

// FilterNames returns sorted names of registered filters
func FilterNames() []string {
	names := make([]string, 0, len(Filters))
	for name := range Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
