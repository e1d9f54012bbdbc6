package treetime

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

//DateConversion stores the linear regression between the sampling dates of
//the tree nodes (days before present) and their distance from the root, and
//converts between the two scales. The fit assumes 'distance = Slope*date +
//Intercept'. It is immutable once fitted.
type DateConversion struct {
	Slope     float64
	Intercept float64
	R         float64 // correlation coefficient
	P         float64 // two-sided p-value for a slope of zero
	StdErr    float64 // standard error of the slope
	N         int     // number of dated nodes used
	Valid     bool    // false when the fit is degenerate
}

//FitDateConversion will regress root distance on sampling date over every
//node carrying both. Fewer than two dated nodes, or a flat fit, produce a
//degenerate conversion with Valid set to false; callers must check Valid
//before dividing by the slope.
func FitDateConversion(tt *TimeTree) *DateConversion {
	var dates, dists []float64
	for _, n := range tt.NODES {
		if n.HASDATE {
			dates = append(dates, float64(n.RAWDATE))
			dists = append(dists, n.ROOTDIST)
		}
	}
	dc := new(DateConversion)
	dc.N = len(dates)
	if dc.N < 2 {
		slog.Warn("date regression needs at least two dated nodes", "have", dc.N)
		return dc
	}
	dc.Intercept, dc.Slope = stat.LinearRegression(dates, dists, nil, false)
	dc.R = stat.Correlation(dates, dists, nil)
	nf := float64(dc.N)
	if dc.N > 2 && dc.R*dc.R < 1 {
		tstat := dc.R * math.Sqrt((nf-2)/(1-dc.R*dc.R))
		st := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nf - 2}
		dc.P = 2 * st.CDF(-math.Abs(tstat))
		if tstat != 0 {
			dc.StdErr = dc.Slope / tstat
		}
	}
	dc.Valid = dc.Slope != 0
	return dc
}

//TimeFromDate converts a sampling date (days before present) to the tree's
//internal time scale
func (dc *DateConversion) TimeFromDate(date float64) float64 {
	return date*dc.Slope + dc.Intercept
}

//DateFromTime converts a position on the internal time scale back to days
//before present. A negative result is logged and returned as its absolute
//value so downstream reporting stays usable.
func (dc *DateConversion) DateFromTime(t float64) float64 {
	if !dc.Valid {
		slog.Warn("date conversion is degenerate, returning zero date")
		return 0
	}
	date := (t - dc.Intercept) / dc.Slope
	if date < 0 {
		slog.Warn("got a negative date, returning the inverse", "date", date)
		date = -date
	}
	return date
}

//BranchLenFromDates will return the expected branch length between two dated
//nodes under the fitted clock
func (dc *DateConversion) BranchLenFromDates(date1, date2 float64) float64 {
	return math.Abs(date1-date2) * dc.Slope
}
