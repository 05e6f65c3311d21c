package ais

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gNutty/vesselradar/pkg/expressions"
)

// The provider has shipped upper-case, camelCase and snake_case keys, and
// sometimes nests the AIS block. Each field lists every alias seen, first
// non-empty wins.
const (
	collectionExpr = "results || data || vessels || RESULTS || DATA"

	trackingIDExpr   = "MMSI || mmsi || trackingId || tracking_id || AIS.MMSI"
	imoExpr          = "IMO || imo || AIS.IMO"
	nameExpr         = "NAME || name || vesselName || vessel_name || SHIPNAME || AIS.NAME"
	latitudeExpr     = "LATITUDE || latitude || lat || LAT || AIS.LATITUDE"
	longitudeExpr    = "LONGITUDE || longitude || lon || lng || LON || AIS.LONGITUDE"
	speedExpr        = "SPEED || speed || speedKnots || speed_knots || sog || AIS.SPEED"
	courseExpr       = "COURSE || course || cog || AIS.COURSE"
	headingExpr      = "HEADING || heading || AIS.HEADING"
	flagExpr         = "FLAG || flag || country || AIS.FLAG"
	callSignExpr     = "CALLSIGN || callsign || callSign || call_sign || AIS.CALLSIGN"
	vesselTypeExpr   = "TYPE || type || vesselType || vessel_type || shipType || ship_type || TYPENAME || AIS.TYPE"
	statusExpr       = "NAVSTAT || status || navStatus || nav_status || AIS.NAVSTAT"
	areaExpr         = "AREA || area"
	lengthExpr       = "LENGTH || length"
	beamExpr         = "BEAM || beam || width"
	draughtExpr      = "DRAUGHT || draught || draft || AIS.DRAUGHT"
	previousPortExpr = "PREVIOUS_PORT || previousPort || previous_port || LASTPORT"
	currentPortExpr  = "CURRENT_PORT || currentPort || current_port"
	nextPortExpr     = "NEXT_PORT || nextPort || next_port || DESTINATION || destination || AIS.DESTINATION"
	updatedAtExpr    = "TIMESTAMP || timestamp || updatedAt || updated_at || lastUpdate || AIS.TIMESTAMP"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalizer turns any provider payload shape into candidates.
type Normalizer struct {
	eval *expressions.Evaluator
}

func NewNormalizer() *Normalizer {
	return &Normalizer{eval: expressions.NewEvaluator()}
}

// Candidates accepts a single object, an array, or an object wrapping an
// array, and returns one candidate per vessel-like record in order.
func (n *Normalizer) Candidates(body any) []Candidate {
	var records []any
	switch v := body.(type) {
	case nil:
		return nil
	case []any:
		records = v
	case map[string]any:
		wrapped, err := n.eval.EvaluateSlice(collectionExpr, v)
		if err == nil && wrapped != nil {
			records = wrapped
		} else {
			records = []any{v}
		}
	default:
		return nil
	}

	candidates := make([]Candidate, 0, len(records))
	for _, r := range records {
		record, ok := r.(map[string]any)
		if !ok {
			continue
		}
		c := n.candidate(record)
		if c.TrackingID == "" && c.Name == "" && !c.HasPosition() {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func (n *Normalizer) candidate(record map[string]any) Candidate {
	return Candidate{
		TrackingID:   n.str(trackingIDExpr, record),
		IMO:          n.str(imoExpr, record),
		Name:         n.str(nameExpr, record),
		Latitude:     n.num(latitudeExpr, record),
		Longitude:    n.num(longitudeExpr, record),
		Speed:        n.num(speedExpr, record),
		Course:       n.num(courseExpr, record),
		Heading:      n.num(headingExpr, record),
		Flag:         n.str(flagExpr, record),
		CallSign:     n.str(callSignExpr, record),
		VesselType:   n.str(vesselTypeExpr, record),
		Status:       n.str(statusExpr, record),
		Area:         n.str(areaExpr, record),
		Length:       n.num(lengthExpr, record),
		Beam:         n.num(beamExpr, record),
		Draught:      n.num(draughtExpr, record),
		PreviousPort: n.str(previousPortExpr, record),
		CurrentPort:  n.str(currentPortExpr, record),
		NextPort:     n.str(nextPortExpr, record),
		UpdatedAt:    n.time(updatedAtExpr, record),
		Raw:          record,
	}
}

func (n *Normalizer) value(expr string, record map[string]any) any {
	v, err := n.eval.Evaluate(expr, record)
	if err != nil {
		return nil
	}
	return v
}

func (n *Normalizer) str(expr string, record map[string]any) string {
	switch v := n.value(expr, record).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (n *Normalizer) num(expr string, record map[string]any) *float64 {
	var f float64
	switch v := n.value(expr, record).(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func (n *Normalizer) time(expr string, record map[string]any) *time.Time {
	var t time.Time
	switch v := n.value(expr, record).(type) {
	case float64:
		t = unixTime(v)
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			t = unixTime(secs)
			break
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				t = parsed
				break
			}
		}
	}
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

// unixTime accepts seconds or milliseconds since the epoch.
func unixTime(v float64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v > 1e12 {
		return time.UnixMilli(int64(v))
	}
	return time.Unix(int64(v), 0)
}
