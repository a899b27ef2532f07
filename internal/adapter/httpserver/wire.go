package httpserver

import (
	"math"

	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/service"
)

// Wire representations. Unparseable stored values are NaN in the domain,
// which encoding/json refuses to marshal, so numeric fields that can be
// missing go out as pointers and NaN becomes null.

type readingJSON struct {
	Zipcode         string   `json:"zipcode"`
	Date            string   `json:"date"`
	PH              *float64 `json:"ph"`
	Turbidity       *float64 `json:"turbidity"`
	DissolvedOxygen *float64 `json:"dissolved_oxygen"`
	Nitrate         *float64 `json:"nitrate"`
}

type summaryJSON struct {
	Zipcode             string                    `json:"zipcode"`
	MeanPH              *float64                  `json:"mean_ph"`
	MeanTurbidity       *float64                  `json:"mean_turbidity"`
	MeanDissolvedOxygen *float64                  `json:"mean_dissolved_oxygen"`
	MeanNitrate         *float64                  `json:"mean_nitrate"`
	Readings            int                       `json:"readings"`
	Verdicts            map[string]domain.Verdict `json:"verdicts"`
	OverallSafe         bool                      `json:"overall_safe"`
}

type alertGroupJSON struct {
	Parameter string      `json:"parameter"`
	Low       float64     `json:"low"`
	High      float64     `json:"high"`
	Readings  []alertJSON `json:"readings"`
}

type alertJSON struct {
	Zipcode string  `json:"zipcode"`
	Date    string  `json:"date"`
	Value   float64 `json:"value"`
}

type markerJSON struct {
	Zipcode string       `json:"zipcode"`
	Lat     float64      `json:"lat"`
	Lon     float64      `json:"lon"`
	Color   string       `json:"color"`
	Summary *summaryJSON `json:"summary,omitempty"`
}

func readingDTO(r domain.Reading) readingJSON {
	return readingJSON{
		Zipcode:         r.Zipcode,
		Date:            r.Date.Format(domain.DateLayout),
		PH:              floatPtr(r.PH),
		Turbidity:       floatPtr(r.Turbidity),
		DissolvedOxygen: floatPtr(r.DissolvedOxygen),
		Nitrate:         floatPtr(r.Nitrate),
	}
}

func summaryDTO(s *service.Summary) summaryJSON {
	return summaryJSON{
		Zipcode:             s.Zipcode,
		MeanPH:              floatPtr(s.MeanPH),
		MeanTurbidity:       floatPtr(s.MeanTurbidity),
		MeanDissolvedOxygen: floatPtr(s.MeanDissolvedOxygen),
		MeanNitrate:         floatPtr(s.MeanNitrate),
		Readings:            s.Readings,
		Verdicts:            s.Verdicts,
		OverallSafe:         s.AllSafe,
	}
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
