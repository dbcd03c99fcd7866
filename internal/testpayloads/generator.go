package testpayloads

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generator builds synthetic upstream payloads with plausible values. Output
// is deterministic for a given seed and start time.
type Generator struct {
	rnd      *rand.Rand
	location string
	start    time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSeed fixes the random sequence.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLocationName sets the location written into payloads.
func WithLocationName(name string) GeneratorOption {
	return func(g *Generator) {
		if name != "" {
			g.location = name
		}
	}
}

// WithStart sets the first timestamp. It is truncated to the hour.
func WithStart(t time.Time) GeneratorOption {
	return func(g *Generator) {
		if !t.IsZero() {
			g.start = t.Truncate(time.Hour)
		}
	}
}

// NewGenerator returns a Generator starting at the current hour in UTC+8.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		location: "臺北市",
		start:    time.Now().In(time.FixedZone("CST", 8*3600)).Truncate(time.Hour),
	}
	WithSeed(1)(g)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type obj = map[string]any

// Short returns an element-major 3-day payload covering days days with
// 3-hourly samples, including elements the pipeline is expected to skip.
func (g *Generator) Short(days int) ([]byte, error) {
	n := days * 8
	step := 3 * time.Hour
	temps := g.wave(n, 8, 26, 4, 1)

	elements := []obj{
		g.instantElement("溫度", "Temperature", n, step, func(i int) string { return itoa(temps[i]) }),
		g.instantElement("露點溫度", "DewPoint", n, step, func(i int) string { return itoa(temps[i] - 6) }),
		g.instantElement("相對濕度", "RelativeHumidity", n, step, func(int) string { return itoa(60 + g.rnd.Float64()*35) }),
		g.instantElement("風速", "WindSpeed", n, step, func(int) string { return itoa(1 + g.rnd.Float64()*6) }),
		g.intervalElement("3小時降雨機率", "ProbabilityOfPrecipitation", n, step, func(int) string {
			return strconv.Itoa(10 * g.rnd.IntN(11))
		}),
		g.intervalElement("天氣現象", "Weather", n, step, func(int) string { return "多雲" }),
	}
	return g.elementMajor(elements)
}

// Long returns an element-major 7-day payload with 12-hour windows.
func (g *Generator) Long(days int) ([]byte, error) {
	n := days * 2
	step := 12 * time.Hour
	avg := g.wave(n, 2, 25, 3, 0.5)

	elements := []obj{
		g.intervalElement("平均溫度", "Temperature", n, step, func(i int) string { return itoa(avg[i]) }),
		g.intervalElement("最高溫度", "MaxTemperature", n, step, func(i int) string { return itoa(avg[i] + 3) }),
		g.intervalElement("最低溫度", "MinTemperature", n, step, func(i int) string { return itoa(avg[i] - 3) }),
		g.intervalElement("平均相對濕度", "RelativeHumidity", n, step, func(int) string { return itoa(65 + g.rnd.Float64()*25) }),
		g.intervalElement("風速", "WindSpeed", n, step, func(int) string { return itoa(1 + g.rnd.Float64()*5) }),
		g.intervalElement("12小時降雨機率", "ProbabilityOfPrecipitation", n, step, func(int) string {
			return strconv.Itoa(10 * g.rnd.IntN(11))
		}),
		g.intervalElement("紫外線指數", "UVIndex", n, step, func(int) string { return strconv.Itoa(g.rnd.IntN(11)) }),
		g.intervalElement("最高體感溫度", "MaxApparentTemperature", n, step, func(i int) string { return itoa(avg[i] + 5) }),
	}
	return g.elementMajor(elements)
}

// Windows returns a window-major 36-hour payload with three 12-hour
// windows carrying the five summary elements.
func (g *Generator) Windows() ([]byte, error) {
	const windows = 3
	param := func(name, unit string) obj {
		p := obj{"parameterName": name}
		if unit != "" {
			p["parameterUnit"] = unit
		}
		return p
	}
	values := map[string]func(int) obj{
		"Wx":   func(int) obj { return param([]string{"晴時多雲", "多雲", "陰短暫雨"}[g.rnd.IntN(3)], "") },
		"PoP":  func(int) obj { return param(strconv.Itoa(10*g.rnd.IntN(11)), "百分比") },
		"CI":   func(int) obj { return param([]string{"舒適", "舒適至悶熱", "悶熱"}[g.rnd.IntN(3)], "") },
		"MinT": func(int) obj { return param(strconv.Itoa(20+g.rnd.IntN(5)), "C") },
		"MaxT": func(int) obj { return param(strconv.Itoa(27+g.rnd.IntN(6)), "C") },
	}

	var elements []obj
	for _, name := range []string{"Wx", "PoP", "MinT", "CI", "MaxT"} {
		var times []obj
		for w := 0; w < windows; w++ {
			start := g.start.Add(time.Duration(w) * 12 * time.Hour)
			times = append(times, obj{
				"startTime": start.Format(windowTimeLayout),
				"endTime":   start.Add(12 * time.Hour).Format(windowTimeLayout),
				"parameter": values[name](w),
			})
		}
		elements = append(elements, obj{"elementName": name, "time": times})
	}

	doc := obj{
		"success": "true",
		"result":  obj{"resource_id": uuid.NewString()},
		"records": obj{
			"datasetDescription": "三十六小時天氣預報",
			"location": []obj{{
				"locationName":   g.location,
				"weatherElement": elements,
			}},
		},
	}
	return json.Marshal(doc)
}

func (g *Generator) elementMajor(elements []obj) ([]byte, error) {
	doc := obj{
		"success": "true",
		"result":  obj{"resource_id": uuid.NewString()},
		"records": obj{
			"Locations": []obj{{
				"DatasetDescription": "臺灣各縣市鄉鎮未來天氣預報",
				"LocationsName":      g.location,
				"Location": []obj{{
					"LocationName":   g.location,
					"Geocode":        fmt.Sprintf("%d", 63000000+g.rnd.IntN(1000)),
					"WeatherElement": elements,
				}},
			}},
		},
	}
	return json.Marshal(doc)
}

func (g *Generator) instantElement(name, field string, n int, step time.Duration, value func(int) string) obj {
	times := make([]obj, n)
	for i := range times {
		times[i] = obj{
			"DataTime":     g.start.Add(time.Duration(i) * step).Format(elementTimeLayout),
			"ElementValue": []obj{{field: value(i)}},
		}
	}
	return obj{"ElementName": name, "Time": times}
}

func (g *Generator) intervalElement(name, field string, n int, step time.Duration, value func(int) string) obj {
	times := make([]obj, n)
	for i := range times {
		start := g.start.Add(time.Duration(i) * step)
		times[i] = obj{
			"StartTime":    start.Format(elementTimeLayout),
			"EndTime":      start.Add(step).Format(elementTimeLayout),
			"ElementValue": []obj{{field: value(i)}},
		}
	}
	return obj{"ElementName": name, "Time": times}
}

// wave returns n points of a cycle of period points around mean with the
// given amplitude plus uniform noise.
func (g *Generator) wave(n, period int, mean, amplitude, noise float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		phase := 2 * math.Pi * float64(i) / float64(period)
		out[i] = mean + amplitude*math.Sin(phase) + (g.rnd.Float64()*2-1)*noise
	}
	return out
}

func itoa(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}
