package model

import "fmt"

// Element describes one recognized weather element: the upstream name, the
// ElementValue sub-field holding its number, and how it is labelled.
type Element struct {
	Name   string
	Field  string
	Header string
	Unit   string
}

// Catalog is the closed set of recognized elements for one horizon, in
// column order, plus the names that are skipped outright.
type Catalog struct {
	Horizon  Horizon
	Elements []Element
	Excluded []string

	byName   map[string]int
	excluded map[string]struct{}
}

var shortCatalog = newCatalog(Short,
	[]Element{
		{Name: "溫度", Field: "Temperature", Header: "Temperature", Unit: "C"},
		{Name: "相對濕度", Field: "RelativeHumidity", Header: "Relative humidity", Unit: "%"},
		{Name: "風速", Field: "WindSpeed", Header: "Wind speed"},
		{Name: "3小時降雨機率", Field: "ProbabilityOfPrecipitation", Header: "Probability of precipitation", Unit: "%"},
	},
	[]string{"露點溫度", "體感溫度", "舒適度指數", "風向", "天氣現象", "天氣預報綜合描述"},
)

var longCatalog = newCatalog(Long,
	[]Element{
		{Name: "平均溫度", Field: "Temperature", Header: "T_avg"},
		{Name: "最高溫度", Field: "MaxTemperature", Header: "T_max"},
		{Name: "最低溫度", Field: "MinTemperature", Header: "T_min"},
		{Name: "平均相對濕度", Field: "RelativeHumidity", Header: "Rel humidity"},
		{Name: "風速", Field: "WindSpeed", Header: "Wind speed"},
		{Name: "12小時降雨機率", Field: "ProbabilityOfPrecipitation", Header: "Rain prob"},
		{Name: "紫外線指數", Field: "UVIndex", Header: "UV index"},
	},
	[]string{"平均露點溫度", "最高體感溫度", "最低體感溫度", "最大舒適度指數", "最小舒適度指數", "風向", "天氣現象", "天氣預報綜合描述"},
)

// newCatalog indexes the tables and panics on an inconsistent definition,
// so a bad entry fails at program start rather than mid-request.
func newCatalog(h Horizon, elements []Element, excluded []string) *Catalog {
	c := &Catalog{
		Horizon:  h,
		Elements: elements,
		Excluded: excluded,
		byName:   make(map[string]int, len(elements)),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, name := range excluded {
		c.excluded[name] = struct{}{}
	}
	for i, e := range elements {
		if e.Name == "" || e.Field == "" || e.Header == "" {
			panic(fmt.Sprintf("model: incomplete %s catalog entry %d: %+v", h, i, e))
		}
		if _, dup := c.byName[e.Name]; dup {
			panic(fmt.Sprintf("model: duplicate %s catalog entry %q", h, e.Name))
		}
		if _, skip := c.excluded[e.Name]; skip {
			panic(fmt.Sprintf("model: %s catalog entry %q is also excluded", h, e.Name))
		}
		c.byName[e.Name] = i
	}
	return c
}

// CatalogFor returns the recognized element set of h.
func CatalogFor(h Horizon) (*Catalog, error) {
	switch h {
	case Short:
		return shortCatalog, nil
	case Long:
		return longCatalog, nil
	default:
		return nil, fmt.Errorf("no element catalog for horizon %q", h)
	}
}

// Lookup returns the element called name, if recognized.
func (c *Catalog) Lookup(name string) (Element, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Element{}, false
	}
	return c.Elements[i], true
}

// Position returns the column index of name, or -1.
func (c *Catalog) Position(name string) int {
	if i, ok := c.byName[name]; ok {
		return i
	}
	return -1
}

// IsExcluded reports whether name is on the horizon's skip list.
func (c *Catalog) IsExcluded(name string) bool {
	_, ok := c.excluded[name]
	return ok
}
