package domain

import "fmt"

// MetricKey names one of the tracked daily metrics.
type MetricKey string

const (
	Energy         MetricKey = "energy"
	Stress         MetricKey = "stress"
	Mood           MetricKey = "mood"
	SleepHours     MetricKey = "sleep_hours"
	Steps          MetricKey = "steps"
	WaterLiters    MetricKey = "water_liters"
	OutdoorMinutes MetricKey = "outdoor_minutes"
)

// Direction says which way a metric moves when things get better.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type MetricMeta struct {
	Label string
	Unit  string
	Good  Direction
	Min   float64
	Max   float64
}

var metricTable = map[MetricKey]MetricMeta{
	Energy:         {Label: "Energy", Good: Up, Min: 1, Max: 5},
	Stress:         {Label: "Stress", Good: Down, Min: 1, Max: 5},
	Mood:           {Label: "Mood", Good: Up, Min: 1, Max: 5},
	SleepHours:     {Label: "Sleep", Unit: "h", Good: Up, Min: 0, Max: 24},
	Steps:          {Label: "Steps", Good: Up, Min: 0, Max: 200000},
	WaterLiters:    {Label: "Water", Unit: "L", Good: Up, Min: 0, Max: 20},
	OutdoorMinutes: {Label: "Outdoor", Unit: "min", Good: Up, Min: 0, Max: 1440},
}

// AllMetrics lists every metric key in display order.
func AllMetrics() []MetricKey {
	return []MetricKey{Energy, Stress, Mood, SleepHours, Steps, WaterLiters, OutdoorMinutes}
}

func ParseMetricKey(raw string) (MetricKey, error) {
	key := MetricKey(raw)
	if !key.Valid() {
		return "", fmt.Errorf("unknown metric %q", raw)
	}
	return key, nil
}

func (k MetricKey) Valid() bool {
	_, ok := metricTable[k]
	return ok
}

func (k MetricKey) Meta() MetricMeta {
	return metricTable[k]
}

func (k MetricKey) Good() Direction {
	return metricTable[k].Good
}

// DisplayLabel renders the label with its unit, e.g. "Sleep (h)".
func (k MetricKey) DisplayLabel() string {
	meta, ok := metricTable[k]
	if !ok {
		return string(k)
	}
	if meta.Unit == "" {
		return meta.Label
	}
	return fmt.Sprintf("%s (%s)", meta.Label, meta.Unit)
}

func (k MetricKey) String() string {
	return string(k)
}
