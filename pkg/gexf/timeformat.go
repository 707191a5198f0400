package gexf

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/gexftool/pkg/errors"
)

// timeFormat is the value of the graph's timeformat attribute. It decides
// how start and end values are turned into comparable numbers.
type timeFormat string

const (
	formatDouble    timeFormat = "double"
	formatFloatTime timeFormat = "float"
	formatInteger   timeFormat = "integer"
	formatDate      timeFormat = "date"
	formatDateTime  timeFormat = "datetime"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimeFormat(s string) (timeFormat, error) {
	switch tf := timeFormat(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return formatDouble, nil
	case formatDouble, formatFloatTime, formatInteger, formatDate, formatDateTime:
		return tf, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown timeformat %q", s)
	}
}

// parse converts a time value to seconds (dates) or to the number itself.
func (tf timeFormat) parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch tf {
	case formatDate:
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			// Gephi writes dates with a time part under timeformat="date" too.
			return formatDateTime.parse(s)
		}
		return unixSeconds(t), nil
	case formatDateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return unixSeconds(t), nil
			}
		}
		return 0, errors.New(errors.ErrCodeInvalidFormat, "invalid %s value %q", tf, s)
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			return 0, errors.New(errors.ErrCodeInvalidFormat, "invalid %s value %q", tf, s)
		}
		return v, nil
	}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
