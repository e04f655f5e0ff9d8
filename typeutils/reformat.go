package typeutils

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/datazip-inc/bqsink/constants"
	"github.com/goccy/go-json"
)

// string layouts accepted when a time-like column receives a string value
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseStringTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("value [%s] is not a recognized timestamp", value)
}

// ReformatString renders any scalar as a string; []byte and fmt.Stringer
// values keep their natural representation.
func ReformatString(v any) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	case fmt.Stringer:
		return value.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func ReformatBytes(v any) ([]byte, error) {
	switch value := v.(type) {
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
}

func ReformatBool(v any) (bool, error) {
	switch value := v.(type) {
	case bool:
		return value, nil
	case string:
		switch strings.ToLower(value) {
		case "true", "t", "1", "yes":
			return true, nil
		case "false", "f", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("string [%s] is not a boolean", value)
	case int, int8, int16, int32, int64:
		i, _ := ReformatInt64(value)
		if i == 0 || i == 1 {
			return i == 1, nil
		}
		return false, fmt.Errorf("integer [%d] is not a boolean", i)
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func ReformatInt64(v any) (int64, error) {
	switch value := v.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case int8:
		return int64(value), nil
	case int16:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case uint:
		return int64(value), nil
	case uint8:
		return int64(value), nil
	case uint16:
		return int64(value), nil
	case uint32:
		return int64(value), nil
	case uint64:
		return int64(value), nil
	case float32:
		return int64(value), nil
	case float64:
		return int64(value), nil
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("string [%s] is not an integer", value)
		}
		return parsed, nil
	case json.Number:
		return value.Int64()
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func ReformatFloat64(v any) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := ReformatInt64(value)
		return float64(i), err
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("string [%s] is not a number", value)
		}
		return parsed, nil
	case json.Number:
		return value.Float64()
	default:
		return 0, fmt.Errorf("expected float, got %T", v)
	}
}

// ReformatTime renders a time-of-day as "15:04:05.000000".
func ReformatTime(v any) (string, error) {
	switch value := v.(type) {
	case time.Time:
		return value.Format(constants.TimeFormat), nil
	case civil.Time:
		clock := time.Date(1970, 1, 1, value.Hour, value.Minute, value.Second, value.Nanosecond, time.UTC)
		return clock.Format(constants.TimeFormat), nil
	case string:
		if parsed, err := civil.ParseTime(value); err == nil {
			return ReformatTime(parsed)
		}
		t, err := parseStringTimestamp(value)
		if err != nil {
			return "", err
		}
		return t.Format(constants.TimeFormat), nil
	default:
		return "", fmt.Errorf("expected time of day, got %T", v)
	}
}

// ReformatDateTime renders a civil datetime as
// "2006-01-02 15:04:05.000" (millisecond precision, no zone).
func ReformatDateTime(v any) (string, error) {
	switch value := v.(type) {
	case time.Time:
		return value.Format(constants.DateTimeFormat), nil
	case civil.DateTime:
		return value.In(time.UTC).Format(constants.DateTimeFormat), nil
	case string:
		t, err := parseStringTimestamp(value)
		if err != nil {
			return "", err
		}
		return t.Format(constants.DateTimeFormat), nil
	default:
		return "", fmt.Errorf("expected datetime, got %T", v)
	}
}

// ReformatDate converts a calendar date into its day offset from 1970-01-01.
// Offsets come from the UTC civil date, so pre-epoch instants floor toward
// the earlier day rather than truncating toward zero.
func ReformatDate(v any) (int32, error) {
	switch value := v.(type) {
	case time.Time:
		return int32(civil.DateOf(value.In(time.UTC)).DaysSince(civil.DateOf(constants.Epoch))), nil
	case civil.Date:
		return int32(value.DaysSince(civil.DateOf(constants.Epoch))), nil
	case string:
		t, err := parseStringTimestamp(value)
		if err != nil {
			return 0, err
		}
		return ReformatDate(t)
	case int32:
		return value, nil
	case int, int64, float32, float64, json.Number:
		offset, err := ReformatInt64(value)
		return int32(offset), err
	default:
		return 0, fmt.Errorf("expected date, got %T", v)
	}
}

// ReformatTimestamp converts an instant into microseconds since the epoch.
func ReformatTimestamp(v any) (int64, error) {
	switch value := v.(type) {
	case time.Time:
		return value.UnixMicro(), nil
	case string:
		t, err := parseStringTimestamp(value)
		if err != nil {
			return 0, err
		}
		return t.UnixMicro(), nil
	case int64:
		return value, nil
	case int, int32, float32, float64, json.Number:
		return ReformatInt64(value)
	default:
		return 0, fmt.Errorf("expected timestamp, got %T", v)
	}
}

// ReformatNumeric renders a decimal with NUMERIC scale (9 fractional digits).
func ReformatNumeric(v any) (string, error) {
	rat, err := reformatRat(v)
	if err != nil {
		return "", err
	}
	return bigquery.NumericString(rat), nil
}

// ReformatBigNumeric renders a decimal with BIGNUMERIC scale (38 digits).
func ReformatBigNumeric(v any) (string, error) {
	rat, err := reformatRat(v)
	if err != nil {
		return "", err
	}
	return bigquery.BigNumericString(rat), nil
}

func reformatRat(v any) (*big.Rat, error) {
	switch value := v.(type) {
	case *big.Rat:
		return value, nil
	case big.Rat:
		return &value, nil
	case *big.Int:
		return new(big.Rat).SetInt(value), nil
	case string:
		rat, ok := new(big.Rat).SetString(value)
		if !ok {
			return nil, fmt.Errorf("string [%s] is not a decimal", value)
		}
		return rat, nil
	case float64:
		return new(big.Rat).SetFloat64(value), nil
	case float32:
		return new(big.Rat).SetFloat64(float64(value)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := ReformatInt64(value)
		if err != nil {
			return nil, err
		}
		return new(big.Rat).SetInt64(i), nil
	default:
		return nil, fmt.Errorf("expected decimal, got %T", v)
	}
}

// ReformatJSON stringifies a value for a JSON column; composite values are
// JSON encoded, strings pass through untouched.
func ReformatJSON(v any) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("value is not JSON encodable: %s", err)
		}
		return string(raw), nil
	}
}
