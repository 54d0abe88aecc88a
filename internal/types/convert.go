package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToInt64 converts an interface{} to int64.
// Supports the signed, unsigned and float kinds database drivers return;
// anything else yields 0.
func ToInt64(v interface{}) int64 {
	switch i := v.(type) {
	case int64:
		return i
	case int:
		return int64(i)
	case int32:
		return int64(i)
	case int16:
		return int64(i)
	case int8:
		return int64(i)
	case uint:
		return int64(i)
	case uint64:
		return int64(i)
	case uint32:
		return int64(i)
	case uint16:
		return int64(i)
	case uint8:
		return int64(i)
	case float64:
		return int64(i)
	case float32:
		return int64(i)
	default:
		return 0
	}
}

// ToItemID converts a scanned column value into an item identifier.
// The MySQL driver returns []byte for VARCHAR columns and int64 for integer
// columns. NULL and blank values report false.
func ToItemID(v interface{}) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case []byte:
		s = string(x)
	case string:
		s = x
	case int64:
		s = strconv.FormatInt(x, 10)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseDate parses a transaction timestamp in any of the supported layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ToTime converts a scanned DATE/DATETIME value. With parseTime=true the
// MySQL driver returns time.Time; text columns are parsed with ParseDate.
func ToTime(v interface{}) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return ParseDate(string(x))
	case string:
		return ParseDate(x)
	case nil:
		return time.Time{}, fmt.Errorf("date is NULL")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
