package render

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/duckdesk/duckdesk/internal/query"
)

const (
	dateLayout        = "2006-01-02"
	timestampLayout   = "2006-01-02T15:04:05.999999999"
	timestampTZLayout = "2006-01-02T15:04:05.999999999Z07:00"
	timeLayout        = "15:04:05.999999"
)

type formatFunc func(column query.Column, value any) (string, error)

var formatters = map[query.LogicalType]formatFunc{
	query.TypeInt:       formatInt,
	query.TypeFloat:     formatFloat,
	query.TypeText:      formatText,
	query.TypeBool:      formatBool,
	query.TypeDate:      formatDate,
	query.TypeTimestamp: formatTimestamp,
	query.TypeNull:      formatOther,
	query.TypeOther:     formatOther,
}

// formatCell never panics; a failing converter surfaces as ErrFormat.
func formatCell(column query.Column, value any, nullDisplay string) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			text = ""
			err = query.NewError(query.ErrFormat, fmt.Errorf("column %q: %v", column.Name, recovered))
		}
	}()

	if value == nil {
		return nullDisplay, nil
	}
	format, ok := formatters[column.Type]
	if !ok {
		format = formatOther
	}
	return format(column, value)
}

func mismatch(column query.Column, value any) error {
	return query.NewError(query.ErrFormat, fmt.Errorf("column %q: cannot format %T as %s", column.Name, value, column.Type))
}

func formatInt(column query.Column, value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case *big.Int:
		return v.String(), nil
	default:
		return "", mismatch(column, value)
	}
}

func formatFloat(column query.Column, value any) (string, error) {
	switch v := value.(type) {
	case float32:
		return formatFloatBits(float64(v), 32), nil
	case float64:
		return formatFloatBits(v, 64), nil
	case goduckdb.Decimal:
		return formatDecimal(v), nil
	case *goduckdb.Decimal:
		return formatDecimal(*v), nil
	default:
		return "", mismatch(column, value)
	}
}

func formatFloatBits(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'e', -1, bits)
	}
	return strconv.FormatFloat(v, 'f', -1, bits)
}

// formatDecimal prints the exact scaled integer, keeping trailing zeros of
// the declared scale.
func formatDecimal(d goduckdb.Decimal) string {
	if d.Value == nil {
		return "0"
	}
	digits := new(big.Int).Abs(d.Value).String()
	scale := int(d.Scale)
	if scale > 0 {
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		point := len(digits) - scale
		digits = digits[:point] + "." + digits[point:]
	}
	if d.Value.Sign() < 0 {
		return "-" + digits
	}
	return digits
}

func formatText(column query.Column, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", mismatch(column, value)
	}
}

func formatBool(column query.Column, value any) (string, error) {
	v, ok := value.(bool)
	if !ok {
		return "", mismatch(column, value)
	}
	return strconv.FormatBool(v), nil
}

func formatDate(column query.Column, value any) (string, error) {
	v, ok := value.(time.Time)
	if !ok {
		return "", mismatch(column, value)
	}
	return v.Format(dateLayout), nil
}

func formatTimestamp(column query.Column, value any) (string, error) {
	v, ok := value.(time.Time)
	if !ok {
		return "", mismatch(column, value)
	}
	if hasTimeZone(column.DatabaseType) {
		return v.Format(timestampTZLayout), nil
	}
	return v.Format(timestampLayout), nil
}

func hasTimeZone(databaseType string) bool {
	name := strings.ToUpper(databaseType)
	return strings.HasSuffix(name, "TZ") || strings.Contains(name, "WITH TIME ZONE")
}

// formatOther renders anything the typed converters do not claim. It does not
// fail.
func formatOther(column query.Column, value any) (string, error) {
	name := strings.ToUpper(column.DatabaseType)
	switch v := value.(type) {
	case []byte:
		if name == "UUID" && len(v) == 16 {
			if id, err := uuid.FromBytes(v); err == nil {
				return id.String(), nil
			}
		}
		return formatBlob(v), nil
	case time.Time:
		if strings.HasPrefix(name, "TIME") && !strings.HasPrefix(name, "TIMESTAMP") {
			return v.Format(timeLayout), nil
		}
	}
	return formatValue(value), nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case []byte:
		return formatBlob(v)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return formatFloatBits(float64(v), 32)
	case float64:
		return formatFloatBits(v, 64)
	case *big.Int:
		return v.String()
	case goduckdb.Decimal:
		return formatDecimal(v)
	case goduckdb.Interval:
		return formatInterval(v)
	case uuid.UUID:
		return v.String()
	case time.Time:
		return formatNestedTime(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = key + ": " + formatValue(v[key])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case goduckdb.Map:
		parts := make([]string, 0, len(v))
		for key, item := range v {
			parts = append(parts, formatValue(key)+": "+formatValue(item))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Array && rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
		raw := make([]byte, 16)
		reflect.Copy(reflect.ValueOf(raw), rv)
		if id, err := uuid.FromBytes(raw); err == nil {
			return id.String()
		}
	}
	return fmt.Sprintf("%v", value)
}

// formatNestedTime picks a layout from the value alone, since nested values
// carry no column type. DuckDB decodes TIME as a clock reading on 0001-01-01
// and DATE as midnight UTC.
func formatNestedTime(v time.Time) string {
	switch {
	case v.Year() == 1 && v.YearDay() == 1:
		return v.Format(timeLayout)
	case v.Location() == time.UTC && v.Equal(v.Truncate(24*time.Hour)):
		return v.Format(dateLayout)
	default:
		return v.Format(timestampLayout)
	}
}

func formatBlob(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7f && c != '\\' {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, `\x%02X`, c)
	}
	return sb.String()
}

func formatInterval(v goduckdb.Interval) string {
	var parts []string
	years, months := v.Months/12, v.Months%12
	if years != 0 {
		parts = append(parts, plural(int64(years), "year"))
	}
	if months != 0 {
		parts = append(parts, plural(int64(months), "month"))
	}
	if v.Days != 0 {
		parts = append(parts, plural(int64(v.Days), "day"))
	}
	if v.Micros != 0 || len(parts) == 0 {
		micros := v.Micros
		sign := ""
		if micros < 0 {
			sign = "-"
			micros = -micros
		}
		d := time.Duration(micros) * time.Microsecond
		clock := fmt.Sprintf("%s%02d:%02d:%02d", sign, int64(d.Hours()), int64(d.Minutes())%60, int64(d.Seconds())%60)
		if frac := micros % 1_000_000; frac != 0 {
			clock += strings.TrimRight(fmt.Sprintf(".%06d", frac), "0")
		}
		parts = append(parts, clock)
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
