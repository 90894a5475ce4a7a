package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/knadh/koanf/maps"
	"go.yaml.in/yaml/v3"
)

// TextFormatter lists data as dotted key/value pairs, one per line.
// Data that does not encode to a mapping is printed as-is.
type TextFormatter struct{}

// Format formats data as aligned key/value lines. Data goes through YAML
// so that keys follow yaml tags and durations keep their "10s" form.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	raw, err := yaml.Marshal(PlainNumbers(data))
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil || tree == nil {
		_, err = fmt.Fprintln(w, data)
		return err
	}

	flat, _ := maps.Flatten(tree, nil, ".")
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, formatValue(flat[k]))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []any:
		b, _ := json.Marshal(val)
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
