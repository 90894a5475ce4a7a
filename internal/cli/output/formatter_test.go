package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{FormatText, "*output.TextFormatter"},
		{"unknown", "*output.TextFormatter"}, // default to text
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			var ok bool
			switch tt.want {
			case "*output.JSONFormatter":
				_, ok = f.(*JSONFormatter)
			case "*output.YAMLFormatter":
				_, ok = f.(*YAMLFormatter)
			default:
				_, ok = f.(*TextFormatter)
			}
			if !ok {
				t.Errorf("NewFormatter(%q) = %T, want %s", tt.format, f, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"", FormatText, false},
		{"table", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("formats struct as JSON", func(t *testing.T) {
		data := struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{
			Name:  "test",
			Value: 42,
		}

		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `"name": "test"`) {
			t.Error("Format() missing name field")
		}
		if !strings.Contains(output, `"value": 42`) {
			t.Error("Format() missing value field")
		}
	})

	t.Run("does not escape html", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]string{"url": "/a?b=1&c=2"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), "/a?b=1&c=2") {
			t.Errorf("Format() = %s", buf.String())
		}
	})

	t.Run("formats nil as JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, nil); err != nil {
			t.Fatalf("Format(nil) error = %v", err)
		}
		if output := strings.TrimSpace(buf.String()); output != "null" {
			t.Errorf("Format(nil) = %q, want 'null'", output)
		}
	})
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	data := struct {
		Name     string        `yaml:"name"`
		Prefixes []string      `yaml:"prefixes"`
		Timeout  time.Duration `yaml:"timeout"`
	}{
		Name:     "test",
		Prefixes: []string{"http://+:8080/"},
		Timeout:  10 * time.Second,
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{"name: test\n", "- http://+:8080/\n", "timeout: 10s\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Format() = %q, missing %q", buf.String(), want)
		}
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := &TextFormatter{}

	data := map[string]any{
		"server": map[string]any{
			"prefixes": []string{"http://+:8080/", "https://+:8443/"},
		},
		"log": map[string]any{"level": "info"},
		"tls": nil,
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q, want 3", lines)
	}
	if !strings.HasPrefix(lines[0], "log.level") || !strings.HasSuffix(lines[0], "info") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "server.prefixes") || !strings.Contains(lines[1], `["http://+:8080/","https://+:8443/"]`) {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "tls") || !strings.HasSuffix(lines[2], "-") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestTextFormatter_Scalar(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).Format(&buf, "abc"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "abc\n" {
		t.Errorf("Format() = %q", buf.String())
	}

	buf.Reset()
	if err := (&TextFormatter{}).Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("Format(nil) = %q, %v", buf.String(), err)
	}
}

func TestFormatters_DecodedNumbersAndDurations(t *testing.T) {
	data := struct {
		Timeout time.Duration `yaml:"timeout"`
		Config  any           `yaml:"config"`
	}{
		Timeout: 10 * time.Second,
		Config: map[string]any{
			"a":    json.Number("1"),
			"b":    json.Number("2.5"),
			"list": []any{json.Number("3")},
		},
	}

	tests := []struct {
		name   string
		f      Formatter
		data   any
		want   []string
		reject []string
	}{
		{
			name:   "yaml map",
			f:      &YAMLFormatter{},
			data:   data.Config,
			want:   []string{"a: 1\n", "b: 2.5\n", "- 3\n"},
			reject: []string{`"1"`, `"2.5"`},
		},
		{
			name:   "text struct",
			f:      &TextFormatter{},
			data:   data,
			want:   []string{"timeout", "10s", "config.a", "config.b"},
			reject: []string{"1e+10", "10000000000"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.f.Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(out, r) {
					t.Errorf("output %q contains %q", out, r)
				}
			}
		})
	}
}

func TestPlainNumbers(t *testing.T) {
	got := PlainNumbers(map[string]any{
		"i":   json.Number("7"),
		"f":   json.Number("0.5"),
		"big": json.Number("1e400"),
		"s":   "7",
	}).(map[string]any)

	if got["i"] != int64(7) || got["f"] != 0.5 || got["s"] != "7" {
		t.Errorf("PlainNumbers() = %#v", got)
	}
	if got["big"] != "1e400" {
		t.Errorf("out of range number = %#v, want its literal", got["big"])
	}
}
