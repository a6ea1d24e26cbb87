package output

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		wide   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{FormatTable, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format, tt.wide)
			if f == nil {
				t.Fatal("NewFormatter returned nil")
			}

			switch tt.format {
			case FormatJSON:
				if _, ok := f.(*JSONFormatter); !ok {
					t.Error("expected JSONFormatter")
				}
			case FormatYAML:
				if _, ok := f.(*YAMLFormatter); !ok {
					t.Error("expected YAMLFormatter")
				}
			default:
				tf, ok := f.(*TableFormatter)
				if !ok {
					t.Fatal("expected TableFormatter")
				}
				if tf.Wide != tt.wide {
					t.Errorf("Wide = %v, want %v", tf.Wide, tt.wide)
				}
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
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("struct", func(t *testing.T) {
		data := struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{Name: "test", Value: 42}

		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"name": "test"`) {
			t.Error("Format() missing name field")
		}
		if !strings.Contains(buf.String(), `"value": 42`) {
			t.Error("Format() missing value field")
		}
	})

	t.Run("no html escaping", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]string{"dsn": "postgresql://h/db?a=1&b=2"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), "a=1&b=2") {
			t.Errorf("Format() escaped the DSN: %s", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, nil); err != nil {
			t.Fatalf("Format(nil) error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "null" {
			t.Errorf("Format(nil) = %q, want 'null'", got)
		}
	})
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	data := struct {
		Name  string   `yaml:"name"`
		Port  int      `yaml:"port"`
		Slots []string `yaml:"slots"`
	}{
		Name:  "validator",
		Port:  8000,
		Slots: []string{"blue", "green"},
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "name: validator") {
		t.Errorf("Format() missing name, got:\n%s", out)
	}
	if !strings.Contains(out, "  - blue") {
		t.Errorf("Format() should indent sequences by two spaces, got:\n%s", out)
	}

	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if back["port"] != 8000 {
		t.Errorf("port = %v, want 8000", back["port"])
	}
}
