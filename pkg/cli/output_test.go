package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(map[string]string{"name": "read_file"}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "read_file"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	err := Output(map[string]string{"name": "read_file"}, OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), "name: read_file") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatYAML {
		t.Errorf("empty format = %q, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("json format = %q, %v", f, err)
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("unsupported format should error")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
