package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() dto.ProfileView {
	return dto.ProfileView{
		Name: "dev",
		File: "/p/rodoo.toml",
		Key:  "18.0/py3.12/community",
		Fields: []dto.FieldView{
			{Key: "version", Value: "18.0", Source: "file"},
			{Key: "modules", Value: []string{"sale", "stock"}, Source: "cli"},
			{Key: "db", Value: "", Source: "default"},
		},
	}
}

func sampleEntries() []dto.CacheEntryView {
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []dto.CacheEntryView{
		{Kind: "source", Name: "18.0/community", Path: "/c/src/18.0/community", Complete: true, ModTime: mod},
		{Kind: "environment", Name: "odoo-18.0-py3.12", Path: "/c/venvs/odoo-18.0-py3.12", ModTime: mod},
	}
}

func TestYAMLFormatter_FormatProfile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatProfile(sampleProfile()))

	out := buf.String()
	assert.Contains(t, out, "name: dev\n")
	assert.Contains(t, out, "file: /p/rodoo.toml\n")
	assert.Contains(t, out, "  version:\n    value: ")
	assert.Contains(t, out, "    source: file\n")
	assert.Contains(t, out, "source: cli")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("version:")), bytes.Index(buf.Bytes(), []byte("modules:")))
}

func TestJSONFormatter_FormatCacheEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).FormatCacheEntries(sampleEntries()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "18.0/community", decoded[0]["name"])
	assert.Equal(t, false, decoded[1]["complete"])
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)

	require.NoError(t, f.FormatCacheEntries(sampleEntries()))
	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "incomplete")
	assert.NotContains(t, out, "\033[")

	buf.Reset()
	require.NoError(t, f.FormatProfile(sampleProfile()))
	assert.Contains(t, buf.String(), "sale,stock")
	assert.Contains(t, buf.String(), "Profile: dev")

	buf.Reset()
	require.NoError(t, f.FormatCacheEntries(nil))
	assert.Equal(t, "Cache is empty.\n", buf.String())
}

func TestFormatterFactory_Create(t *testing.T) {
	factory := NewFormatterFactory(false)
	buf := &bytes.Buffer{}

	tests := []struct {
		name        string
		format      string
		wantType    interface{}
		wantErr     bool
		errContains string
	}{
		{name: "table format", format: "table", wantType: &TableFormatter{}},
		{name: "json format", format: "json", wantType: &JSONFormatter{}},
		{name: "yaml format", format: "yaml", wantType: &YAMLFormatter{}},
		{name: "unknown format", format: "sarif", wantErr: true, errContains: "unknown format: sarif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := factory.Create(tt.format, buf)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, formatter)
		})
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Success("ready %s", "18.0")
	c.Warn("slow")
	c.Error("failed")

	assert.Equal(t, "✓ ready 18.0\n! slow\n✗ failed\n", buf.String())
}
