package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{"闖紅燈", "未保持安全距離", "逆向行駛", "違規變換車道"}, c.Names())

	citation, ok := c.Lookup("闖紅燈")
	require.True(t, ok)
	assert.Equal(t, "§53：駕駛人不依號誌指示行駛", citation)
}

func TestLookup_TotalOverKeys(t *testing.T) {
	c := Default()
	for _, name := range c.Names() {
		citation, ok := c.Lookup(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, citation, name)
	}

	_, ok := c.Lookup(None)
	assert.False(t, ok)
}

func TestOptions(t *testing.T) {
	opts := Default().Options()
	require.Len(t, opts, 5)
	assert.Equal(t, None, opts[0])
	assert.Equal(t, "違規變換車道", opts[4])
}

func TestValidate(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate(None))
	assert.NoError(t, c.Validate("逆向行駛"))

	err := c.Validate("超速")
	assert.True(t, errors.Is(err, ErrUnknownViolation))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "violations: []"},
		{"reserved name", "violations:\n  - name: 無\n    citation: x"},
		{"empty citation", "violations:\n  - name: 超速\n    citation: ''"},
		{"duplicate", "violations:\n  - name: a\n    citation: x\n  - name: a\n    citation: y"},
		{"broken yaml", "violations: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 4)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("violations:\n  - name: 超速\n    citation: \"§40：超速行駛\"\n"), 0644))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"超速"}, c.Names())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEntries_IsCopy(t *testing.T) {
	c := Default()
	entries := c.Entries()
	entries[0].Citation = "changed"

	citation, _ := c.Lookup(entries[0].Name)
	assert.NotEqual(t, "changed", citation)
}
