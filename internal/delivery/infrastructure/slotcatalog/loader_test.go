package slotcatalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/infrastructure/slotcatalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := slotcatalog.Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimeSlots, c.Strings())

	c, err = slotcatalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimeSlots, c.Strings())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_slots:\n  - \"18:00\"\n  - \"08:30\"\n  - \"18:00\"\n"), 0o600))

	c, err := slotcatalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:30", "18:00"}, c.Strings())
}

func TestParse_Errors(t *testing.T) {
	_, err := slotcatalog.Parse([]byte("time_slots: []\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)

	_, err = slotcatalog.Parse([]byte("time_slots:\n  - \"7pm\"\n"))
	assert.Error(t, err)

	_, err = slotcatalog.Parse([]byte("time_slots: [unterminated\n"))
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := slotcatalog.Marshal(domain.DefaultTimeSlotCatalog())
	require.NoError(t, err)

	c, err := slotcatalog.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimeSlots, c.Strings())
}
