package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStations(t *testing.T) {
	table, err := DefaultStations()
	require.NoError(t, err)

	all := table.All()
	require.Len(t, all, 15)
	assert.Equal(t, "Adams/Wabash", all[0].Name)
	assert.Equal(t, "40540", all[0].ID)
}

func TestFindByNameOrID(t *testing.T) {
	table, err := DefaultStations()
	require.NoError(t, err)

	byID, ok := table.Find("40380")
	require.True(t, ok)
	assert.Equal(t, "Clark/Lake", byID.Name)

	byName, ok := table.Find("  clark/lake ")
	require.True(t, ok)
	assert.Equal(t, "40380", byName.ID)

	_, ok = table.Find("Narnia")
	assert.False(t, ok)

	assert.Equal(t, "Howard (Red/Purple/Yellow)", table.Name("40900"))
	assert.Equal(t, "99999", table.Name("99999"))
}

func TestFindClosest(t *testing.T) {
	table, err := DefaultStations()
	require.NoError(t, err)

	// a block north of Howard
	closest := table.FindClosest(42.0210, -87.6730, 3)
	require.Len(t, closest, 3)
	assert.Equal(t, "40900", closest[0].ID)
	assert.Less(t, closest[0].DistanceMeters, 500.0)
	assert.LessOrEqual(t, closest[0].DistanceMeters, closest[1].DistanceMeters)
	assert.LessOrEqual(t, closest[1].DistanceMeters, closest[2].DistanceMeters)
}

func TestParseStationsRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "stations: []"},
		{"missing id", "stations:\n  - name: Belmont\n"},
		{"duplicate id", "stations:\n  - {name: A, id: \"1\"}\n  - {name: B, id: \"1\"}\n"},
		{"not yaml", "stations: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStations([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, Haversine(41.88, -87.63, 41.88, -87.63), 1e-6)

	// Clark/Lake to Howard is roughly 15 km
	d := Haversine(41.885737, -87.630886, 42.019063, -87.672892)
	assert.InDelta(t, 15100, d, 500)
	assert.InDelta(t, d/1609.344, MetersToMiles(d), 1e-9)
}
