package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Brooks", "Brooks"},
		{25.0, "25.0"},
		{10.24, "10.2"},
		{2023, "2023"},
		{true, "true"},
		{false, "false"},
		{[]string{"Neutral", "Overpronation"}, "{Neutral, Overpronation}"},
		{[]string{}, "{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "FormatValue(%#v)", tt.in)
	}
}

func TestDisplayName(t *testing.T) {
	d := ColumnDescriptor{Key: "heel_toe_drop", Name: "Heel to Toe Drop", Unit: "mm"}
	assert.Equal(t, "Heel to Toe Drop (mm)", d.DisplayName())

	d = ColumnDescriptor{Key: "brand", Name: "Brand"}
	assert.Equal(t, "Brand", d.DisplayName())
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"", GenderNone},
		{"none", GenderNone},
		{"Male", GenderMen},
		{"women", GenderWomen},
		{"female", GenderWomen},
	}
	for _, tt := range tests {
		got, err := ParseGender(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseGender("kids")
	assert.Error(t, err)
}

func TestTableHeader(t *testing.T) {
	tbl := &Table{Descriptors: []ColumnDescriptor{
		{Key: "brand", Name: "Brand"},
		{Key: "weight", Name: "Weight", Unit: "oz"},
	}}
	assert.Equal(t, []string{"ENTITY_NAME", "Brand", "Weight (oz)"}, tbl.Header())
}

func TestDefaultVisibleSkipsHiddenColumns(t *testing.T) {
	ct := CatalogType{Descriptors: []ColumnDescriptor{
		{Key: "brand"},
		{Key: "msrp", HiddenByDefault: true},
		{Key: "weight", Store: true},
	}}
	visible := ct.DefaultVisible()
	require.Len(t, visible, 2)
	assert.Equal(t, "brand", visible[0].Key)
	assert.Equal(t, "weight", visible[1].Key)

	stored := ct.StorageEligible()
	require.Len(t, stored, 1)
	assert.Equal(t, "weight", stored[0].Key)
}
