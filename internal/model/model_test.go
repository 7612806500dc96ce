package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

func TestParseAction(t *testing.T) {
	a, err := model.ParseAction(" IN ")
	require.NoError(t, err)
	assert.Equal(t, model.ActionIn, a)

	a, err = model.ParseAction("OUT")
	require.NoError(t, err)
	assert.Equal(t, model.ActionOut, a)

	_, err = model.ParseAction("in")
	assert.Error(t, err)
	_, err = model.ParseAction("")
	assert.Error(t, err)
}

func TestNormalizeDepartment(t *testing.T) {
	assert.Equal(t, "Default", model.NormalizeDepartment(""))
	assert.Equal(t, "Default", model.NormalizeDepartment("   "))
	assert.Equal(t, "Sales", model.NormalizeDepartment(" Sales "))
}

func TestDepartmentSetRepair(t *testing.T) {
	s := model.DepartmentSet{
		Departments:       []string{"Ops", "", "Ops", "Sales"},
		CurrentDepartment: "Missing",
	}
	s.Repair()
	assert.Equal(t, []string{"Ops", "Sales"}, s.Departments)
	assert.Equal(t, "Ops", s.CurrentDepartment)

	empty := model.DepartmentSet{}
	empty.Repair()
	assert.Equal(t, model.DefaultDepartmentSet(), empty)
}

func TestTransparencyOneDecimal(t *testing.T) {
	data, err := json.Marshal(struct {
		T model.Transparency `json:"t"`
	}{T: 0.76})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":0.8}`, string(data))

	data, err = json.Marshal(model.Transparency(1.7))
	require.NoError(t, err)
	assert.Equal(t, "1.0", string(data))
}

func TestParsePosition(t *testing.T) {
	p, err := model.ParsePosition("bottom-center")
	require.NoError(t, err)
	assert.Equal(t, model.PositionBottomCenter, p)

	_, err = model.ParsePosition("center")
	assert.Error(t, err)
}
