package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beamtime/snapvault/pkg/model"
)

func param(pv, desc string) *model.Parameter {
	return &model.Parameter{Meta: model.NewMeta(desc), PVName: pv}
}

func TestCriteriaZeroValueMatchesEverything(t *testing.T) {
	m, err := Criteria{}.Compile()
	require.NoError(t, err)

	assert.True(t, m.Match(param("MOTOR:01", "")))
	assert.True(t, m.Match(&model.Collection{Meta: model.NewMeta(""), Title: "x"}))
}

func TestCriteriaKind(t *testing.T) {
	m, err := Criteria{Kind: model.KindParameter}.Compile()
	require.NoError(t, err)

	assert.True(t, m.Match(param("MOTOR:01", "")))
	assert.False(t, m.Match(&model.Collection{Meta: model.NewMeta("")}))
}

func TestCriteriaGlobs(t *testing.T) {
	m, err := Criteria{Attrs: map[string]string{"pv_name": "MOTOR:*:SET"}}.Compile()
	require.NoError(t, err)

	assert.True(t, m.Match(param("MOTOR:01:SET", "")))
	assert.False(t, m.Match(param("MOTOR:01:RBV", "")))

	// an attribute the entry does not have never matches
	m, err = Criteria{Attrs: map[string]string{"title": "*"}}.Compile()
	require.NoError(t, err)
	assert.False(t, m.Match(param("MOTOR:01:SET", "")))
}

func TestCriteriaFilterExpression(t *testing.T) {
	m, err := Criteria{Filter: `data > 3.5 && severity == "no_alarm"`}.Compile()
	require.NoError(t, err)

	hot := &model.Setpoint{Meta: model.NewMeta(""), Data: 4.2, Severity: model.SeverityNoAlarm}
	cold := &model.Setpoint{Meta: model.NewMeta(""), Data: 1.0, Severity: model.SeverityNoAlarm}
	assert.True(t, m.Match(hot))
	assert.False(t, m.Match(cold))

	// evaluation errors mean no match, not a panic
	assert.False(t, m.Match(&model.Collection{Meta: model.NewMeta("")}))
}

func TestCriteriaCompileErrors(t *testing.T) {
	_, err := Criteria{Attrs: map[string]string{"pv_name": "[unclosed"}}.Compile()
	require.Error(t, err)

	_, err = Criteria{Filter: "not ( valid"}.Compile()
	require.Error(t, err)
}
