package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) Value {
	t.Helper()
	v, err := Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func TestFindField_ShallowWins(t *testing.T) {
	v := mustDecode(t, `{"a": 1, "b": {"a": 2}}`)

	got, ok := FindField(v, "a").AsNumber()
	require.True(t, ok)
	assert.Equal(t, 1.0, got)
}

func TestFindField_ShallowWinsEvenWhenDeclaredLast(t *testing.T) {
	v := mustDecode(t, `{"b": {"a": 2}, "a": 1}`)

	got, _ := FindField(v, "a").AsNumber()
	assert.Equal(t, 1.0, got)
}

func TestFindField_DepthSearch(t *testing.T) {
	v := mustDecode(t, `{"b": {"c": {"target": 5}}}`)

	got, ok := FindField(v, "target").AsNumber()
	require.True(t, ok)
	assert.Equal(t, 5.0, got)
}

func TestFindField_KeyOrderDecidesBetweenSiblings(t *testing.T) {
	v := mustDecode(t, `{"z": {"x": "from z"}, "a": {"x": "from a"}}`)

	got, _ := FindField(v, "x").AsString()
	assert.Equal(t, "from z", got)
}

func TestFindField_SkipsNullDeepMatches(t *testing.T) {
	v := mustDecode(t, `{"first": {"x": null}, "second": {"x": 3}}`)

	got, _ := FindField(v, "x").AsNumber()
	assert.Equal(t, 3.0, got)
}

func TestFindField_SearchesArrays(t *testing.T) {
	v := mustDecode(t, `{"checks": [{"name": "flexure"}, {"phiVc_kN": 88.5}]}`)

	got, _ := FindField(v, "phiVc_kN").AsNumber()
	assert.Equal(t, 88.5, got)
}

func TestFindField_ReturnsContainers(t *testing.T) {
	v := mustDecode(t, `{"results": {"punching": {"punching_safe": true, "phi": 0.75}}}`)

	p := FindField(v, "punching")
	require.True(t, p.IsObject())
	assert.Equal(t, []string{"punching_safe", "phi"}, p.Keys())
}

func TestFindField_NotFound(t *testing.T) {
	assert.True(t, FindField(mustDecode(t, `{}`), "missing").IsNull())
	assert.True(t, FindField(Null(), "x").IsNull())
	assert.True(t, FindField(Number(3), "x").IsNull())
	assert.True(t, FindField(String("x"), "x").IsNull())
	assert.True(t, FindField(mustDecode(t, `{"a": {"b": 1}}`), "c").IsNull())
}

func TestFindField_RepeatedShapesTerminate(t *testing.T) {
	leaf := NewObject(M("n", Number(1)))
	level := NewObject(M("l", leaf), M("r", leaf))
	for i := 0; i < 12; i++ {
		level = NewObject(M("l", level), M("r", level))
	}

	assert.True(t, FindField(level, "absent").IsNull())
	got, _ := FindField(level, "n").AsNumber()
	assert.Equal(t, 1.0, got)
}

func TestFindReportLocations(t *testing.T) {
	v := mustDecode(t, `{
		"inputs": {"Pu_kN": 800},
		"results": {
			"side_m": 2.4,
			"report_paths": {"txt": "/reports/f.txt", "html": "/reports/f.html"}
		}
	}`)

	rp := FindReportLocations(v)
	require.True(t, rp.IsObject())
	html, _ := rp.Get("html").AsString()
	assert.Equal(t, "/reports/f.html", html)
	assert.Equal(t, []string{"txt", "html"}, rp.Keys())

	assert.True(t, FindReportLocations(mustDecode(t, `{"beam": {}}`)).IsNull())
}

func TestFindAnyAndAliases(t *testing.T) {
	v := mustDecode(t, `{"shear": {"phi_Vc_kN": 61.2, "Vu_kN": 40}}`)

	assert.True(t, FindAny(v, "nope", "also_nope").IsNull())
	got, _ := FindAny(v, "phiVc_kN", "phi_Vc_kN").AsNumber()
	assert.Equal(t, 61.2, got)

	a := Aliases{"shear_capacity": {"phiVc_kN", "phi_Vc_kN", "phiVn_kN"}}
	got, _ = a.Lookup(v, "shear_capacity").AsNumber()
	assert.Equal(t, 61.2, got)

	got, _ = a.Lookup(v, "Vu_kN").AsNumber()
	assert.Equal(t, 40.0, got)

	merged := a.Merge(Aliases{"shear_capacity": {"Vn"}, "demand": {"Vu_kN"}})
	assert.Equal(t, []string{"Vn"}, merged["shear_capacity"])
	assert.Len(t, merged, 2)
	assert.Equal(t, []string{"phiVc_kN", "phi_Vc_kN", "phiVn_kN"}, a["shear_capacity"])
}
