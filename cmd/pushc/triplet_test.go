package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pushc/internal/config"
)

func TestParseTripletKeyValue(t *testing.T) {
	tr, err := ParseTriplet("arch=x86_64,os=linux,backend=llvm")
	require.NoError(t, err)
	require.Equal(t, "x86_64", tr["arch"])
	require.Equal(t, "linux", tr["os"])
	require.Equal(t, "llvm", tr["backend"])
}

func TestParseTripletPositional(t *testing.T) {
	tr, err := ParseTriplet("x86_64-linux-native")
	require.NoError(t, err)
	require.Equal(t, "x86_64", tr["arch"])
	require.Equal(t, "linux", tr["os"])
	require.Equal(t, "native", tr["platform"])
	_, hasFormat := tr["format"]
	require.False(t, hasFormat)
}

func TestParseTripletRejectsUnknownSlot(t *testing.T) {
	_, err := ParseTriplet("cpu=x86_64")
	require.Error(t, err)
}

func TestParseTripletRejectsTooManyComponents(t *testing.T) {
	_, err := ParseTriplet("a-b-c-d-e-f-g-h-i")
	require.Error(t, err)
}

func TestTripletStore(t *testing.T) {
	prefs := config.NewPreferences()
	tr, err := ParseTriplet("arch=arm64")
	require.NoError(t, err)
	tr.Store(prefs)
	v, ok := prefs.GetString("triplet.arch")
	require.True(t, ok)
	require.Equal(t, "arm64", v)
}

func TestApplyConfigFlags(t *testing.T) {
	prefs := config.NewPreferences()
	require.NoError(t, applyConfigFlags(prefs, []string{"release", "opt_level=3", "name=demo", "strict=false"}))

	b, ok := prefs.GetBool("release")
	require.True(t, ok)
	require.True(t, b)
	n, ok := prefs.GetInt("opt_level")
	require.True(t, ok)
	require.Equal(t, 3, n)
	s, ok := prefs.GetString("name")
	require.True(t, ok)
	require.Equal(t, "demo", s)
	b, ok = prefs.GetBool("strict")
	require.True(t, ok)
	require.False(t, b)
}

func TestExpandFilesPassesPlainPathsThrough(t *testing.T) {
	files, err := expandFiles([]string{"a.push", "b.push"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.push", "b.push"}, files)
}
