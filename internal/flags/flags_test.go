package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_UsesDefaults(t *testing.T) {
	r := New(nil)

	require.True(t, r.Enabled(FlagReplyHighlight))
	require.True(t, r.Enabled(FlagWitchingHour))
	require.True(t, r.Enabled(FlagLocationBar))
}

func TestNew_OverridesDefaults(t *testing.T) {
	r := New(map[string]bool{FlagReplyHighlight: false, "experimental": true})

	require.False(t, r.Enabled(FlagReplyHighlight))
	require.True(t, r.Enabled("experimental"))
}

func TestEnabled_UnknownFlagIsFalse(t *testing.T) {
	require.False(t, New(nil).Enabled("does-not-exist"))
}

func TestEnabled_NilRegistry(t *testing.T) {
	var r *Registry
	require.False(t, r.Enabled(FlagWitchingHour))
	require.Empty(t, r.All())
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := New(nil)
	all := r.All()
	all[FlagWitchingHour] = false

	require.True(t, r.Enabled(FlagWitchingHour), "mutating the copy must not leak into the registry")
}
