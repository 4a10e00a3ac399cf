package solutionsheet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailabilityTimeNeverIgnoresOtherInputs(t *testing.T) {
	for _, dueDate := range []int64{0, 1, 1700000000} {
		for _, offset := range []int64{-10, 0, 86400} {
			cfg := Config{ShowType: ShowNever, ShowOffsetSeconds: offset, HideAfter: 5}
			require.Equal(t, NeverAvailable, AvailabilityTime(cfg, dueDate))
		}
	}
}

func TestAvailabilityTimeImmediate(t *testing.T) {
	for _, dueDate := range []int64{0, 1700000000} {
		cfg := Config{ShowType: ShowImmediately, ShowOffsetSeconds: 3600}
		require.Equal(t, AvailableImmediately, AvailabilityTime(cfg, dueDate))
	}
}

func TestAvailabilityTimeAfterDueDate(t *testing.T) {
	cfg := Config{ShowType: ShowAfterDueDate, ShowOffsetSeconds: 86400}
	require.Equal(t, int64(1700086400), AvailabilityTime(cfg, 1700000000))

	for _, offset := range []int64{0, 60, 86400} {
		cfg.ShowOffsetSeconds = offset
		require.Equal(t, NeverAvailable, AvailabilityTime(cfg, 0))
	}
}

func TestAvailabilityTimeCorruptOffsetStaysNever(t *testing.T) {
	cases := map[string]int64{
		"min int":   math.MinInt64,
		"max int":   math.MaxInt64,
		"pre epoch": -1700000001,
	}
	for name, offset := range cases {
		cfg := Config{ShowType: ShowAfterDueDate, ShowOffsetSeconds: offset}
		require.Equal(t, NeverAvailable, AvailabilityTime(cfg, 1700000000), name)
		require.False(t, StudentsCanView(cfg, 1700000000, 1800000000), name)
	}

	cfg := Config{ShowType: ShowAfterDueDate, ShowOffsetSeconds: -3600}
	require.Equal(t, int64(1699996400), AvailabilityTime(cfg, 1700000000))
}

func TestAvailabilityTimeUnknownShowType(t *testing.T) {
	cfg := Config{ShowType: ShowType(7)}
	require.Equal(t, NeverAvailable, AvailabilityTime(cfg, 1700000000))
	require.False(t, cfg.ShowType.Valid())
	require.Equal(t, "unknown", cfg.ShowType.String())
}

func TestIsAvailableNowIsStrict(t *testing.T) {
	cfg := Config{ShowType: ShowAfterDueDate}
	require.False(t, IsAvailableNow(cfg, 100, 100))
	require.True(t, IsAvailableNow(cfg, 100, 101))
	require.False(t, IsAvailableNow(cfg, 100, 99))

	never := Config{ShowType: ShowNever}
	for _, now := range []int64{-5, 0, 100, 1 << 40} {
		require.False(t, IsAvailableNow(never, 100, now))
	}
}

func TestIsHiddenAgain(t *testing.T) {
	for _, now := range []int64{0, 50, 1 << 40} {
		require.False(t, IsHiddenAgain(Config{HideAfter: 0}, now))
	}
	require.True(t, IsHiddenAgain(Config{HideAfter: 50}, 51))
	require.False(t, IsHiddenAgain(Config{HideAfter: 50}, 50))
}

func TestStudentsCanViewWindow(t *testing.T) {
	cfg := Config{ShowType: ShowAfterDueDate, ShowOffsetSeconds: 10, HideAfter: 200}
	const dueDate = 100

	require.False(t, StudentsCanView(cfg, dueDate, 110))
	require.True(t, StudentsCanView(cfg, dueDate, 111))
	require.True(t, StudentsCanView(cfg, dueDate, 200))
	require.False(t, StudentsCanView(cfg, dueDate, 201))
}

func TestStudentsCanViewStaysHiddenOnceHidden(t *testing.T) {
	cfg := Config{ShowType: ShowImmediately, HideAfter: 500}

	hidden := false
	for now := int64(400); now < 700; now++ {
		visible := StudentsCanView(cfg, 0, now)
		if hidden {
			require.False(t, visible, "visible again at %d", now)
		}
		if !visible {
			hidden = true
		}
	}
	require.True(t, hidden)
}

func TestEndToEndDueDateWithoutOffset(t *testing.T) {
	cfg := Config{ShowType: ShowAfterDueDate, ShowOffsetSeconds: 0, HideAfter: 0}

	before := Resolve(cfg, 1000, 999)
	require.False(t, before.AvailableNow)
	require.False(t, before.StudentsCanView)

	after := Resolve(cfg, 1000, 1001)
	require.True(t, after.AvailableNow)
	require.False(t, after.HiddenAgain)
	require.True(t, after.StudentsCanView)
	require.Equal(t, int64(1000), after.AvailabilityTime)
}

func TestCanUploaderView(t *testing.T) {
	cases := []struct {
		name                 string
		anytime, conditional bool
		studentsCanView      bool
		want                 bool
	}{
		{name: "anytime wins", anytime: true, studentsCanView: false, want: true},
		{name: "conditional follows students", conditional: true, studentsCanView: true, want: true},
		{name: "conditional hidden", conditional: true, studentsCanView: false, want: false},
		{name: "no capability", studentsCanView: true, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanUploaderView(tc.anytime, tc.conditional, tc.studentsCanView))
		})
	}
}
