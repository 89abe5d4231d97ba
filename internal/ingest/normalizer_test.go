package ingest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottoledger/internal/reconcile"
	"lottoledger/internal/rules"
	dErrors "lottoledger/pkg/domain-errors"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return NewNormalizer(rules.MustNewRegistry(rules.Defaults()...), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNormalize_CleanObservation(t *testing.T) {
	n := newTestNormalizer(t)

	cand, warnings, err := n.Normalize(RawObservation{
		Game:    "lotto649",
		DrawRef: "#2041",
		Numbers: []string{"45", "3", "27", "11", "34", "19"},
	}, "official-site", 0.95)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, []int{3, 11, 19, 27, 34, 45}, cand.Mains, "mains come out sorted")
	assert.Equal(t, reconcile.DrawRef{Seq: 2041}, cand.Ref)
	assert.False(t, cand.BonusKnown)
	assert.Equal(t, 0.95, cand.Trust)
	assert.Equal(t, 1.0, cand.Confidence)
}

func TestNormalize_DropsBadValuesWithWarnings(t *testing.T) {
	n := newTestNormalizer(t)

	cand, warnings, err := n.Normalize(RawObservation{
		Game:    "lotto649",
		DrawRef: "2041",
		Numbers: []string{"3", "77", "11", "11", "x9", "19"},
	}, "scraper-a", 0.6)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 11, 19}, cand.Mains)

	// 77 out of range, 11 duplicated, x9 malformed, plus the partial note.
	require.Len(t, warnings, 4)
	assert.Less(t, cand.Confidence, 1.0)
	assert.GreaterOrEqual(t, cand.Confidence, confidenceFloor)
	assert.Len(t, cand.Warnings, 4)
}

func TestNormalize_ConfidenceFloor(t *testing.T) {
	n := newTestNormalizer(t)

	obs := RawObservation{
		Game:       "lotto649",
		DrawRef:    "2041",
		Numbers:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o"},
		Confidence: 0.5,
	}
	cand, _, err := n.Normalize(obs, "scraper-b", 0.5)
	require.NoError(t, err)
	assert.Equal(t, confidenceFloor, cand.Confidence)
}

func TestNormalize_BonusAbsentVersusEmpty(t *testing.T) {
	n := newTestNormalizer(t)

	absent, _, err := n.Normalize(RawObservation{
		Game:    "powerballx",
		DrawRef: "512",
		Numbers: []string{"5", "14", "23", "41", "60"},
	}, "src", 0.8)
	require.NoError(t, err)
	assert.False(t, absent.BonusKnown, "nil bonus means unknown, never inferred")

	present, _, err := n.Normalize(RawObservation{
		Game:    "powerballx",
		DrawRef: "512",
		Numbers: []string{"5", "14", "23", "41", "60"},
		Bonus:   []string{"9"},
	}, "src", 0.8)
	require.NoError(t, err)
	assert.True(t, present.BonusKnown)
	assert.Equal(t, []int{9}, present.Bonus)
}

func TestNormalize_BonusOnBonuslessGame(t *testing.T) {
	n := newTestNormalizer(t)

	cand, warnings, err := n.Normalize(RawObservation{
		Game:    "lotto649",
		DrawRef: "2041",
		Numbers: []string{"3", "11", "19", "27", "34", "45"},
		Bonus:   []string{"7"},
	}, "src", 0.8)
	require.NoError(t, err)

	assert.False(t, cand.BonusKnown)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "no bonus slots")
}

func TestNormalize_Failures(t *testing.T) {
	n := newTestNormalizer(t)

	_, _, err := n.Normalize(RawObservation{Game: "keno", DrawRef: "1"}, "src", 0.5)
	assert.Equal(t, dErrors.CodeUnknownGameType, dErrors.CodeOf(err))

	_, _, err = n.Normalize(RawObservation{Game: "lotto649", DrawRef: "next tuesday"}, "src", 0.5)
	assert.Equal(t, dErrors.CodeUnresolvableDrawID, dErrors.CodeOf(err))
}

func TestParseDrawRef(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    reconcile.DrawRef
		wantErr bool
	}{
		{name: "bare sequence", raw: "2041", want: reconcile.DrawRef{Seq: 2041}},
		{name: "hash prefixed", raw: "#2041", want: reconcile.DrawRef{Seq: 2041}},
		{name: "iso date", raw: "2026-08-15", want: reconcile.DrawRef{Date: "2026-08-15"}},
		{name: "long form date", raw: "Aug 15, 2026", want: reconcile.DrawRef{Date: "2026-08-15"}},
		{name: "padded", raw: "  512 ", want: reconcile.DrawRef{Seq: 512}},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "garbage", raw: "draw-??", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDrawRef(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, dErrors.CodeUnresolvableDrawID, dErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
