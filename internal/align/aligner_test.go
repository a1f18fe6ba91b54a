package align

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/catalog/catalogtest"
	"github.com/media-luna/eureka/internal/ferrors"
)

func TestAlignReturnsNoMatchOnEmptyInput(t *testing.T) {
	cat := catalogtest.New()
	_, err := Align(context.Background(), cat, nil, 44100, 0.5, 4096)
	assert.True(t, errors.Is(err, ferrors.NoMatch))
}

func TestAlignPicksFirstSeenOnTies(t *testing.T) {
	cat := catalogtest.New()
	id1, err := cat.InsertRecord(context.Background(), "track-one", "SHA1ONE")
	require.NoError(t, err)
	id2, err := cat.InsertRecord(context.Background(), "track-two", "SHA1TWO")
	require.NoError(t, err)

	// id1 reaches count 2 before id2 does; both plateau at 2, id1 must win.
	matches := []catalog.MatchResult{
		{RecordID: id1, Delta: 5},
		{RecordID: id1, Delta: 5},
		{RecordID: id2, Delta: 7},
		{RecordID: id2, Delta: 7},
	}

	rec, err := Align(context.Background(), cat, matches, 44100, 0.5, 4096)
	require.NoError(t, err)
	assert.Equal(t, id1, rec.RecordID)
	assert.Equal(t, 2, rec.Confidence)
	assert.Equal(t, 5, rec.Offset)
}

func TestAlignReturnsNoMatchWhenWinningRecordMissing(t *testing.T) {
	cat := catalogtest.New()
	// no InsertRecord call: recordID 1 does not exist
	matches := []catalog.MatchResult{{RecordID: 1, Delta: 0}}

	_, err := Align(context.Background(), cat, matches, 44100, 0.5, 4096)
	assert.True(t, errors.Is(err, ferrors.NoMatch))
}

func TestOffsetSecondsRounding(t *testing.T) {
	got := OffsetSeconds(10, 44100, 4096, 0.5)
	assert.InDelta(t, 0.46440, got, 1e-5)
}

func TestOffsetSecondsZeroDelta(t *testing.T) {
	assert.Equal(t, 0.0, OffsetSeconds(0, 44100, 4096, 0.5))
}
