package converter

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/noteroll/pkg/sequence"
)

func TestFactoryBuildsEachKind(t *testing.T) {
	tests := []struct {
		spec  Spec
		depth int
	}{
		{Spec{Kind: KindDrums, Args: Config{StepCount: 4, PitchClasses: [][]int{{36}, {38}}}}, 4},
		{Spec{Kind: KindDrumRoll, Args: Config{StepCount: 4, PitchClasses: [][]int{{36}, {38}}}}, 3},
		{Spec{Kind: KindMelody, Args: Config{StepCount: 4, MinPitch: intPtr(60), MaxPitch: intPtr(61)}}, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.spec.Kind), func(t *testing.T) {
			conv, err := New(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, 4, conv.StepCount())
			assert.Equal(t, tt.depth, conv.Depth())
		})
	}
}

func TestFactoryUnknownKind(t *testing.T) {
	_, err := New(Spec{Kind: "tabs", Args: Config{StepCount: 4}})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFactoryPropagatesBadArgs(t *testing.T) {
	_, err := New(Spec{Kind: KindMelody, Args: Config{StepCount: 4}})
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestFactoryPassesThroughHints(t *testing.T) {
	conv, err := New(Spec{Kind: KindDrums, Args: Config{
		StepCount:    16,
		SegmentCount: 4,
		SplitCount:   2,
	}})
	require.NoError(t, err)
	assert.Equal(t, 4, conv.SegmentCount())
	assert.Equal(t, 2, conv.SplitCount())
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(`{
		"kind": "melody",
		"args": {"stepCount": 32, "minPitch": 48, "maxPitch": 83, "segmentCount": 4}
	}`))
	require.NoError(t, err)
	assert.Equal(t, KindMelody, spec.Kind)
	assert.Equal(t, 32, spec.Args.StepCount)
	require.NotNil(t, spec.Args.MinPitch)
	assert.Equal(t, 48, *spec.Args.MinPitch)

	conv, err := New(spec)
	require.NoError(t, err)
	assert.Equal(t, 38, conv.Depth())
}

func TestParseSpecBadJSON(t *testing.T) {
	_, err := ParseSpec([]byte(`{"kind":`))
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestConverterConcurrentUse(t *testing.T) {
	conv, err := New(Spec{Kind: KindDrumRoll, Args: Config{StepCount: 8}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(pitch int) {
			defer wg.Done()
			seq := sequence.New(8)
			seq.Add(36, 0, 1)
			seq.Add(38, pitch%8, pitch%8+1)

			enc, err := conv.Encode(seq)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := conv.Decode(context.Background(), enc); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}
