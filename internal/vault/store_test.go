package vault

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLane(t *testing.T) {
	tests := []struct {
		input   string
		want    Lane
		wantErr bool
	}{
		{"Dialogue", LaneDialogue, false},
		{"narration", LaneNarration, false},
		{"  INTERIORITY  ", LaneInteriority, false},
		{"Action", LaneAction, false},
		{"Montage", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lane, err := ParseLane(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lane)
			assert.True(t, lane.Valid())
		})
	}
}

func TestStore_Create(t *testing.T) {
	s := NewStore("voice_vault")

	t.Run("creates with all lanes present", func(t *testing.T) {
		require.True(t, s.Create("Hemingway"))

		stats := s.Stats("Hemingway")
		assert.Len(t, stats, 4)
		for _, lane := range Lanes() {
			assert.Equal(t, 0, stats[lane])
		}
	})

	t.Run("duplicate name is a no-op failure", func(t *testing.T) {
		require.True(t, s.AddSample("Hemingway", LaneDialogue, "He said nothing."))
		assert.False(t, s.Create("Hemingway"))

		// Existing samples survive the failed create
		assert.Equal(t, 1, s.Stats("Hemingway")[LaneDialogue])
	})
}

func TestStore_AddSample(t *testing.T) {
	t.Run("rejects empty and whitespace-only text", func(t *testing.T) {
		s := NewStore("voice_vault")
		assert.False(t, s.AddSample("V", LaneNarration, ""))
		assert.False(t, s.AddSample("V", LaneNarration, "   \n\t "))
		assert.Empty(t, s.Names())
	})

	t.Run("rejects unknown lanes", func(t *testing.T) {
		s := NewStore("voice_vault")
		assert.False(t, s.AddSample("V", Lane("Monologue"), "some text"))
		assert.False(t, s.AddSample("V", Lane(""), "some text"))
		assert.Empty(t, s.Names())
	})

	t.Run("auto-creates missing collection", func(t *testing.T) {
		s := NewStore("voice_vault")
		require.True(t, s.AddSample("V", LaneNarration, "The sea was calm that morning."))
		assert.Equal(t, []string{"V"}, s.Names())
		assert.Equal(t, 1, s.Stats("V")[LaneNarration])
	})

	t.Run("trims text and computes word count and fingerprint", func(t *testing.T) {
		s := NewStore("voice_vault")
		require.True(t, s.AddSample("V", LaneAction, "  He ran. He did not look back.  "))

		samples := s.Samples("V", LaneAction)
		require.Len(t, samples, 1)
		assert.Equal(t, "He ran. He did not look back.", samples[0].Text)
		assert.Equal(t, 7, samples[0].WordCount)
		assert.False(t, samples[0].Fingerprint.IsZero())
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		s := NewStore("voice_vault")
		for i := 0; i < 5; i++ {
			require.True(t, s.AddSample("V", LaneDialogue, fmt.Sprintf("sample number %d", i)))
		}
		samples := s.Samples("V", LaneDialogue)
		require.Len(t, samples, 5)
		for i, sample := range samples {
			assert.Equal(t, fmt.Sprintf("sample number %d", i), sample.Text)
		}
	})
}

func TestStore_DeleteSample(t *testing.T) {
	newStore := func(t *testing.T) *Store {
		s := NewStore("voice_vault")
		require.True(t, s.AddSample("V", LaneNarration, "one"))
		require.True(t, s.AddSample("V", LaneNarration, "two"))
		require.True(t, s.AddSample("V", LaneNarration, "three"))
		return s
	}

	t.Run("offset zero removes most recent", func(t *testing.T) {
		s := newStore(t)
		require.True(t, s.DeleteSample("V", LaneNarration, 0))

		samples := s.Samples("V", LaneNarration)
		require.Len(t, samples, 2)
		assert.Equal(t, "one", samples[0].Text)
		assert.Equal(t, "two", samples[1].Text)
	})

	t.Run("offset counts from the end", func(t *testing.T) {
		s := newStore(t)
		require.True(t, s.DeleteSample("V", LaneNarration, 1))

		samples := s.Samples("V", LaneNarration)
		require.Len(t, samples, 2)
		assert.Equal(t, "one", samples[0].Text)
		assert.Equal(t, "three", samples[1].Text)
	})

	t.Run("offset past available samples fails", func(t *testing.T) {
		s := newStore(t)
		assert.False(t, s.DeleteSample("V", LaneNarration, 3))
		assert.False(t, s.DeleteSample("V", LaneNarration, -1))
	})

	t.Run("missing collection or empty lane fails", func(t *testing.T) {
		s := newStore(t)
		assert.False(t, s.DeleteSample("Ghost", LaneNarration, 0))
		assert.False(t, s.DeleteSample("V", LaneAction, 0))
	})

	t.Run("add add delete leaves one", func(t *testing.T) {
		s := NewStore("voice_vault")
		require.True(t, s.AddSample("X", LaneDialogue, "one"))
		require.True(t, s.AddSample("X", LaneDialogue, "two"))
		require.True(t, s.DeleteSample("X", LaneDialogue, 0))

		assert.Equal(t, 1, s.Stats("X")[LaneDialogue])
		assert.Equal(t, "one", s.Samples("X", LaneDialogue)[0].Text)
	})
}

func TestStore_DeleteCollection(t *testing.T) {
	s := NewStore("style_bank")
	require.True(t, s.Create("Noir"))

	assert.True(t, s.DeleteCollection("Noir"))
	assert.False(t, s.DeleteCollection("Noir"))
	assert.Empty(t, s.Names())
}

func TestStore_Stats(t *testing.T) {
	t.Run("absent collection yields zero-filled map", func(t *testing.T) {
		s := NewStore("voice_vault")
		stats := s.Stats("nope")
		require.Len(t, stats, 4)
		for _, lane := range Lanes() {
			assert.Equal(t, 0, stats[lane])
		}
	})

	t.Run("counts per lane", func(t *testing.T) {
		s := NewStore("voice_vault")
		require.True(t, s.AddSample("V", LaneDialogue, "a b c"))
		require.True(t, s.AddSample("V", LaneDialogue, "d e f"))
		require.True(t, s.AddSample("V", LaneAction, "g h i"))

		stats := s.Stats("V")
		assert.Equal(t, 2, stats[LaneDialogue])
		assert.Equal(t, 1, stats[LaneAction])
		assert.Equal(t, 0, stats[LaneNarration])
		assert.Equal(t, 0, stats[LaneInteriority])
	})
}

func TestStore_Names(t *testing.T) {
	s := NewStore("style_bank")
	require.True(t, s.Create("Zola"))
	require.True(t, s.Create("Austen"))
	require.True(t, s.Create("Morrison"))

	assert.Equal(t, []string{"Austen", "Morrison", "Zola"}, s.Names())
}

func TestStore_SnapshotRestore(t *testing.T) {
	src := NewStore("voice_vault")
	require.True(t, src.AddSample("V", LaneDialogue, "first sample"))
	require.True(t, src.AddSample("V", LaneNarration, "second sample"))
	require.True(t, src.Create("Empty"))

	dst := NewStore("voice_vault")
	dst.Restore(src.Snapshot())

	assert.Equal(t, src.Names(), dst.Names())
	assert.Equal(t, src.Stats("V"), dst.Stats("V"))
	assert.Equal(t, src.Samples("V", LaneDialogue), dst.Samples("V", LaneDialogue))

	// Restored store is independent of the source
	require.True(t, src.AddSample("V", LaneDialogue, "third sample"))
	assert.Equal(t, 1, dst.Stats("V")[LaneDialogue])
}

func TestStore_ConcurrentMutation(t *testing.T) {
	s := NewStore("voice_vault")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AddSample("V", LaneNarration, fmt.Sprintf("writer %d sample %d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 400, s.Stats("V")[LaneNarration])
}
