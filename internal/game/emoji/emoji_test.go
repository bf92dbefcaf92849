package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-activity-bot/internal/game"
)

func TestNextDrawsFromPool(t *testing.T) {
	e := NewWithPool(map[string]string{"🦁👑🌍": "The Lion King"})

	prompt, err := e.Next()
	require.NoError(t, err)
	assert.Equal(t, "🦁👑🌍", prompt)
	assert.Equal(t, "🦁👑🌍", e.Prompt())
	assert.Equal(t, "The Lion King", e.Reveal())
}

func TestNextEmptyPool(t *testing.T) {
	e := NewWithPool(map[string]string{})

	_, err := e.Next()
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestCheck(t *testing.T) {
	e := NewWithPool(map[string]string{"🦁👑🌍": "The Lion King"})
	_, err := e.Next()
	require.NoError(t, err)

	tests := []struct {
		name   string
		answer string
		want   game.Verdict
	}{
		{"exact", "The Lion King", game.VerdictCorrect},
		{"case insensitive", "the lion king", game.VerdictCorrect},
		{"surrounding spaces", "  The Lion King  ", game.VerdictCorrect},
		{"wrong", "Frozen", game.VerdictWrong},
		{"empty", "", game.VerdictWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Check(tt.answer))
		})
	}
}

func TestCheckWithoutLiveChallenge(t *testing.T) {
	e := New()

	assert.Equal(t, game.VerdictWrong, e.Check("anything"))
}

func TestReset(t *testing.T) {
	e := NewWithPool(map[string]string{"🦁👑🌍": "The Lion King"})
	_, err := e.Next()
	require.NoError(t, err)

	e.Reset()

	assert.Empty(t, e.Prompt())
	assert.Empty(t, e.Reveal())
	assert.Equal(t, game.VerdictWrong, e.Check("The Lion King"))
}

func TestDefaultPoolIsConsistent(t *testing.T) {
	e := New()

	prompt, err := e.Next()
	require.NoError(t, err)
	require.NotEmpty(t, prompt)
	require.NotEmpty(t, e.Reveal())
	assert.Equal(t, game.VerdictCorrect, e.Check(e.Reveal()))
}

func TestEngineMetadata(t *testing.T) {
	e := New()

	assert.Equal(t, game.KindEmoji, e.Kind())
	assert.Equal(t, "emoji_game", e.Command())
	assert.Equal(t, 5.0, e.BaseReward())
}
