package keys

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyToken(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Character('a'), "a"},
		{Character('K'), "k"},
		{Character('['), "["},
		{Character(' '), "space"},
		{Character('+'), "plus"},
		{Character(0), ""},
		{Character('\t'), ""},
		{Named("ctrl_r"), Ctrl},
		{Named("Control"), Ctrl},
		{Named("cmd_r"), Cmd},
		{Named("Super"), Cmd},
		{Named("win"), Cmd},
		{Named("alt_gr"), Alt},
		{Named("option"), Alt},
		{Named("rshift"), Shift},
		{Named("Return"), "enter"},
		{Named("esc"), "escape"},
		{Named("F5"), "f5"},
		{Named("page_down"), "page_down"},
		{Key{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Token())
		})
	}
}

func TestCanonicalizeOrdersModifiersFirst(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"empty", nil, ""},
		{"single key", []string{"h"}, "h"},
		{"ctrl h", []string{"h", Ctrl}, "ctrl+h"},
		{"all modifiers", []string{Shift, Alt, Ctrl, Cmd, "k"}, "cmd+ctrl+alt+shift+k"},
		{"others sorted", []string{"z", Ctrl, "a", "m"}, "ctrl+a+m+z"},
		{"duplicates dropped", []string{"y", Cmd, "y", Cmd}, "cmd+y"},
		{"modifiers only", []string{Shift, Ctrl}, "ctrl+shift"},
		{"empty tokens dropped", []string{"", "q", ""}, "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.tokens))
		})
	}
}

func TestCanonicalizeIsOrderIndependent(t *testing.T) {
	base := []string{Ctrl, "x", Shift, "1", Cmd, "f4", Alt, "["}
	want := Canonicalize(base)
	require.Equal(t, "cmd+ctrl+alt+shift+1+[+f4+x", want)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		shuffled := append([]string(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, want, Canonicalize(shuffled), "permutation %v", shuffled)
	}
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"cmd+y", "cmd+y", false},
		{"Ctrl+Shift+K", "ctrl+shift+k", false},
		{"shift+ctrl+k", "ctrl+shift+k", false},
		{"Win+Shift+S", "cmd+shift+s", false},
		{"super+alt+t", "cmd+alt+t", false},
		{" ctrl + h ", "ctrl+h", false},
		{"cmd+[", "cmd+[", false},
		{"ctrl+plus", "ctrl+plus", false},
		{"ctrl+return", "ctrl+enter", false},
		{"ctrl", "ctrl", false},
		{"", "", true},
		{"ctrl++", "", true},
		{"+a", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChord(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidChord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBindableChordRejectsModifierOnly(t *testing.T) {
	_, err := ParseBindableChord("ctrl+shift")
	require.ErrorIs(t, err, ErrInvalidChord)

	chord, err := ParseBindableChord("shift+ctrl+k")
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift+k", chord)
}

func TestHasNonModifier(t *testing.T) {
	assert.False(t, HasNonModifier(""))
	assert.False(t, HasNonModifier("cmd+ctrl+alt+shift"))
	assert.True(t, HasNonModifier("cmd+y"))
	assert.True(t, HasNonModifier("f12"))
}

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens(""))
	assert.Equal(t, []string{"ctrl", "shift", "k"}, Tokens("ctrl+shift+k"))
}
