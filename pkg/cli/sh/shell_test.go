package sh

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/banscii.go/pkg/assistant"
	"github.com/robotalks/banscii.go/pkg/env"
)

func TestRender(t *testing.T) {
	conf := env.NewConfig()
	conf.TalentURL = "local"
	talent, err := conf.ConnectTalent()
	require.NoError(t, err)
	defer talent.Close()
	client := talent.Client()

	testCases := []struct {
		name  string
		words []string
		err   error
	}{
		{"single word", []string{"hi"}, nil},
		{"joined", []string{"a", "b"}, nil},
		{"at limit", []string{strings.Repeat("x", assistant.MaxSubjectLen)}, nil},
		{"too long", []string{strings.Repeat("x", 10), strings.Repeat("y", 10)}, ErrSubjectTooLong},
		{"invalid text", []string{"\xff"}, ErrNonPrintable},
		{"tab", []string{"a\tb"}, ErrNonPrintable},
		{"escape sequence", []string{"\x1b[2J"}, ErrNonPrintable},
		{"non-ascii", []string{"é"}, ErrNonPrintable},
		{"delete", []string{"a\x7f"}, ErrNonPrintable},
		{"tilde", []string{"~"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Render(context.TODO(), client, &out, tc.words...)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				require.Empty(t, out.String())
				return
			}
			require.NoError(t, err)
			require.True(t, strings.Contains(out.String(), "\nSignature:\n"))
		})
	}
}
