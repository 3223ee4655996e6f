package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguageID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "cpp", input: "c++", want: 105},
		{name: "case insensitive", input: "Python", want: 109},
		{name: "surrounding whitespace", input: " java ", want: 91},
		{name: "unsupported", input: "haskell", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := LanguageID(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedLanguage)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, id)
		})
	}
}

func TestSupportedLanguagesSorted(t *testing.T) {
	names := SupportedLanguages()
	require.Equal(t, []string{"c", "c++", "java", "javascript", "python", "rust"}, names)
}

func TestValidateLanguages(t *testing.T) {
	serve := func(ids ...int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			langs := make([]LanguageInfo, 0, len(ids))
			for _, id := range ids {
				langs = append(langs, LanguageInfo{ID: id})
			}
			json.NewEncoder(w).Encode(langs)
		}
	}

	t.Run("all offered", func(t *testing.T) {
		client := newTestClient(t, serve(91, 102, 103, 105, 108, 109))
		require.NoError(t, ValidateLanguages(context.Background(), client))
	})

	t.Run("missing id", func(t *testing.T) {
		client := newTestClient(t, serve(91, 102, 103, 105, 108))
		err := ValidateLanguages(context.Background(), client)
		require.Error(t, err)
		require.Contains(t, err.Error(), "python")
	})
}
