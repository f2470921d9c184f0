package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm"
)

func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
}

func newTestClient(url string, lenient bool) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url, Model: "test-model", LenientOptional: lenient}, nil)
}

func TestExtractDraft(t *testing.T) {
	var seen map[string]any
	content := "```json\n" + `{"nb_pages": 1, "total_general": 150000, "elements": [
		{"numero": "1.1", "designation": "Peinture acrylique", "categorie": "Peinture & Finitions",
		 "unite": "m2", "quantite": 10, "prix_unitaire": 15000, "prix_total": 150000}]}` + "\n```"
	srv := chatServer(t, http.StatusOK, content, &seen)
	defer srv.Close()

	draft, raw, err := newTestClient(srv.URL+"/", false).ExtractDraft(context.Background(), llm.DraftRequest{
		Text:       "1.1 Peinture acrylique m2 10 15 000 150 000",
		FileName:   "devis.pdf",
		Categories: constants.AsStringSlice(),
	})
	require.NoError(t, err)

	assert.Equal(t, "test-model", seen["model"])
	assert.NotEmpty(t, raw)
	assert.Equal(t, 1, draft.Pages)
	assert.Equal(t, 150000.0, draft.DeclaredTotal)
	require.Len(t, draft.Records, 1)
	assert.Equal(t, "Peinture acrylique", draft.Records[0].Designation)
}

func TestExtractDraftLenient(t *testing.T) {
	content := `{"elements": [{"designation": "Mobilier", "categorie": "Meubles", "numero": 3}]}`
	srv := chatServer(t, http.StatusOK, content, nil)
	defer srv.Close()

	req := llm.DraftRequest{Text: "x", Categories: constants.AsStringSlice()}

	_, _, err := newTestClient(srv.URL, false).ExtractDraft(context.Background(), req)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInference))

	draft, _, err := newTestClient(srv.URL, true).ExtractDraft(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, draft.Records, 1)
	assert.Equal(t, "3", draft.Records[0].Code)
	assert.Empty(t, draft.Records[0].Category)
}

func TestExtractDraftHTTPError(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "{}", nil)
	defer srv.Close()

	_, _, err := newTestClient(srv.URL, true).ExtractDraft(context.Background(), llm.DraftRequest{Text: "x"})
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInference))
}

func TestExtractDraftNoJSON(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "désolé", nil)
	defer srv.Close()

	_, raw, err := newTestClient(srv.URL, true).ExtractDraft(context.Background(), llm.DraftRequest{Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrNoJSONObject)
	assert.Equal(t, "désolé", string(raw))
}
