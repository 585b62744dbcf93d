package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/wordpack/internal/dicttest"
	"github.com/bastiangx/wordpack/internal/logger"
	"github.com/bastiangx/wordpack/pkg/config"
	"github.com/bastiangx/wordpack/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newCompleter(t *testing.T) (*suggest.Completer, string) {
	t.Helper()
	data := dicttest.NewBuilder().
		AddWord("hello", 200).
		AddWord("help", 180).
		AddWord("helmet", 90).
		AddWord("world", 100).
		AddWord("word", 120).
		Build(t)
	path := dicttest.WriteFile(t, "server.dict", data)
	c, err := suggest.NewCompleterFromFile(path, suggest.DefaultOptions())
	require.NoError(t, err)
	return c, path
}

// serve runs a server over the encoded requests until the input ends and
// returns a decoder over everything it wrote.
func serve(t *testing.T, c *suggest.Completer, cfg *config.Config, reqs ...any) (*msgpack.Decoder, error) {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	srv := NewServerWithIO(c, cfg, "", &in, &out)
	srv.SetLogger(logger.Discard())
	err := srv.Start()
	return msgpack.NewDecoder(&out), err
}

func next[T any](t *testing.T, dec *msgpack.Decoder) T {
	t.Helper()
	var v T
	require.NoError(t, dec.Decode(&v))
	return v
}

func words(list []CompletionSuggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Word)
	}
	return out
}

func TestServer_Complete(t *testing.T) {
	c, _ := newCompleter(t)
	cfg := config.DefaultConfig()
	cfg.Server.MaxLimit = 2

	dec, err := serve(t, c, cfg,
		CompletionRequest{ID: "1", Prefix: "hel", Limit: 5},
		CompletionRequest{ID: "2", Op: OpComplete, Prefix: "wor"},
		CompletionRequest{ID: "3", Prefix: "aaa"},
	)
	require.NoError(t, err)

	resp := next[CompletionResponse](t, dec)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, 2, resp.Count, "limit is clamped to max_limit")
	assert.Equal(t, []CompletionSuggestion{
		{Word: "hello", Rank: 1, Frequency: 200},
		{Word: "help", Rank: 2, Frequency: 180},
	}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	resp = next[CompletionResponse](t, dec)
	assert.Equal(t, "2", resp.ID)
	assert.Equal(t, []string{"word", "world"}, words(resp.Suggestions))

	resp = next[CompletionResponse](t, dec)
	assert.Equal(t, "3", resp.ID)
	assert.Zero(t, resp.Count, "filtered input gets no suggestions")
}

func TestServer_PrefixValidation(t *testing.T) {
	c, _ := newCompleter(t)
	cfg := config.DefaultConfig()
	cfg.Server.MinPrefix = 2
	cfg.Server.MaxPrefix = 5

	dec, err := serve(t, c, cfg,
		CompletionRequest{ID: "empty"},
		CompletionRequest{ID: "short", Prefix: "h"},
		CompletionRequest{ID: "long", Prefix: "helloworld"},
		CompletionRequest{ID: "runes", Prefix: "héllo"},
	)
	require.NoError(t, err)

	for _, id := range []string{"empty", "short", "long"} {
		e := next[CompletionError](t, dec)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, CodeBadRequest, e.Code)
		assert.NotEmpty(t, e.Error)
	}
	resp := next[CompletionResponse](t, dec)
	assert.Equal(t, "runes", resp.ID, "length counts characters, not bytes")
}

func TestServer_Lookup(t *testing.T) {
	c, _ := newCompleter(t)

	dec, err := serve(t, c, nil,
		CompletionRequest{ID: "1", Op: OpLookup, Prefix: "help"},
		CompletionRequest{ID: "2", Op: OpLookup, Prefix: "zzzzzz"},
	)
	require.NoError(t, err)

	resp := next[LookupResponse](t, dec)
	assert.Equal(t, "help", resp.Word)
	assert.True(t, resp.Valid)
	assert.Equal(t, 180, resp.Frequency)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "hello", resp.Suggestions[0].Word)
	assert.Equal(t, uint16(1), resp.Suggestions[0].Rank)
	assert.Contains(t, words(resp.Suggestions), "help")

	resp = next[LookupResponse](t, dec)
	assert.Equal(t, "zzzzzz", resp.Word)
	assert.False(t, resp.Valid)
	assert.Empty(t, resp.Suggestions)
}

func TestServer_Candidates(t *testing.T) {
	c, _ := newCompleter(t)

	dec, err := serve(t, c, nil, CompletionRequest{ID: "1", Op: OpCandidates, Prefix: "helo"})
	require.NoError(t, err)

	resp := next[CompletionResponse](t, dec)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, CompletionSuggestion{Word: "helo", Rank: 1}, resp.Suggestions[0])
	assert.Contains(t, words(resp.Suggestions), "hello")
}

func TestServer_InfoAndHealth(t *testing.T) {
	c, path := newCompleter(t)

	dec, err := serve(t, c, nil,
		CompletionRequest{ID: "1", Op: OpHealth},
		CompletionRequest{ID: "2", Op: OpInfo},
	)
	require.NoError(t, err)

	health := next[StatusResponse](t, dec)
	assert.Equal(t, StatusResponse{ID: "1", Status: "ok"}, health)

	info := next[InfoResponse](t, dec)
	assert.Equal(t, "ok", info.Status)
	assert.Equal(t, path, info.Path)
	assert.Positive(t, info.LoadedAt)
	assert.Equal(t, 2, info.Requests)
	assert.Equal(t, 5, info.Stats["totalWords"])
	assert.Equal(t, 1, info.Stats["loaded"])
}

func TestServer_Reload(t *testing.T) {
	c, _ := newCompleter(t)
	other := dicttest.WriteFile(t, "other.dict", dicttest.NewBuilder().
		AddWord("zebra", 60).
		AddWord("zebras", 30).
		Build(t))
	cfg := config.DefaultConfig()

	dec, err := serve(t, c, cfg,
		CompletionRequest{ID: "1", Op: OpReload},
		CompletionRequest{ID: "2", Op: OpReload, Path: "/nonexistent/missing.dict"},
		CompletionRequest{ID: "3", Prefix: "wor"},
		CompletionRequest{ID: "4", Op: OpReload, Path: other},
		CompletionRequest{ID: "5", Prefix: "zeb"},
	)
	require.NoError(t, err)

	assert.Equal(t, StatusResponse{ID: "1", Status: "reloaded"}, next[StatusResponse](t, dec))

	e := next[CompletionError](t, dec)
	assert.Equal(t, "2", e.ID)
	assert.Equal(t, CodeInternal, e.Code)

	resp := next[CompletionResponse](t, dec)
	assert.Equal(t, "word", resp.Suggestions[0].Word, "failed reload keeps the dictionary")

	assert.Equal(t, "reloaded", next[StatusResponse](t, dec).Status)
	resp = next[CompletionResponse](t, dec)
	assert.Contains(t, words(resp.Suggestions), "zebra")
	assert.Equal(t, other, cfg.Dict.Path)
}

func TestServer_Config(t *testing.T) {
	c, _ := newCompleter(t)
	cfg := config.DefaultConfig()
	one, zero := 1, 0

	dec, err := serve(t, c, cfg,
		CompletionRequest{ID: "1", Op: OpConfig, Config: &config.ServerUpdate{MaxLimit: &one}},
		CompletionRequest{ID: "2", Prefix: "hel", Limit: 5},
		CompletionRequest{ID: "3", Op: OpConfig, Config: &config.ServerUpdate{MinPrefix: &zero}},
		CompletionRequest{ID: "4", Op: OpConfig},
	)
	require.NoError(t, err)

	status := next[StatusResponse](t, dec)
	assert.Equal(t, "updated", status.Status)
	require.NotNil(t, status.Server)
	assert.Equal(t, 1, status.Server.MaxLimit)

	resp := next[CompletionResponse](t, dec)
	assert.Equal(t, []string{"hello"}, words(resp.Suggestions))

	for _, id := range []string{"3", "4"} {
		e := next[CompletionError](t, dec)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, CodeBadRequest, e.Code)
	}
	assert.Equal(t, 1, cfg.Server.MinPrefix, "rejected update changes nothing")
}

func TestServer_BadRequests(t *testing.T) {
	c, _ := newCompleter(t)

	dec, err := serve(t, c, nil,
		CompletionRequest{ID: "1", Op: "shout", Prefix: "hel"},
		"not a map",
		map[string]any{"id": "3", "p": 42},
		CompletionRequest{ID: "4", Op: OpHealth},
	)
	require.NoError(t, err)

	e := next[CompletionError](t, dec)
	assert.Equal(t, CompletionError{ID: "1", Error: "unknown op: shout", Code: CodeUnknownOp}, e)

	e = next[CompletionError](t, dec)
	assert.Equal(t, CodeBadRequest, e.Code)

	e = next[CompletionError](t, dec)
	assert.Equal(t, "3", e.ID)
	assert.Equal(t, CodeBadRequest, e.Code)

	assert.Equal(t, "ok", next[StatusResponse](t, dec).Status, "the stream survives bad requests")
}

func TestServer_MalformedStream(t *testing.T) {
	c, _ := newCompleter(t)

	var out bytes.Buffer
	srv := NewServerWithIO(c, nil, "", bytes.NewReader([]byte{0xc1}), &out)
	srv.SetLogger(logger.Discard())
	require.Error(t, srv.Start())

	e := next[CompletionError](t, msgpack.NewDecoder(&out))
	assert.Equal(t, CodeBadRequest, e.Code)
}
