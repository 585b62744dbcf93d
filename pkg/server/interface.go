/*
Package server implements msgpack IPC for the wordpack completion service.

The server reads a stream of msgpack maps from stdin and answers each with
one msgpack map on stdout. Requests are handled in order, one at a time,
with timing info included in completion responses. Logs go to stderr.

# IPC

Every request carries an ID that is echoed in its response, and an op
naming the operation. A request without an op is a completion:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions ranked by freq:

	{"id": "req_001", "s": [{"w": "amenity", "r": 1}, {"w": "america", "r": 2}], "c": 2, "t": 145}

Suggestions found through a typo correction carry "x": true.

Other ops:

	{"id": "2", "op": "lookup", "p": "cet"}        exact and corrected result for a word
	{"id": "3", "op": "candidates", "p": "helo"}   typed word first, then its suggestions
	{"id": "4", "op": "info"}                      dictionary and cache statistics
	{"id": "5", "op": "reload"}                    read the dictionary file again
	{"id": "6", "op": "reload", "path": "x.dict"}  switch to another dictionary file
	{"id": "7", "op": "config", "cfg": {"max_limit": 16}}
	{"id": "8", "op": "health"}

A failed request gets a CompletionError with an HTTP-like code. The
dictionary in service is kept when a reload fails.

# Message Types

CompletionRequest and CompletionResponse handle the main prefix suggestion.
LookupResponse mirrors the raw query result. InfoResponse reports the
loader and cache counters. StatusResponse answers reload, config and health.
*/
package server

import "github.com/bastiangx/wordpack/pkg/config"

// Operation names accepted in CompletionRequest.Op.
const (
	OpComplete   = "complete"
	OpLookup     = "lookup"
	OpCandidates = "candidates"
	OpInfo       = "info"
	OpReload     = "reload"
	OpConfig     = "config"
	OpHealth     = "health"
)

// Error codes sent in CompletionError.
const (
	CodeBadRequest = 400
	CodeUnknownOp  = 404
	CodeInternal   = 500
)

// CompletionRequest is the single request shape. Fields an op does not use
// are ignored.
type CompletionRequest struct {
	ID     string               `msgpack:"id"`
	Op     string               `msgpack:"op,omitempty"`
	Prefix string               `msgpack:"p"`
	Limit  int                  `msgpack:"l,omitempty"`
	Path   string               `msgpack:"path,omitempty"`
	Config *config.ServerUpdate `msgpack:"cfg,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word      string `msgpack:"w"`
	Rank      uint16 `msgpack:"r"`
	Frequency int    `msgpack:"f,omitempty"`
	Corrected bool   `msgpack:"x,omitempty"`
}

// CompletionResponse - completion response. TimeTaken is in microseconds.
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// LookupResponse - result of a lookup
type LookupResponse struct {
	ID          string                 `msgpack:"id"`
	Word        string                 `msgpack:"w"`
	Valid       bool                   `msgpack:"v"`
	Frequency   int                    `msgpack:"f"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	TimeTaken   int64                  `msgpack:"t"`
}

// InfoResponse - dictionary and cache statistics
type InfoResponse struct {
	ID       string         `msgpack:"id"`
	Status   string         `msgpack:"status"`
	Path     string         `msgpack:"path"`
	LoadedAt int64          `msgpack:"loaded_at"`
	Stats    map[string]int `msgpack:"stats"`
	Requests int            `msgpack:"requests"`
}

// StatusResponse answers ops that return no data. Server is set by config.
type StatusResponse struct {
	ID     string               `msgpack:"id"`
	Status string               `msgpack:"status"`
	Server *config.ServerConfig `msgpack:"server,omitempty"`
}

// CompletionError holds basic error information for any request
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
