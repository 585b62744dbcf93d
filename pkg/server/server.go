package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordpack/internal/logger"
	"github.com/bastiangx/wordpack/internal/utils"
	"github.com/bastiangx/wordpack/pkg/config"
	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/bastiangx/wordpack/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word completions
type Server struct {
	completer  *suggest.Completer
	config     *config.Config
	configPath string
	decoder    *msgpack.Decoder
	encoder    *msgpack.Encoder
	logger     *log.Logger
	requests   int
}

// NewServer creates a new completion server using stdin/stdout for IPC
func NewServer(completer *suggest.Completer, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(completer, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w. A nil cfg means the built-in defaults.
func NewServerWithIO(completer *suggest.Completer, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		completer:  completer,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(r),
		encoder:    msgpack.NewEncoder(w),
		logger:     logger.Server(),
	}
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(l *log.Logger) {
	s.logger = l
}

// Start serves requests until the input ends. A stream that is no longer
// valid msgpack stops the server with an error.
func (s *Server) Start() error {
	s.logger.Debug("Starting msgpack server")
	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping", "requests", s.requests)
				return nil
			}
			s.sendError("", "malformed msgpack stream", CodeBadRequest)
			return fmt.Errorf("reading request: %w", err)
		}
		s.handleRequest(raw)
	}
}

// handleRequest decodes one message and dispatches on its op. The raw
// message was read whole, so a request of the wrong shape does not break
// the stream.
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	s.requests++

	var req CompletionRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		var idOnly struct {
			ID string `msgpack:"id"`
		}
		_ = msgpack.Unmarshal(raw, &idOnly)
		s.logger.Errorf("Unmarshaling request: %v", err)
		s.sendError(idOnly.ID, "invalid request", CodeBadRequest)
		return
	}

	switch req.Op {
	case "", OpComplete:
		s.handleComplete(req)
	case OpLookup:
		s.handleLookup(req)
	case OpCandidates:
		s.handleCandidates(req)
	case OpInfo:
		s.handleInfo(req)
	case OpReload:
		s.handleReload(req)
	case OpConfig:
		s.handleConfig(req)
	case OpHealth:
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown op: %s", req.Op), CodeUnknownOp)
	}
}

// validatePrefix checks the prefix length against the server limits and
// sends the error itself.
func (s *Server) validatePrefix(req CompletionRequest) bool {
	n := utf8.RuneCountInString(req.Prefix)
	switch {
	case n == 0:
		s.sendError(req.ID, "missing prefix", CodeBadRequest)
	case n < s.config.Server.MinPrefix:
		s.sendError(req.ID, fmt.Sprintf("prefix must be at least %d characters", s.config.Server.MinPrefix), CodeBadRequest)
	case n > s.config.Server.MaxPrefix:
		s.sendError(req.ID, fmt.Sprintf("prefix exceeds maximum length of %d characters", s.config.Server.MaxPrefix), CodeBadRequest)
	default:
		return true
	}
	s.logger.Debug("Rejected prefix", "id", req.ID, "len", n)
	return false
}

// limitFor clamps a requested limit to max_limit. Zero asks for the most.
func (s *Server) limitFor(requested int) int {
	if requested < 1 || requested > s.config.Server.MaxLimit {
		return s.config.Server.MaxLimit
	}
	return requested
}

func (s *Server) handleComplete(req CompletionRequest) {
	if !s.validatePrefix(req) {
		return
	}

	start := time.Now()
	var suggestions []suggest.Suggestion
	if !s.config.Server.EnableFilter || utils.IsValidInput(req.Prefix) {
		suggestions = s.completer.Complete(req.Prefix, s.limitFor(req.Limit))
	}
	wire := rankSuggestions(suggestions)

	s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: wire,
		Count:       len(wire),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleLookup(req CompletionRequest) {
	if !s.validatePrefix(req) {
		return
	}

	start := time.Now()
	resp := LookupResponse{ID: req.ID, Word: req.Prefix, Suggestions: []CompletionSuggestion{}}
	if res := s.completer.Lookup(req.Prefix); res != nil {
		resp.Word = res.Word
		resp.Valid = res.Valid
		resp.Frequency = res.Frequency
		resp.Suggestions = rankWeighted(res.Suggestions, req.Prefix)
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.send(resp)
}

func (s *Server) handleCandidates(req CompletionRequest) {
	if !s.validatePrefix(req) {
		return
	}

	start := time.Now()
	wire := rankSuggestions(s.completer.Candidates(req.Prefix, s.limitFor(req.Limit)))
	s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: wire,
		Count:       len(wire),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleInfo(req CompletionRequest) {
	loaderStats := s.completer.Loader().Stats()
	resp := InfoResponse{
		ID:       req.ID,
		Status:   "ok",
		Path:     loaderStats.Path,
		Stats:    s.completer.Stats(),
		Requests: s.requests,
	}
	if loaderStats.Loaded {
		resp.LoadedAt = loaderStats.LoadedAt.UnixMilli()
	} else {
		resp.Status = "no dictionary"
	}
	s.send(resp)
}

func (s *Server) handleReload(req CompletionRequest) {
	start := time.Now()
	var err error
	if req.Path != "" {
		err = s.completer.Loader().Load(req.Path)
	} else {
		err = s.completer.Reload()
	}
	if err != nil {
		s.logger.Errorf("Reload failed: %v", err)
		s.sendError(req.ID, err.Error(), CodeInternal)
		return
	}
	if req.Path != "" {
		s.config.Dict.Path = req.Path
	}
	s.logger.Info("Dictionary reloaded", "path", s.completer.Loader().Stats().Path, "took", time.Since(start))
	s.send(StatusResponse{ID: req.ID, Status: "reloaded"})
}

func (s *Server) handleConfig(req CompletionRequest) {
	if req.Config == nil {
		s.sendError(req.ID, "missing cfg", CodeBadRequest)
		return
	}
	if err := s.config.Update(s.configPath, *req.Config); err != nil {
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}
	s.completer.SetFuseTimeout(s.config.FuseTimeout())

	server := s.config.Server
	s.send(StatusResponse{ID: req.ID, Status: "updated", Server: &server})
}

// send encodes one response. Encoding errors are logged since the client
// cannot be told about them on the same channel.
func (s *Server) send(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}

// rankSuggestions converts suggestions to the wire form, rank 1 being the
// first.
func rankSuggestions(suggestions []suggest.Suggestion) []CompletionSuggestion {
	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{
			Word:      sg.Word,
			Rank:      ranks[i],
			Frequency: sg.Frequency,
			Corrected: sg.WasCorrected,
		}
	}
	return out
}

func rankWeighted(list []dictionary.WeightedString, typed string) []CompletionSuggestion {
	ranks := utils.CreateRankList(len(list))
	out := make([]CompletionSuggestion, len(list))
	for i, ws := range list {
		out[i] = CompletionSuggestion{
			Word:      ws.Word,
			Rank:      ranks[i],
			Frequency: ws.Frequency,
			Corrected: !utils.HasPrefixFold(ws.Word, typed),
		}
	}
	return out
}
