package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gadsdencode/Podster/internal/services/youtube"
	"github.com/gadsdencode/Podster/internal/utils"
)

// MinContentLength is the smallest trimmed transcript, in characters,
// accepted as a real result. Shorter output is treated as a failed attempt
// and the chain moves on to the next strategy.
const MinContentLength = 50

var (
	// ErrSkipped marks a strategy that declined to run, such as the
	// authenticated captions strategy without a configured credential.
	// Skipped strategies appear in the attempt summary but do not count
	// as failures.
	ErrSkipped = errors.New("strategy skipped")

	// ErrParseFailure marks a caption payload that was fetched but yielded
	// no text from any known format parser.
	ErrParseFailure = errors.New("caption payload could not be parsed")
)

// Strategy is one self-contained extraction technique. Attempt returns the
// transcript text or an error the chain classifies; strategies never decide
// the terminal outcome themselves.
type Strategy interface {
	Method() string
	Attempt(ctx context.Context, videoID string) (string, error)
}

// Result is the winning strategy's output.
type Result struct {
	Text   string
	Method string
}

// Attempt classifications recorded in the terminal error summary.
const (
	classSkipped         = "skipped"
	classBlocked         = "blocked"
	classNoCaptions      = "no_captions"
	classParseFailure    = "parse_failure"
	classContentTooShort = "content_too_short"
	classError           = "error"
)

// Chain evaluates strategies in fixed priority order, stopping at the first
// one that produces enough content. Individual failures never propagate; the
// chain synthesizes a single terminal error after the last strategy.
type Chain struct {
	strategies []Strategy
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// runTally accumulates per-attempt outcomes so the terminal error can
// distinguish blocking from genuine caption absence from thin content.
type runTally struct {
	attempts      []map[string]interface{}
	failures      int
	noCaptions    int
	blocked       bool
	blockedDetail string
	sawText       bool
	bestLength    int
}

// Run drives the chain for one video. The caller bounds the whole run with a
// context deadline; that deadline is the only abort path.
func (c *Chain) Run(ctx context.Context, videoID string) (*Result, error) {
	tally := &runTally{attempts: make([]map[string]interface{}, 0, len(c.strategies))}

	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction aborted: %w", err)
		}

		text, err := strategy.Attempt(ctx, videoID)
		if err != nil {
			tally.recordFailure(strategy.Method(), err)
			utils.LogWarn(ctx, "Extraction strategy failed", utils.Fields{
				"video_id": videoID,
				"strategy": strategy.Method(),
				"error":    err.Error(),
			})
			continue
		}

		trimmed := strings.TrimSpace(text)
		length := utf8.RuneCountInString(trimmed)
		if length < MinContentLength {
			tally.recordShort(strategy.Method(), length)
			utils.LogWarn(ctx, "Extraction strategy returned too little content", utils.Fields{
				"video_id": videoID,
				"strategy": strategy.Method(),
				"length":   length,
			})
			continue
		}

		utils.LogInfo(ctx, "Extraction strategy succeeded", utils.Fields{
			"video_id": videoID,
			"strategy": strategy.Method(),
			"length":   length,
		})
		return &Result{Text: trimmed, Method: strategy.Method()}, nil
	}

	return nil, c.terminalError(videoID, tally)
}

func (t *runTally) recordFailure(method string, err error) {
	class := classify(err)
	t.attempts = append(t.attempts, map[string]interface{}{
		"strategy":       method,
		"classification": class,
		"error":          err.Error(),
	})

	switch class {
	case classSkipped:
		return
	case classBlocked:
		t.blocked = true
		if t.blockedDetail == "" {
			t.blockedDetail = err.Error()
		}
	case classNoCaptions:
		t.noCaptions++
	}
	t.failures++
}

func (t *runTally) recordShort(method string, length int) {
	t.attempts = append(t.attempts, map[string]interface{}{
		"strategy":       method,
		"classification": classContentTooShort,
		"length":         length,
	})
	t.failures++
	if length > 0 {
		t.sawText = true
		if length > t.bestLength {
			t.bestLength = length
		}
	}
}

// terminalError turns the attempt tally into the single user-visible failure.
// Blocking outranks everything because it poisons trust in the other
// outcomes; thin content outranks caption absence because it proves captions
// exist.
func (c *Chain) terminalError(videoID string, t *runTally) error {
	var appErr *utils.AppError
	switch {
	case t.blocked:
		appErr = utils.NewBlockedError(t.blockedDetail)
	case t.sawText:
		appErr = utils.NewContentTooShortError(t.bestLength)
	case t.failures > 0 && t.noCaptions == t.failures:
		appErr = utils.NewNoCaptionsError(videoID)
	default:
		appErr = utils.NewAllStrategiesExhaustedError(videoID, t.attempts)
	}

	if appErr.Details == nil {
		appErr.Details = map[string]interface{}{}
	}
	appErr.Details["attempts"] = t.attempts
	return appErr
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrSkipped):
		return classSkipped
	case IsBlockingError(err):
		return classBlocked
	case errors.Is(err, youtube.ErrNoCaptionTracks):
		return classNoCaptions
	case errors.Is(err, ErrParseFailure):
		return classParseFailure
	default:
		return classError
	}
}

// blockingPhrases are the known platform phrasings for IP, rate-limit, or
// bot-check rejection. Matched case-insensitively because they arrive
// embedded in collaborator error text.
var blockingPhrases = []string{
	"ip belonging to a cloud provider",
	"sign in to confirm",
	"too many requests",
	"login required",
	"forbidden",
	"blocked",
}

// IsBlockingError reports whether err looks like a platform-side block
// rather than a genuine absence of captions.
func IsBlockingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range blockingPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
