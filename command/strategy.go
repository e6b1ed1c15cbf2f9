package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Runner executes one command and returns the server's response text.
// *client.Manager satisfies it.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ErrAmbiguousResponse reports that the server's reply to the richer
// command form was neither success-shaped nor a recognized failure. The
// response text is surfaced to the operator instead of silently
// downgrading the command, since substring-matching human-readable error
// text is inherently fragile.
var ErrAmbiguousResponse = errors.New("ambiguous server response")

// failureMarkers are substrings the server is known to emit when it does
// not understand the enchantment-component give syntax.
var failureMarkers = []string{
	"Unknown",
	"Invalid",
	"Incorrect",
	"Expected",
}

// RunGiveEnchanted grants an enchanted item using a two-step strategy:
// try the richer give-with-enchantment form first, and if the server
// recognizably rejects the syntax, degrade to a plain give followed by a
// separate enchant.
func RunGiveEnchanted(ctx context.Context, r Runner, logger zerolog.Logger, player, itemID string, amount int, enchantID string, level int) (string, error) {
	rich := GiveEnchanted(player, itemID, amount, enchantID, level)
	out, err := r.Run(ctx, rich)
	if err != nil {
		return "", err
	}

	switch classifyResponse(out) {
	case responseSuccess:
		return out, nil
	case responseFailure:
		logger.Warn().Str("response", out).Msg("enchanted give rejected, falling back to plain syntax")
	default:
		return out, fmt.Errorf("%w: %q", ErrAmbiguousResponse, out)
	}

	plain, err := r.Run(ctx, Give(player, itemID, amount))
	if err != nil {
		return "", err
	}
	enchOut, err := r.Run(ctx, Enchant(player, enchantID, level))
	if err != nil {
		return "", err
	}
	return plain + enchOut, nil
}

type responseClass int

const (
	responseSuccess responseClass = iota
	responseFailure
	responseAmbiguous
)

// classifyResponse decides what the server's reply means. An empty reply
// or the usual grant acknowledgment is success; a known syntax-error
// marker is failure; anything else is ambiguous.
func classifyResponse(out string) responseClass {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" || strings.HasPrefix(trimmed, "Gave ") || strings.HasPrefix(trimmed, "Given ") {
		return responseSuccess
	}
	for _, marker := range failureMarkers {
		if strings.Contains(trimmed, marker) {
			return responseFailure
		}
	}
	return responseAmbiguous
}
