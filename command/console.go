package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/craftnet/rconsole/catalog"
	"github.com/craftnet/rconsole/config"
	"github.com/craftnet/rconsole/fuzzy"
	"github.com/rs/zerolog"
)

// resolveMinScore is the similarity floor for accepting a fuzzy match
// when a verb resolves free text to a catalog entry. Below it the verb
// fails instead of guessing.
const resolveMinScore = 60

// defaultEffectSeconds is the effect duration applied when the operator
// gives none.
const defaultEffectSeconds = 30

// Console interprets operator verbs, resolves free-text catalog queries
// to canonical identifiers and issues the built commands through a
// Runner. Lines that start with no known verb go to the server verbatim.
type Console struct {
	runner    Runner
	index     *catalog.Index
	locations map[string]config.Location
	logger    zerolog.Logger
}

func NewConsole(r Runner, ix *catalog.Index, locations map[string]config.Location, logger zerolog.Logger) *Console {
	return &Console{
		runner:    r,
		index:     ix,
		locations: locations,
		logger:    logger.With().Str("component", "command").Logger(),
	}
}

// Dispatch runs one operator line and returns the server's response.
func (c *Console) Dispatch(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	verb, rest := fields[0], fields[1:]
	switch verb {
	case "give":
		return c.give(ctx, rest)
	case "effect":
		return c.effect(ctx, rest)
	case "enchant":
		return c.enchant(ctx, rest)
	case "tp":
		return c.teleport(ctx, rest)
	case "say":
		if len(rest) == 0 {
			return "", errors.New("usage: say <message>")
		}
		return c.runner.Run(ctx, Say(strings.Join(rest, " ")))
	}
	return c.runner.Run(ctx, line)
}

// give handles "give <player> <item> [amount] [with <enchantment> [level]]".
// The plain form issues a single give; the "with" clause goes through the
// enchanted-give strategy.
func (c *Console) give(ctx context.Context, args []string) (string, error) {
	usage := errors.New("usage: give <player> <item> [amount] [with <enchantment> [level]]")
	if len(args) < 2 {
		return "", usage
	}
	player := args[0]

	itemArgs := args[1:]
	var enchArgs []string
	for i, a := range itemArgs {
		if a == "with" {
			itemArgs, enchArgs = itemArgs[:i], itemArgs[i+1:]
			break
		}
	}

	itemQuery, amount, err := splitTrailingInt(itemArgs, 1)
	if err != nil {
		return "", err
	}
	if itemQuery == "" {
		return "", usage
	}
	item, err := c.resolve("item", itemQuery)
	if err != nil {
		return "", err
	}

	if enchArgs == nil {
		return c.runner.Run(ctx, Give(player, item.ID, amount))
	}

	enchQuery, level, err := splitTrailingInt(enchArgs, 1)
	if err != nil {
		return "", err
	}
	if enchQuery == "" {
		return "", usage
	}
	ench, err := c.resolve("enchantment", enchQuery)
	if err != nil {
		return "", err
	}
	return RunGiveEnchanted(ctx, c.runner, c.logger, player, item.ID, amount, ench.ID, level)
}

// effect handles "effect <player> <effect> [seconds]".
func (c *Console) effect(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: effect <player> <effect> [seconds]")
	}
	query, seconds, err := splitTrailingInt(args[1:], defaultEffectSeconds)
	if err != nil {
		return "", err
	}
	if query == "" {
		return "", errors.New("usage: effect <player> <effect> [seconds]")
	}
	eff, err := c.resolve("effect", query)
	if err != nil {
		return "", err
	}
	return c.runner.Run(ctx, EffectGive(args[0], eff.ID, seconds))
}

// enchant handles "enchant <player> <enchantment> [level]", applied to
// the item the player is holding.
func (c *Console) enchant(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: enchant <player> <enchantment> [level]")
	}
	query, level, err := splitTrailingInt(args[1:], 1)
	if err != nil {
		return "", err
	}
	if query == "" {
		return "", errors.New("usage: enchant <player> <enchantment> [level]")
	}
	ench, err := c.resolve("enchantment", query)
	if err != nil {
		return "", err
	}
	return c.runner.Run(ctx, Enchant(args[0], ench.ID, level))
}

// teleport handles "tp <player> <location>" for locations named in the
// config, and "tp <player> <x> <y> <z>" for raw coordinates.
func (c *Console) teleport(ctx context.Context, args []string) (string, error) {
	switch len(args) {
	case 2:
		loc, ok := c.locations[args[1]]
		if !ok {
			return "", fmt.Errorf("unknown location %q (have: %s)",
				args[1], strings.Join(c.locationNames(), ", "))
		}
		return c.runner.Run(ctx, TeleportTo(args[0], loc))
	case 4:
		var coords [3]float64
		for i, raw := range args[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", fmt.Errorf("bad coordinate %q: %w", raw, err)
			}
			coords[i] = v
		}
		return c.runner.Run(ctx, Teleport(args[0], coords[0], coords[1], coords[2]))
	}
	return "", errors.New("usage: tp <player> <location> | tp <player> <x> <y> <z>")
}

// resolve picks the best catalog match for a free-text query.
func (c *Console) resolve(typename, query string) (catalog.Entry, error) {
	cat, ok := c.index.Catalog(typename)
	if !ok {
		return catalog.Entry{}, fmt.Errorf("no %s catalog loaded", typename)
	}
	matches := fuzzy.Search(query, cat, 1, resolveMinScore)
	if len(matches) == 0 {
		return catalog.Entry{}, fmt.Errorf("no %s matching %q", typename, query)
	}
	m := matches[0]
	c.logger.Debug().
		Str("query", query).
		Str("resolved", m.Entry.ID).
		Int("score", m.Score).
		Msg("catalog match")
	return m.Entry, nil
}

func (c *Console) locationNames() []string {
	names := make([]string, 0, len(c.locations))
	for name := range c.locations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitTrailingInt separates an optional trailing integer from the query
// words before it.
func splitTrailingInt(args []string, def int) (string, int, error) {
	if len(args) == 0 {
		return "", def, nil
	}
	last := args[len(args)-1]
	if n, err := strconv.Atoi(last); err == nil {
		if n < 1 {
			return "", 0, fmt.Errorf("count must be positive, got %d", n)
		}
		return strings.Join(args[:len(args)-1], " "), n, nil
	}
	return strings.Join(args, " "), def, nil
}
