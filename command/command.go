// Package command builds the server command strings issued by the admin
// console and implements the enchanted-give fallback strategy. Builders
// only format text; execution goes through a Runner so the construction
// stays testable without a live server.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/craftnet/rconsole/config"
)

// Give builds the command to hand a player an amount of an item.
func Give(player, itemID string, amount int) string {
	return fmt.Sprintf("/give %s %s %d", player, itemID, amount)
}

// EffectGive builds the command to apply a status effect for a duration
// in seconds, at base amplifier and with particles hidden.
func EffectGive(player, effectID string, seconds int) string {
	return fmt.Sprintf("/effect give %s %s %d 0 true", player, effectID, seconds)
}

// Enchant builds the command to enchant the item a player is holding.
func Enchant(player, enchantID string, level int) string {
	return fmt.Sprintf("/enchant %s %s %d", player, enchantID, level)
}

// GiveEnchanted builds the richer give form that attaches an enchantment
// to the granted item directly.
func GiveEnchanted(player, itemID string, amount int, enchantID string, level int) string {
	return fmt.Sprintf("/give %s %s[minecraft:enchantments={%s:%d}] %d",
		player, itemID, enchantID, level, amount)
}

// Teleport builds the command to move a player to coordinates.
func Teleport(player string, x, y, z float64) string {
	return fmt.Sprintf("/tp %s %s %s %s", player, coord(x), coord(y), coord(z))
}

// TeleportTo builds the command to move a player to a named location.
func TeleportTo(player string, loc config.Location) string {
	return Teleport(player, loc.X, loc.Y, loc.Z)
}

// Say builds a server broadcast.
func Say(text string) string {
	return "/say " + text
}

// List is the player list query. Issued bare, without the slash prefix,
// matching what the server's console expects for status queries.
func List() string {
	return "list"
}

func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
