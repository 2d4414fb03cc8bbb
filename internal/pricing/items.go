package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/caravanleads/caravan/internal/domain"
)

// dimensionRe matches "WxH", "WxHxD" expressions, accepting Latin x/X,
// multiplication sign ×, and Cyrillic х/Х as the separator, with an
// optional trailing unit.
var dimensionRe = regexp.MustCompile(`\d+\s*[x×хХ]\s*\d+(\s*[x×хХ]\s*\d+)?(\s*(см|cm|мм|mm))?`)

// delimiterRe splits cargo text into fragments on comma, semicolon,
// newline, or the literal word " and ".
var delimiterRe = regexp.MustCompile(`(?i)[,;\n]|\s+and\s+`)

// explicitQtyRe matches tier-(a) quantity markers that are always
// honored: xN, Nx, Nшт, N штук, N pcs, qty:N.
var explicitQtyRe = regexp.MustCompile(`(?i)(?:\bx\s*(\d+))|(?:(\d+)\s*x\b)|(?:(\d+)\s*шт\b)|(?:(\d+)\s*штук\w*)|(?:(\d+)\s*pcs\b)|(?:qty\s*:\s*(\d+))`)

// attrSuffixRe matches tier-(b): a bare number immediately followed by an
// attribute suffix, whose quantity is suppressed back to 1.
var attrSuffixRe = regexp.MustCompile(`(?i)(\d+)\s*(двер\w*|местн\w*|seater|кг|kg|л\b|l\b|см|cm|мм|mm|м\b)`)

// bareNumberRe matches tier-(c): any standalone number.
var bareNumberRe = regexp.MustCompile(`\d+`)

// ExtractItems runs the item-extraction algorithm: strip dimension
// expressions, split into fragments, match the longest catalog alias
// per fragment, and resolve a quantity via the three-tier policy
// (explicit marker > suppressed attribute > bare number <= 200).
func ExtractItems(cargoRaw string, catalog *ItemCatalog) []domain.Item {
	if catalog == nil {
		return nil
	}
	stripped := dimensionRe.ReplaceAllString(cargoRaw, " ")
	fragments := delimiterRe.Split(stripped, -1)

	var items []domain.Item
	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		key, matchedAlias, ok := matchLongestAlias(frag, catalog)
		if !ok {
			continue
		}
		qty := resolveQuantity(frag, matchedAlias)
		catItem, ok := catalog.Items[key]
		if !ok {
			continue
		}
		items = append(items, domain.Item{
			Key:      key,
			Qty:      qty,
			PriceMin: catItem.PriceMin,
			PriceMax: catItem.PriceMax,
			Heavy:    catItem.Heavy,
		})
	}
	return items
}

// matchLongestAlias finds the longest alias (aliases are pre-sorted
// longest-first) that occurs in frag, returning its catalog key.
func matchLongestAlias(frag string, catalog *ItemCatalog) (key string, alias string, ok bool) {
	norm := normalizeKey(frag)
	for _, entry := range catalog.aliasToKey {
		if strings.Contains(norm, entry.alias) {
			return entry.key, entry.alias, true
		}
	}
	return "", "", false
}

// resolveQuantity applies the three-tier quantity policy to a single
// matched fragment.
func resolveQuantity(frag, matchedAlias string) int {
	// Tier (a): explicit markers are always honored.
	if m := explicitQtyRe.FindStringSubmatch(frag); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				if n, err := strconv.Atoi(g); err == nil && n > 0 {
					return n
				}
			}
		}
	}

	// Tier (b): a number followed by an attribute suffix is suppressed.
	if attrSuffixRe.MatchString(frag) {
		return 1
	}

	// Tier (c): a bare number <= 200, not already consumed by the alias
	// text itself, is used as the quantity.
	fragWithoutAlias := strings.Replace(normalizeKey(frag), matchedAlias, "", 1)
	if m := bareNumberRe.FindString(fragWithoutAlias); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 && n <= 200 {
			return n
		}
	}

	return 1
}
