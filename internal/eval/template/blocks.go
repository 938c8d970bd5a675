package template

import (
	"regexp"
	"strings"
)

// blockKind describes one block directive: its opener pattern (with the
// argument as the first group), its closer and an optional branch separator.
type blockKind struct {
	name      string
	open      *regexp.Regexp
	close     string
	separator string
}

var (
	eachBlock = &blockKind{
		name:  "each",
		open:  regexp.MustCompile(`\{\{#each\s([^}]+)\}\}`),
		close: "{{/each}}",
	}

	ifBlock = &blockKind{
		name:      "if",
		open:      regexp.MustCompile(`\{\{#if\s([^}]+)\}\}`),
		close:     "{{/if}}",
		separator: "{{else}}",
	}

	placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)
)

// block is one located block. When matched is false only start, openEnd and
// arg are set: the opener has no closer.
type block struct {
	start   int
	openEnd int
	end     int
	arg     string
	body    string
	then    string
	orElse  string
	hasElse bool
	matched bool
}

// find locates the first opener at or after from and its matching closer,
// counting nested openers of the same kind.
func (k *blockKind) find(s string, from int) (block, bool) {
	loc := k.open.FindStringSubmatchIndex(s[from:])
	if loc == nil {
		return block{}, false
	}

	b := block{
		start:   from + loc[0],
		openEnd: from + loc[1],
		arg:     s[from+loc[2] : from+loc[3]],
	}

	depth := 1
	elseAt := -1
	cursor := b.openEnd
	for {
		rest := s[cursor:]
		closeIdx := strings.Index(rest, k.close)
		if closeIdx < 0 {
			return b, true
		}

		limit := closeIdx
		openLoc := k.open.FindStringIndex(rest[:closeIdx])
		if openLoc != nil {
			limit = openLoc[0]
		}

		if k.separator != "" && depth == 1 && elseAt < 0 {
			if i := strings.Index(rest[:limit], k.separator); i >= 0 {
				elseAt = cursor + i
			}
		}

		if openLoc != nil {
			depth++
			cursor += openLoc[1]
			continue
		}

		depth--
		if depth == 0 {
			closeAt := cursor + closeIdx
			b.end = closeAt + len(k.close)
			b.body = s[b.openEnd:closeAt]
			b.then = b.body
			if elseAt >= 0 {
				b.then = s[b.openEnd:elseAt]
				b.orElse = s[elseAt+len(k.separator) : closeAt]
				b.hasElse = true
			}
			b.matched = true
			return b, true
		}
		cursor += closeIdx + len(k.close)
	}
}

// unbalanced walks openers and closers of k in order and reports every token
// that has no partner.
func (k *blockKind) unbalanced(s string) []*UnbalancedBlockError {
	var (
		errs  []*UnbalancedBlockError
		stack []*UnbalancedBlockError
	)

	cursor := 0
	for cursor < len(s) {
		rest := s[cursor:]
		closeIdx := strings.Index(rest, k.close)
		openLoc := k.open.FindStringIndex(rest)

		if openLoc != nil && (closeIdx < 0 || openLoc[0] < closeIdx) {
			stack = append(stack, &UnbalancedBlockError{
				Block:  k.name,
				Token:  rest[openLoc[0]:openLoc[1]],
				Offset: cursor + openLoc[0],
			})
			cursor += openLoc[1]
			continue
		}
		if closeIdx < 0 {
			break
		}

		if len(stack) > 0 {
			stack = stack[:len(stack)-1]
		} else {
			errs = append(errs, &UnbalancedBlockError{
				Block:  k.name,
				Token:  k.close,
				Offset: cursor + closeIdx,
			})
		}
		cursor += closeIdx + len(k.close)
	}

	return append(errs, stack...)
}
