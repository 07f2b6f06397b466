// Package selection decides which working-tree files a commit includes.
package selection

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samzong/aicommit/internal/stringsutil"
)

// Selector narrows the candidate files down to the ones to stage.
type Selector interface {
	Select(files []string) ([]string, error)
}

// Candidates returns the sorted, de-duplicated union of modified and untracked paths.
func Candidates(modified, untracked []string) []string {
	all := make([]string, 0, len(modified)+len(untracked))
	all = append(all, modified...)
	all = append(all, untracked...)
	all = stringsutil.UniqueStrings(all)
	sort.Strings(all)
	return all
}

// ParseExclusions parses a comma-separated list of 1-based indices and
// inclusive ranges ("1,3", "2-4") into zero-based indices below total.
// Tokens that do not parse or fall outside [1,total] are ignored; ranges
// are clipped to the bounds.
func ParseExclusions(spec string, total int) map[int]struct{} {
	excluded := make(map[int]struct{})
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		lo, hi, ok := parseToken(token)
		if !ok {
			continue
		}
		lo = max(lo, 1)
		hi = min(hi, total)
		for i := lo; i <= hi; i++ {
			excluded[i-1] = struct{}{}
		}
	}
	return excluded
}

func parseToken(token string) (int, int, bool) {
	start, end, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	}

	lo, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// ApplyExclusions returns files without the excluded zero-based indices,
// preserving order.
func ApplyExclusions(files []string, excluded map[int]struct{}) []string {
	kept := make([]string, 0, len(files))
	for i, f := range files {
		if _, skip := excluded[i]; skip {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
