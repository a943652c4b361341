package coa

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NextCode proposes the next sibling code under parentCode given the codes of
// the existing siblings. It is pure and deterministic: the same sibling set
// always yields the same proposal.
//
// Two mutually exclusive sibling styles are detected and continued:
//
//   - dash style: parent "5" with children "5-1", "5-2" -> "5-3"
//   - compact numeric style: parent "5" with children "51", "52" -> "53",
//     or "5100", "5200" -> "5300" (increment follows the zero padding
//     shared by all sibling suffixes)
//
// Whichever style has strictly more siblings wins; with no siblings the
// proposal defaults to compact numeric with no padding (parent + "1").
// Sibling codes that fit neither style are ignored.
func NextCode(parentCode string, siblings []string) string {
	var dashSuffixes []int64
	var compactSuffixes []string
	for _, code := range siblings {
		if suffix, ok := dashSuffix(parentCode, code); ok {
			dashSuffixes = append(dashSuffixes, suffix)
			continue
		}
		if suffix, ok := compactSuffix(parentCode, code); ok {
			compactSuffixes = append(compactSuffixes, suffix)
		}
	}
	if len(dashSuffixes) > len(compactSuffixes) {
		max := dashSuffixes[0]
		for _, v := range dashSuffixes[1:] {
			if v > max {
				max = v
			}
		}
		return parentCode + "-" + strconv.FormatInt(max+1, 10)
	}
	if len(compactSuffixes) == 0 {
		return parentCode + "1"
	}
	// Callers pass siblings in arbitrary (map iteration) order; sorting first
	// makes the width tie-break between equal values like "51" and "051"
	// independent of that order.
	sort.Strings(compactSuffixes)
	step := sharedStep(compactSuffixes)
	var max int64
	width := 0
	for _, s := range compactSuffixes {
		v, _ := strconv.ParseInt(s, 10, 64)
		if v >= max {
			max = v
			width = len(s)
		}
	}
	return parentCode + fmt.Sprintf("%0*d", width, max+step)
}

// dashSuffix extracts the numeric suffix of a dash-style sibling code.
func dashSuffix(parent, code string) (int64, bool) {
	rest, ok := strings.CutPrefix(code, parent+"-")
	if !ok || rest == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// compactSuffix extracts the digit suffix of a compact-style sibling code.
func compactSuffix(parent, code string) (string, bool) {
	rest, ok := strings.CutPrefix(code, parent)
	if !ok || rest == "" {
		return "", false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return "", false
		}
	}
	return rest, true
}

// sharedStep returns 10^n where n is the trailing-zero count shared by all
// suffixes, so "100"/"200" steps by 100 while "1"/"2" steps by 1.
func sharedStep(suffixes []string) int64 {
	shared := -1
	for _, s := range suffixes {
		zeros := 0
		for i := len(s) - 1; i > 0 && s[i] == '0'; i-- {
			zeros++
		}
		if shared == -1 || zeros < shared {
			shared = zeros
		}
	}
	step := int64(1)
	for i := 0; i < shared; i++ {
		step *= 10
	}
	return step
}
