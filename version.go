// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

// Package versions are free-form, so ordering cannot lean on a strict
// version grammar. CompareVersions implements a natural order: the
// strings are walked as alternating runs of digits and non-digits,
// digit runs compare numerically and everything else compares
// byte-wise. This makes "10.0.0" sort after "9.9.9" and release
// timestamps order chronologically.

// CompareVersions returns -1, 0 or 1 according to whether a orders
// before, equal to or after b under natural version ordering.
func CompareVersions(a, b string) int {
	for a != "" || b != "" {
		aRun, aNumeric, aRest := nextRun(a)
		bRun, bNumeric, bRest := nextRun(b)
		switch {
		case aRun == "" && bRun != "":
			return -1
		case aRun != "" && bRun == "":
			return 1
		case aNumeric && bNumeric:
			if c := compareNumeric(aRun, bRun); c != 0 {
				return c
			}
		case aNumeric != bNumeric:
			// Digits order before letters at the same position.
			if aNumeric {
				return -1
			}
			return 1
		default:
			if aRun != bRun {
				if aRun < bRun {
					return -1
				}
				return 1
			}
		}
		a, b = aRest, bRest
	}
	return 0
}

// nextRun splits s into its leading run of digits or non-digits and the
// remainder, skipping a single leading separator.
func nextRun(s string) (run string, numeric bool, rest string) {
	if s == "" {
		return "", false, ""
	}
	if s[0] == '.' || s[0] == '-' || s[0] == '_' {
		s = s[1:]
		if s == "" {
			return "", false, ""
		}
	}
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric && !isSeparator(s[i]) {
		i++
	}
	return s[:i], numeric, s[i:]
}

func compareNumeric(a, b string) int {
	// Compare digit runs of arbitrary length without overflow:
	// strip leading zeros, then longer means larger.
	a, b = stripZeros(a), stripZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	if a != b {
		if a < b {
			return -1
		}
		return 1
	}
	return 0
}

func stripZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSeparator(c byte) bool {
	return c == '.' || c == '-' || c == '_'
}
