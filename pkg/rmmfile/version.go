// SPDX-License-Identifier: MPL-2.0

package rmmfile

import "strconv"

// ParseVersionCode parses a version_code manifest value. The value is kept
// as a string on disk but must be a base-10 integer.
func ParseVersionCode(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &InvalidVersionCodeError{Value: s}
	}
	return n, nil
}

// BumpVersionCode increments a version_code string by exactly 1.
// Both sync and build bump; the counter is a build ordinal, not a content
// hash, so repeated bumps are expected and harmless.
func BumpVersionCode(s string) (string, error) {
	n, err := ParseVersionCode(s)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n+1, 10), nil
}
