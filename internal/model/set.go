package model

import "strings"

// AppendUnique appends values not already present, keeping insertion order.
// Empty (whitespace-only) values are skipped.
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) == "" || Contains(list, v) {
			continue
		}
		list = append(list, v)
	}
	return list
}

// Contains reports whether list holds value
func Contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
