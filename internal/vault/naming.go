package vault

import (
	"strconv"
	"strings"
	"time"
)

const (
	keySeparator  = "/"
	nameSeparator = "_"
)

// UserPrefix returns the list/delete root of a user's namespace.
func UserPrefix(userID string) string {
	return userID + keySeparator
}

// StoredName returns "{unixMillis}_{originalFileName}".
func StoredName(originalFileName string, now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + nameSeparator + originalFileName
}

// KeyFor joins a user id and a stored name into a full storage key.
func KeyFor(userID, storedName string) string {
	return UserPrefix(userID) + storedName
}

// ComputeStorageKey derives the storage key of a new upload. The original
// name is not sanitised; uniqueness relies on millisecond resolution of now.
func ComputeStorageKey(userID, originalFileName string, now time.Time) string {
	return KeyFor(userID, StoredName(originalFileName, now))
}

// StoredNameFromKey strips the user prefix from key.
func StoredNameFromKey(key string) string {
	if i := strings.Index(key, keySeparator); i >= 0 {
		return key[i+1:]
	}
	return key
}

// OriginalFileName recovers the display name: everything after the first
// underscore. Names without an underscore are returned unchanged.
func OriginalFileName(storedName string) string {
	if i := strings.Index(storedName, nameSeparator); i >= 0 {
		return storedName[i+1:]
	}
	return storedName
}

// OwnsKey reports whether key lies inside userID's namespace. Keys with
// "." or ".." segments after the prefix are refused.
func OwnsKey(userID, key string) bool {
	if userID == "" {
		return false
	}
	rest, ok := strings.CutPrefix(key, UserPrefix(userID))
	if !ok || rest == "" {
		return false
	}
	for _, seg := range strings.Split(rest, keySeparator) {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
