package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// ObjectKey derives the storage key for a new upload. Keys are namespaced by
// owner and made collision-free with a time+random suffix, so the same file
// name uploaded twice never maps to the same object.
func ObjectKey(fileName, ownerID string) string {
	suffix := strconv.FormatInt(time.Now().UnixMilli(), 36) + randomSuffix()
	return fmt.Sprintf("%s/%s_%s", ownerID, suffix, fileName)
}

func randomSuffix() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
