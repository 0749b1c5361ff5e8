package scheduler

import (
	"fmt"
	"hash/fnv"
	"strings"
)

const (
	notifKeyPrefix = "notif-"
	maintKeyPrefix = "maint-"
)

func notifKey(id string) string {
	return notifKeyPrefix + id
}

func maintKey(id uint64) string {
	return fmt.Sprintf("%s%d", maintKeyPrefix, id)
}

func beforeKey(id uint64, unit string, value int) string {
	return fmt.Sprintf("%d-before-%s-%d", id, unit, value)
}

func isNotifKey(key string) bool {
	return strings.HasPrefix(key, notifKeyPrefix)
}

// Hash31 folds a composite key into a positive 31-bit integer, the handle
// shape required by the durable scheduling bridge. Collisions are accepted
// as negligible for practical record counts.
func Hash31(key string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int32(h.Sum32() & 0x7FFFFFFF)
}
