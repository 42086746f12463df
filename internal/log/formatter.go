package log

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// lineFormatter renders one log line per entry from a pattern holding
// %time, %level, %msg and %field placeholders. Structured fields (ring
// names, channel identifiers) come out as key=value pairs in sorted key
// order, so repeated digest lines stay diffable across runs.
type lineFormatter struct {
	pattern    string
	timeLayout string
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	line := strings.NewReplacer(
		"%time", entry.Time.Format(f.timeLayout),
		"%level", entry.Level.String(),
		"%msg", entry.Message,
		"%field", formatFields(entry.Data),
	).Replace(f.pattern)
	return []byte(line), nil
}

func formatFields(data logrus.Fields) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, data[key]))
	}
	return strings.Join(pairs, ",")
}
