package weather

import (
	"encoding/json"
	"time"
)

const localTimeLayout = "2006-01-02 15:04:05"

// LocalizeTimestamps rewrites current.dt and every hourly/daily dt from
// epoch seconds into a wall-clock string shifted by the payload's
// timezone_offset. Unknown or missing fields are left untouched.
func LocalizeTimestamps(payload map[string]interface{}) {
	offset, _ := epochValue(payload["timezone_offset"])

	if current, ok := payload["current"].(map[string]interface{}); ok {
		rewriteDt(current, offset)
	}

	for _, key := range []string{"hourly", "daily"} {
		entries, ok := payload[key].([]interface{})
		if !ok {
			continue
		}
		for _, entry := range entries {
			if m, ok := entry.(map[string]interface{}); ok {
				rewriteDt(m, offset)
			}
		}
	}
}

func rewriteDt(entry map[string]interface{}, offset int64) {
	dt, ok := epochValue(entry["dt"])
	if !ok {
		return
	}
	entry["dt"] = time.Unix(dt+offset, 0).UTC().Format(localTimeLayout)
}

func epochValue(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
