package subprocess

import (
	"encoding/json"
)

// parseResponse extracts the "translated" string from the helper's stdout.
// ok is false when stdout is not a JSON object with a string "translated"
// member; callers then use the raw output.
func parseResponse(stdout []byte) (translated string, ok bool) {
	if len(stdout) == 0 {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(stdout, &fields); err != nil {
		return "", false
	}

	raw, present := fields["translated"]
	if !present || string(raw) == "null" {
		return "", false
	}

	if err := json.Unmarshal(raw, &translated); err != nil {
		return "", false
	}
	return translated, true
}
