package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

// leadMarkerRe matches the structured tag the assistant is instructed to
// append once it has collected contact details, e.g.
// :::LEAD_DATA={"name":"Budi","phone":"0812..."}:::
var leadMarkerRe = regexp.MustCompile(`:::LEAD_DATA=(\{.*?\}):::`)

// LeadData is the JSON payload embedded in a lead marker.
type LeadData struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// extractLead strips the marker from reply and parses its payload. The
// second return is the cleaned reply. A malformed payload yields a nil lead
// with the marker still stripped; the reply must never carry the tag to the
// user regardless of whether the JSON parsed.
func extractLead(reply string) (*LeadData, string, bool) {
	match := leadMarkerRe.FindStringSubmatch(reply)
	if match == nil {
		return nil, reply, false
	}

	cleaned := strings.TrimSpace(leadMarkerRe.ReplaceAllString(reply, ""))

	var data LeadData
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		return nil, cleaned, true
	}
	return &data, cleaned, true
}
