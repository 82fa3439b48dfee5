package flickr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// sizeSuffixes lists the rendition suffixes requested from the API, smallest
// first: thumbnail, small 320, medium 500, medium 640, medium 800, large,
// original.
var sizeSuffixes = []string{"t", "n", "m", "z", "c", "l", "o"}

// Extras returns the comma-joined url_<suffix> keys sent as "extras".
func Extras() string {
	keys := make([]string, len(sizeSuffixes))
	for i, s := range sizeSuffixes {
		keys[i] = "url_" + s
	}
	return strings.Join(keys, ",")
}

// envelope is the common shape of every REST response.
type envelope struct {
	Stat    string  `json:"stat"`
	Code    flexInt `json:"code"`
	Message string  `json:"message"`
}

type searchResponse struct {
	envelope
	Photos photoList `json:"photos"`
}

type photoList struct {
	Page    flexInt    `json:"page"`
	Pages   flexInt    `json:"pages"`
	PerPage flexInt    `json:"perpage"`
	Total   flexInt    `json:"total"`
	Photo   []rawPhoto `json:"photo"`
}

// rawPhoto keeps every field so the url_/width_/height_ triples can be read by
// suffix.
type rawPhoto map[string]json.RawMessage

func (p rawPhoto) str(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func (p rawPhoto) num(key string) int {
	raw, ok := p[key]
	if !ok {
		return 0
	}
	var n flexInt
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return int(n)
}

func (p rawPhoto) has(key string) bool {
	raw, ok := p[key]
	return ok && !bytes.Equal(raw, []byte("null"))
}

// flexInt accepts 12, 12.0 and "12". The API is inconsistent about quoting.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*n = flexInt(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = flexInt(f)
	return nil
}
