package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tOgg1/jwtlens/internal/models"
)

// wireToken is one entry of the /jwts listing. The service mixes Spanish and
// English field names and sends ids as either numbers or strings.
type wireToken struct {
	ID        json.RawMessage `json:"id"`
	Token     string          `json:"token"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"createdAt"`
	Valid     *bool           `json:"valido"`
	Secreto   *string         `json:"secreto"`
	Secret    *string         `json:"secret"`
	ErrorKind *string         `json:"tipo_error"`
}

func (w wireToken) record(index int) models.TokenRecord {
	id := wireID(w.ID)
	if id == "" {
		id = fmt.Sprintf("jwt-%d", index+1)
	}
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = "JWT " + id
	}
	secret := deref(w.Secreto)
	if secret == "" {
		secret = deref(w.Secret)
	}
	return models.TokenRecord{
		ID:        id,
		Token:     strings.TrimSpace(w.Token),
		Name:      name,
		CreatedAt: parseTimestamp(w.CreatedAt),
		Valid:     models.ValidityFromPtr(w.Valid),
		Secret:    secret,
		ErrorKind: deref(w.ErrorKind),
	}
}

func wireID(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return text
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	http.TimeFormat,
	time.RFC1123,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the formats the service has been seen to emit and
// returns the zero time for anything else.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
