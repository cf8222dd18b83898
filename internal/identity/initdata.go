package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrPayloadSignature = errors.New("payload signature mismatch")
	ErrPayloadStale     = errors.New("payload auth_date too old")
	ErrPayloadMalformed = errors.New("payload malformed")
)

// PayloadVerifier validates signed mini-app payloads. The platform signs the
// query-string payload with HMAC-SHA256 keyed off the bot token; a stale or
// tampered payload is rejected.
type PayloadVerifier struct {
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

func NewPayloadVerifier(botToken string, maxAge time.Duration) *PayloadVerifier {
	return &PayloadVerifier{botToken: botToken, maxAge: maxAge, now: time.Now}
}

type payloadUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// VerifySignedPayload checks the payload signature and freshness and returns
// the embedded platform user id.
func (v *PayloadVerifier) VerifySignedPayload(initData string) (int64, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, ErrPayloadMalformed
	}
	gotHash := values.Get("hash")
	if gotHash == "" {
		return 0, ErrPayloadMalformed
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmacSHA256([]byte("WebAppData"), []byte(v.botToken))
	expected := hex.EncodeToString(hmacSHA256(secret, []byte(checkString)))
	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return 0, ErrPayloadSignature
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, ErrPayloadMalformed
	}
	if v.maxAge > 0 && v.now().Sub(time.Unix(authDate, 0)) > v.maxAge {
		return 0, ErrPayloadStale
	}

	var user payloadUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return 0, ErrPayloadMalformed
	}
	return user.ID, nil
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
