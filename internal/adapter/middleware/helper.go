package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"mime"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

// fingerprint hashes a request body. Multipart boundaries are chosen per send
// by the client, so they are blanked out before hashing.
func fingerprint(contentType string, body []byte) string {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mt, "multipart/") || params["boundary"] == "" {
		return bodyHash(body)
	}
	return bodyHash(bytes.ReplaceAll(body, []byte("--"+params["boundary"]), []byte("--")))
}

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, subject, requestID string) string {
	return "idemp:ax:" + strings.ToLower(method) + ":" + path + ":" + subject + ":" + requestID
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-8][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseAxRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339
// with an explicit zone. Naive local timestamps are rejected.
func parseAxRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	// RFC3339Nano also accepts values without fractional seconds
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}

// reserve claims key for an in-flight request. false means someone else holds it.
func reserve(ctx context.Context, rdb redis.Cmdable, key string, r record) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadRecord(ctx context.Context, rdb redis.Cmdable, key string) (record, error) {
	var r record
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(v, &r)
	return r, err
}

func remember(ctx context.Context, rdb redis.Cmdable, key string, r record, ttl time.Duration) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
