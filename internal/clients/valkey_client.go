package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

// ValkeyClient tracks fingerprints of recently accepted submissions so the
// endpoint layer can reject rapid duplicates. It is strictly best-effort:
// callers treat any Valkey failure as "not seen".
type ValkeyClient struct {
	Client valkey.Client
}

const (
	VALKEY_SUBMISSIONS_KEY = "civicpulse:recent_submissions"

	// How long a fingerprint counts as a duplicate.
	submissionSeenTTL = 86400
)

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
		valkeyPassword := os.Getenv("VALKEY_PASSWORD")
		useTLS := os.Getenv("VALKEY_TLS") == "true"

		opts := valkey.ClientOption{
			InitAddress:      []string{valkeyAddr},
			Password:         valkeyPassword,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}

		if useTLS {
			opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to create Valkey client: %w", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if res := client.Do(ctx, client.B().Ping().Build()); res.Error() != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", res.Error()))
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")

		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// SubmissionFingerprint derives a stable identifier for a submission from the
// fields that make a resend indistinguishable from the original.
func SubmissionFingerprint(email, subject, comment string) string {
	raw := fmt.Sprintf("%s:%s:%s", email, subject, comment)
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}

// MarkSubmissionSeen records a fingerprint in the recent-submissions set and
// refreshes the set's TTL.
func (vc *ValkeyClient) MarkSubmissionSeen(ctx context.Context, fingerprint string) error {
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_SUBMISSIONS_KEY).Member(fingerprint).Build(),
		vc.Client.B().Expire().Key(VALKEY_SUBMISSIONS_KEY).Seconds(submissionSeenTTL).Build(),
	}

	for _, res := range vc.doMultiWithRetry(ctx, completed, 3) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Info("[ValkeyClient] Marked submission as seen",
		slog.String("fingerprint", fingerprint))
	return nil
}

// WasRecentlySubmitted reports whether a fingerprint was accepted within the
// TTL window. Errors read as false.
func (vc *ValkeyClient) WasRecentlySubmitted(ctx context.Context, fingerprint string) bool {
	res := vc.doWithRetry(ctx, vc.Client.B().Sismember().Key(VALKEY_SUBMISSIONS_KEY).Member(fingerprint).Build(), 3)

	seen, err := res.AsBool()
	if err != nil {
		return false
	}
	return seen
}

func (vc *ValkeyClient) doMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] DoMulti failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}
