// Package tracer is a small tracing facade over OpenTelemetry. Services depend
// on Tracer; tests pass NewNoop().
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations are safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// HashEmail lets traces correlate by address without carrying it.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}

const (
	SpanMFAVerify        = "mfa.verify"
	SpanMFASendCode      = "mfa.send_code"
	SpanMFAConfirmSetup  = "mfa.confirm_setup"
	SpanInvitationInvite = "invitation.invite"
	SpanInvitationAccept = "invitation.accept"
	SpanPartnersFetch    = "partners.fetch"
)

const (
	AttrUserID    = "user.id"
	AttrMFAType   = "mfa.type"
	AttrVerified  = "mfa.verified"
	AttrReason    = "reason"
	AttrEmailHash = "email.hash"
	AttrRole      = "role"
	AttrDelivery  = "delivery"
	AttrCacheHit  = "cache.hit"
)
