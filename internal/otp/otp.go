// Package otp computes and verifies one-time passwords: RFC 4226 HOTP, RFC 6238
// TOTP over 30-second steps, and random six-digit email codes.
//
// Everything here is a pure function of its inputs plus a randomness source.
// Malformed secrets never produce errors on the verification path: a code that
// cannot match is ordinary traffic.
package otp

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	otplib "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

const (
	// Digits is the length of every code produced by this package.
	Digits = 6
	// Period is the TOTP time step.
	Period = 30 * time.Second
	// Skew is the number of steps accepted on either side of the current one.
	Skew = 1

	secretBytes   = 20
	emailCodeMin  = 100_000
	emailCodeSpan = 900_000

	// invalidCode is returned by ComputeHOTP when the secret cannot be decoded.
	invalidCode = "000000"

	// keyIssuer only labels the throwaway key used to draw a secret.
	keyIssuer  = "partnerdash"
	keyAccount = "enrollment"
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns 20 random bytes encoded as 32 unpadded base32 characters.
func GenerateSecret() (string, error) {
	return generateSecret(rand.Reader)
}

func generateSecret(r io.Reader) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      keyIssuer,
		AccountName: keyAccount,
		Period:      uint(Period / time.Second),
		SecretSize:  secretBytes,
		Digits:      otplib.DigitsSix,
		Algorithm:   otplib.AlgorithmSHA1,
		Rand:        r,
	})
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return key.Secret(), nil
}

// GenerateEmailCode returns a uniformly random integer in [100000, 999999] as a string.
func GenerateEmailCode() (string, error) {
	return generateEmailCode(rand.Reader)
}

func generateEmailCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(emailCodeSpan))
	if err != nil {
		return "", fmt.Errorf("read code entropy: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+emailCodeMin), nil
}

// DecodeSecret decodes a base32 secret. Case, embedded spaces and trailing
// padding are tolerated since users sometimes type secrets by hand.
func DecodeSecret(secret string) ([]byte, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	cleaned = strings.TrimRight(cleaned, "=")
	if cleaned == "" {
		return nil, fmt.Errorf("empty secret")
	}
	key, err := secretEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	return key, nil
}

// ComputeHOTP returns the six-digit HOTP value of secret at counter,
// or "000000" when the secret is not valid base32.
func ComputeHOTP(secret string, counter uint64) string {
	key, err := normalizeSecret(secret)
	if err != nil {
		return invalidCode
	}
	code, err := hotp.GenerateCodeCustom(key, counter, hotp.ValidateOpts{
		Digits:    otplib.DigitsSix,
		Algorithm: otplib.AlgorithmSHA1,
	})
	if err != nil {
		return invalidCode
	}
	return code
}

// normalizeSecret returns the canonical unpadded form of a decodable secret.
func normalizeSecret(secret string) (string, error) {
	raw, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return secretEncoding.EncodeToString(raw), nil
}

// Counter returns the TOTP step containing t.
func Counter(t time.Time) int64 {
	return t.Unix() / int64(Period/time.Second)
}

// VerifyTOTP reports whether code matches the TOTP value for the step containing
// now or one step either side of it.
func VerifyTOTP(secret, code string, now time.Time) bool {
	if len(code) != Digits {
		return false
	}
	key, err := normalizeSecret(secret)
	if err != nil {
		return false
	}
	ok, err := totp.ValidateCustom(code, key, now, totp.ValidateOpts{
		Period:    uint(Period / time.Second),
		Skew:      Skew,
		Digits:    otplib.DigitsSix,
		Algorithm: otplib.AlgorithmSHA1,
	})
	return err == nil && ok
}

// ProvisioningURI builds the otpauth:// URI that authenticator apps scan.
// It returns an empty string when the secret is not valid base32.
func ProvisioningURI(secret, account, issuer string) string {
	raw, err := DecodeSecret(secret)
	if err != nil {
		return ""
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(Period / time.Second),
		Secret:      raw,
		Digits:      otplib.DigitsSix,
		Algorithm:   otplib.AlgorithmSHA1,
	})
	if err != nil {
		return ""
	}
	return key.URL()
}
