package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

// qrModuleCount approximates the module grid of a version-3 QR code, the size
// an otpauth URI typically needs. Multiplied by pixels-per-module it yields
// the rendered image dimension.
const qrModuleCount = 41

var totpEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type totpService struct {
	cfg config.TOTPConfig
}

// NewTOTPService returns the RFC 6238 authenticator. PIN validation accepts
// codes within the configured clock-drift tolerance on either side of now.
func NewTOTPService(cfg config.TOTPConfig) TOTPService {
	return &totpService{cfg: cfg}
}

func (s *totpService) GenerateSecret() (string, error) {
	raw := make([]byte, s.cfg.SecretLength)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.ErrInternal(err)
	}
	return totpEncoding.EncodeToString(raw), nil
}

func (s *totpService) Provision(account, secretKey string, pixelsPerModule int) (*TOTPProvisioning, error) {
	if strings.TrimSpace(account) == "" {
		return nil, errors.ErrValidationFailed(errors.FieldError{Field: "Account", Message: "account is required"})
	}
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.ErrValidationFailed(errors.FieldError{Field: "SecretKey", Message: "secret key is required"})
	}
	if pixelsPerModule <= 0 {
		pixelsPerModule = s.cfg.PixelsPerModule
	}

	label := url.PathEscape(s.cfg.Issuer + ":" + account)
	query := url.Values{}
	query.Set("secret", secretKey)
	query.Set("issuer", s.cfg.Issuer)
	query.Set("digits", fmt.Sprintf("%d", constants.TOTPDigits))
	query.Set("period", fmt.Sprintf("%d", constants.TOTPStepSeconds))
	provisioningURI := "otpauth://totp/" + label + "?" + query.Encode()

	size := pixelsPerModule * qrModuleCount
	imageURL := fmt.Sprintf(
		"https://api.qrserver.com/v1/create-qr-code/?size=%dx%d&data=%s",
		size, size, url.QueryEscape(provisioningURI),
	)

	return &TOTPProvisioning{
		ManualKey:            groupKey(secretKey),
		ProvisioningURI:      provisioningURI,
		ProvisioningImageURL: imageURL,
	}, nil
}

// ValidatePin checks the PIN against every time step within the tolerance
// window. Acceptance is at step granularity: a PIN from a step whose start
// lies exactly tolerance ago still verifies, so a code can outlive the
// nominal tolerance by up to one step.
func (s *totpService) ValidatePin(secretKey, submittedPin string, now time.Time) bool {
	secret, err := totpEncoding.DecodeString(strings.ToUpper(strings.TrimSpace(secretKey)))
	if err != nil || len(submittedPin) != constants.TOTPDigits {
		return false
	}

	step := now.Unix() / constants.TOTPStepSeconds
	window := int64(s.cfg.ToleranceMinutes) * 60 / constants.TOTPStepSeconds

	// Every candidate in the window is checked with a constant-time compare,
	// and the loop never exits early on a match.
	matched := 0
	for offset := -window; offset <= window; offset++ {
		candidate := hotpCode(secret, step+offset, constants.TOTPDigits)
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(submittedPin))
	}
	return matched == 1
}

// hotpCode computes the RFC 4226 code for a counter value.
func hotpCode(secret []byte, counter int64, digits int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := (uint32(sum[offset])&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, code%mod)
}

// groupKey formats the shared secret in blocks of four for manual entry.
func groupKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
