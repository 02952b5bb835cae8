package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/o1egl/paseto"
	"github.com/pkg/errors"
)

// FormTokenValidity is how long a form link stays usable after the later of
// its issue time and the PROM due date.
const FormTokenValidity = 30 * 24 * time.Hour

const formTokenPurpose = "prom_form"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// FormTokenClaims is the payload of a patient form token.
type FormTokenClaims struct {
	ScheduleID uint      `json:"scheduleId"`
	Purpose    string    `json:"purpose"`
	Expiry     time.Time `json:"expiry"`
}

// FormTokens issues and checks PASETO v2 local tokens that grant access to
// exactly one PROM schedule.
type FormTokens struct {
	key     []byte
	baseURL string
	now     func() time.Time
}

func NewFormTokens(key, baseURL string, now func() time.Time) (*FormTokens, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("form token key must be 32 bytes long, got %d", len(key))
	}
	if now == nil {
		now = time.Now
	}
	return &FormTokens{key: []byte(key), baseURL: baseURL, now: now}, nil
}

// Issue creates a token for scheduleID valid until expiry.
func (f *FormTokens) Issue(scheduleID uint, expiry time.Time) (string, error) {
	claims := FormTokenClaims{ScheduleID: scheduleID, Purpose: formTokenPurpose, Expiry: expiry}
	token, err := paseto.NewV2().Encrypt(f.key, claims, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token")
	}
	return token, nil
}

// Validate decrypts the token and returns the schedule it grants access to.
func (f *FormTokens) Validate(token string) (uint, error) {
	var claims FormTokenClaims
	if err := paseto.NewV2().Decrypt(token, f.key, &claims, nil); err != nil {
		return 0, errors.Wrap(ErrTokenInvalid, err.Error())
	}
	if claims.Purpose != formTokenPurpose || claims.ScheduleID == 0 {
		return 0, ErrTokenInvalid
	}
	if f.now().After(claims.Expiry) {
		return 0, ErrTokenExpired
	}
	return claims.ScheduleID, nil
}

// FormURL issues a token for the schedule and embeds it in the form link.
func (f *FormTokens) FormURL(scheduleID uint, dueDate time.Time) (string, error) {
	start := f.now()
	if dueDate.After(start) {
		start = dueDate
	}
	token, err := f.Issue(scheduleID, start.Add(FormTokenValidity))
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("schedule", strconv.FormatUint(uint64(scheduleID), 10))
	q.Set("token", token)
	return f.baseURL + "?" + q.Encode(), nil
}
