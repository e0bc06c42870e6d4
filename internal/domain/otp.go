package domain

import "time"

// OTPRecord is the live one-time code for an identity. There is at most one
// record per identity; issuing a new code overwrites it.
type OTPRecord struct {
	Identity  string    `json:"identity" dynamodbav:"identity" firestore:"-"`
	Code      string    `json:"-" dynamodbav:"code" firestore:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at,unixtime" firestore:"expiresAt"`
}

// Complete reports whether the record carries every field verification needs.
func (r *OTPRecord) Complete() bool {
	return r.Code != "" && !r.ExpiresAt.IsZero()
}

// Accepts reports whether code matches exactly and now is strictly before expiry.
func (r *OTPRecord) Accepts(code string, now time.Time) bool {
	return r.Code == code && now.Before(r.ExpiresAt)
}
