package entity

import (
	"crypto/rand"
	"net/url"
	"strings"
)

const (
	referralTokenLength = 6
	referralAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	// bytes at or above this would bias the modulo below
	referralByteLimit = 256 - 256%len(referralAlphabet)
)

// NewReferralCode builds "<email-local-part>_<6 random [a-z0-9]>".
func NewReferralCode(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		local = "friend"
	}
	return local + "_" + referralToken()
}

func referralToken() string {
	token := make([]byte, 0, referralTokenLength)
	buf := make([]byte, 2*referralTokenLength)
	for len(token) < referralTokenLength {
		// crypto/rand.Read never returns an error
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= referralByteLimit {
				continue
			}
			token = append(token, referralAlphabet[int(b)%len(referralAlphabet)])
			if len(token) == referralTokenLength {
				break
			}
		}
	}
	return string(token)
}

// ReferralLink is the share link for code on siteURL.
func ReferralLink(siteURL, code string) string {
	return strings.TrimRight(siteURL, "/") + "/?ref=" + url.QueryEscape(code)
}
