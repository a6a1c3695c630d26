package integration

import (
	"fmt"
	"strings"
	"time"
)

// UniqueUser generates unique test user credentials using a timestamp
func UniqueUser(suffix string) (email, phone, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	phone = fmt.Sprintf("+1555%07d", ts%10000000)
	password = "test-password-42"
	return
}

// ExtractCode pulls the 6-digit code out of a captured verification message.
// Message format: "Your FlashOffers verification code is 123456. ..."
func ExtractCode(body string) string {
	const marker = "code is "
	idx := strings.Index(body, marker)
	if idx < 0 || len(body) < idx+len(marker)+6 {
		return ""
	}
	return body[idx+len(marker) : idx+len(marker)+6]
}
