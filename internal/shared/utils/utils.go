package utils

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func ParseFloatToDecimal(number *float64) *decimal.Decimal {
	if number == nil {
		return nil
	}
	d := decimal.NewFromFloat(*number)
	return &d
}

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// GenerateOrderNumber builds a human-readable unique order number.
// Format: ORD-YYYYMMDD-XXXXXX (uppercase base36 suffix).
func GenerateOrderNumber(now time.Time) string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), string(suffix))
}

// GenerateSlug builds a URL slug from a course title
func GenerateSlug(title string) string {
	title = strings.ToLower(title)
	title = strings.ReplaceAll(title, " ", "-")

	// Keep only a-z, 0-9 and hyphens
	reg := regexp.MustCompile("[^a-z0-9-]+")
	title = reg.ReplaceAllString(title, "")

	// Collapse duplicate hyphens
	title = regexp.MustCompile("-+").ReplaceAllString(title, "-")

	return strings.Trim(title, "-")
}
