package helper

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cradoe/indigene/internal/errHandler"
)

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler *errHandler.ErrorHandler
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler *errHandler.ErrorHandler) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	return map[string]any{
		"BaseURL": h.baseUrl,
	}
}

// BackgroundTask runs fn in its own goroutine with panic recovery.
// Used for everything that must not block or fail the response:
// event publishing, emails, audit writes.
func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil {
				h.errHandler.ReportServerError(r, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil {
			h.errHandler.ReportServerError(r, err)
		}
	}()
}

const (
	alphanumeric      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	upperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits            = "0123456789"
)

func randomFrom(charset string, length int) string {
	var sb strings.Builder
	sb.Grow(length)

	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand failure is not recoverable
		}
		sb.WriteByte(charset[n.Int64()])
	}

	return sb.String()
}

// RandomAlphanumeric returns a random mixed-case alphanumeric string.
// Verification-code suffixes come from here.
func RandomAlphanumeric(length int) string {
	return randomFrom(alphanumeric, length)
}

// GenerateTransactionRef creates a payment reference of the form
// TXN{6 random chars}{compact UTC timestamp}. It doubles as the
// idempotency key for the whole payment-confirmation flow.
func GenerateTransactionRef() string {
	stamp := strings.NewReplacer("-", "", ":", "", ".", "").Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return "TXN" + randomFrom(alphanumeric, 6) + stamp
}

// GenerateCertificateRef creates a candidate certificate reference,
// OGLGA plus 9 upper-case alphanumeric characters. Callers must check
// it for collisions before use.
func GenerateCertificateRef() string {
	return "OGLGA" + randomFrom(upperAlphanumeric, 9)
}

// RandomDigits returns a numeric string, used for password-reset OTPs.
func RandomDigits(length int) string {
	return randomFrom(digits, length)
}

// GenerateRandomPassword makes a temporary password for invited admins.
func GenerateRandomPassword() string {
	return randomFrom(alphanumeric, 12)
}
