package helper

import (
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"

	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransactionRef(t *testing.T) {
	ref := GenerateTransactionRef()

	require.Regexp(t, `^TXN[A-Za-z0-9]{6}\d{8}T\d{9}Z$`, ref)
	require.NotEqual(t, ref, GenerateTransactionRef())
}

func TestGenerateCertificateRef(t *testing.T) {
	rx := regexp.MustCompile(`^OGLGA[A-Z0-9]{9}$`)

	for i := 0; i < 20; i++ {
		require.Regexp(t, rx, GenerateCertificateRef())
	}
}

func TestRandomDigits(t *testing.T) {
	otp := RandomDigits(6)
	require.Regexp(t, `^\d{6}$`, otp)
}

func TestRandomAlphanumeric(t *testing.T) {
	require.Regexp(t, `^[A-Za-z0-9]{7}$`, RandomAlphanumeric(7))
	require.Empty(t, RandomAlphanumeric(0))
}

func discardErrHandler() *errHandler.ErrorHandler {
	return errHandler.New("", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBackgroundTaskWaitsAndRecovers(t *testing.T) {
	var wg sync.WaitGroup
	h := New(nil, &wg, discardErrHandler())

	ran := make(chan struct{})
	h.BackgroundTask(nil, func() error {
		close(ran)
		return nil
	})

	wg.Wait()

	select {
	case <-ran:
	default:
		t.Fatal("background task did not run")
	}
}

func TestBackgroundTaskSurvivesError(t *testing.T) {
	var wg sync.WaitGroup
	h := New(nil, &wg, discardErrHandler())

	// the error is reported, not propagated; WaitGroup still drains
	h.BackgroundTask(nil, func() error {
		return errors.New("boom")
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	<-done
}
