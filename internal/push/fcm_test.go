package push

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		require.Equal(t, OutcomeOK, classify(nil))
	})

	t.Run("token errors by message", func(t *testing.T) {
		cases := []error{
			errors.New("http error status: 404; reason: UNREGISTERED"),
			errors.New("http error status: 400; reason: INVALID_ARGUMENT"),
			errors.New("the registration token is not a valid FCM registration token"),
		}
		for _, err := range cases {
			require.Equal(t, OutcomeInvalidToken, classify(err), "error: %v", err)
		}
	})

	t.Run("unknown errors are transient", func(t *testing.T) {
		require.Equal(t, OutcomeTransient, classify(errors.New("connection reset by peer")))
	})
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "ok", OutcomeOK.String())
	require.Equal(t, "invalid_token", OutcomeInvalidToken.String())
	require.Equal(t, "transient", OutcomeTransient.String())
	require.Equal(t, "permanent", OutcomePermanent.String())
	require.Equal(t, "unknown", Outcome(42).String())
}
