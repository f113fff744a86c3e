package httphandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The payout preview and the transfer-with-payout endpoints share the
// maxPayees rule: a preview that validates must never turn into a transfer
// that rejects.
func TestPayoutRequestsRequireMaxPayees(t *testing.T) {
	t.Run("payout preview", func(t *testing.T) {
		req := getPayoutPreviewRequest{
			Id:     "1:1",
			Amount: "1000000",
		}
		err := req.Validate()
		require.ErrorContains(t, err, "maxPayees is required")

		req.MaxPayees = 11
		assert.NoError(t, req.Validate())
	})

	t.Run("transfer with payout", func(t *testing.T) {
		req := transferPayoutRequest{
			transferRequest: transferRequest{
				InstanceId: "1:1",
				ReceiverId: "buyer.one",
			},
		}
		err := req.Validate()
		require.ErrorContains(t, err, "maxPayees is required")

		req.MaxPayees = 11
		assert.NoError(t, req.Validate())
	})
}
