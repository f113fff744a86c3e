package processor

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

// calculateEventHash hashes a single event record. Bump EventHashVersion
// whenever the serialization below changes.
func calculateEventHash(event *entity.Event) chainhash.Hash {
	return chainhash.DoubleHashH(getEventHashPayload(event))
}

func getEventHashPayload(event *entity.Event) []byte {
	var sb strings.Builder
	sb.WriteString("payload:v" + strconv.Itoa(EventHashVersion) + ":")
	sb.WriteString("action:" + string(event.Action))
	sb.WriteString("actor:" + event.Actor.String())
	if event.SeriesID != nil {
		sb.WriteString("seriesId:" + event.SeriesID.String())
	}
	if event.InstanceID != nil {
		sb.WriteString("instanceId:" + event.InstanceID.String())
	}
	sb.WriteString("payload:")
	sb.Write(event.Payload)
	sb.WriteString("createdAt:" + strconv.FormatInt(event.CreatedAt.Unix(), 10))
	sb.WriteString(";")
	return []byte(sb.String())
}

// calculateCumulativeEventHash chains an event hash onto the cumulative hash
// of the previous event. The first event's cumulative hash is its own hash.
func calculateCumulativeEventHash(prevCumulativeHash chainhash.Hash, eventHash chainhash.Hash) chainhash.Hash {
	if prevCumulativeHash == common.ZeroHash {
		return eventHash
	}
	return chainhash.DoubleHashH([]byte(hex.EncodeToString(prevCumulativeHash[:]) + hex.EncodeToString(eventHash[:])))
}
