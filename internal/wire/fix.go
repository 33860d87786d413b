// Package wire implements POE's outbound exchange protocol: FIX 4.2
// NewOrderSingle and OrderCancelRequest encoding. This is the external
// wire adapter; POE holds the only writer.
package wire

import (
	"fmt"
	"time"

	"github.com/sagehft/sage/internal/fixedpoint"
)

// Side is the FIX 54 side value.
type Side uint8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

const soh = byte(0x01)

// timestampLayout matches FIX's UTCTimestamp (tag 60): YYYYMMDD-HH:MM:SS.sss.
const timestampLayout = "20060102-15:04:05.000"

// NewOrderSingle encodes a FIX 4.2 NewOrderSingle (MsgType=D).
func NewOrderSingle(orderID uint64, symbolID uint32, side Side, qty, price fixedpoint.Value, sentAt time.Time) []byte {
	body := appendField(nil, "35", "D")
	body = appendField(body, "11", fmt.Sprintf("%d", orderID))
	body = appendField(body, "55", fmt.Sprintf("%d", symbolID))
	body = appendField(body, "54", fmt.Sprintf("%d", side))
	body = appendField(body, "60", sentAt.UTC().Format(timestampLayout))
	body = appendField(body, "38", formatDecimal(qty))
	body = appendField(body, "40", "2")
	body = appendField(body, "44", formatDecimal(price))
	body = appendField(body, "59", "0")
	return encode(body)
}

// OrderCancelRequest encodes a FIX 4.2 OrderCancelRequest (MsgType=F),
// mirroring NewOrderSingle's field layout with an added OrigClOrdID (41).
func OrderCancelRequest(orderID, origOrderID uint64, symbolID uint32, side Side, sentAt time.Time) []byte {
	body := appendField(nil, "35", "F")
	body = appendField(body, "11", fmt.Sprintf("%d", orderID))
	body = appendField(body, "41", fmt.Sprintf("%d", origOrderID))
	body = appendField(body, "55", fmt.Sprintf("%d", symbolID))
	body = appendField(body, "54", fmt.Sprintf("%d", side))
	body = appendField(body, "60", sentAt.UTC().Format(timestampLayout))
	body = appendField(body, "38", "0")
	body = appendField(body, "40", "2")
	body = appendField(body, "59", "0")
	return encode(body)
}

// appendField appends "tag=value" + SOH to dst.
func appendField(dst []byte, tag, value string) []byte {
	dst = append(dst, tag...)
	dst = append(dst, '=')
	dst = append(dst, value...)
	dst = append(dst, soh)
	return dst
}

// encode wraps body (everything after the body-length field, before the
// checksum field) with the BeginString/BodyLength preamble and a trailing
// checksum field, per the NewOrderSingle/OrderCancelRequest wire format.
func encode(body []byte) []byte {
	msg := appendField(nil, "8", "FIX.4.2")
	msg = appendField(msg, "9", fmt.Sprintf("%03d", len(body)))
	msg = append(msg, body...)

	var sum uint32
	for _, b := range msg {
		sum += uint32(b)
	}
	checksum := sum % 256

	return appendField(msg, "10", fmt.Sprintf("%03d", checksum))
}

// formatDecimal renders a fixed-point value as a fixed 8-decimal string
// without going through floating point, matching the deterministic
// arithmetic used everywhere else on the order path.
func formatDecimal(v fixedpoint.Value) string {
	n := int64(v)
	neg := n < 0
	if neg {
		n = -n
	}
	whole := n / fixedpoint.Scale
	frac := n % fixedpoint.Scale
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%08d", sign, whole, frac)
}
