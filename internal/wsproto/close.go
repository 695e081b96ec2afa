// File: internal/wsproto/close.go
// Author: momentics <momentics@gmail.com>
//
// Close status code handling, RFC 6455 §7.4. A handful of codes
// (1005 NoStatus, 1006 AbnormalClosure, and the unassigned/reserved range)
// may be reported to an application but must never appear on the wire in an
// actual Close frame.
package wsproto

// SanitizeCloseStatus maps a status observed from a peer's Close frame (or a
// locally-decided one) to a code that is legal to place in an outgoing Close
// frame (spec §9 Open Question "Echoing reserved close codes"). Codes
// outside the legal send ranges collapse to 1000 NormalClosure.
func SanitizeCloseStatus(status uint16) uint16 {
	switch status {
	case 1000, 1001, 1002, 1003, 1007, 1008, 1009, 1010, 1011:
		return status
	}
	if status >= 3000 && status <= 4999 {
		return status
	}
	return 1000
}
