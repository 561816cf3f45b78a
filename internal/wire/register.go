package wire

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// SSRegistration is the REGISTER_SS payload: the announcing storage server's
// identity plus the bounded list of filenames it already hosts (used on
// reconnect to re-assert storageServerId without losing ACLs).
//
// It travels inside Message.Data, XDR-encoded, the same way the teacher
// encodes NFS mount-protocol bodies with the rasky/go-xdr package.
type SSRegistration struct {
	SSID       string
	IP         string
	NMPort     uint32
	ClientPort uint32
	Files      []string
}

// EncodeSSRegistration XDR-encodes a SSRegistration for use as Message.Data.
func EncodeSSRegistration(reg *SSRegistration) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, reg); err != nil {
		return nil, fmt.Errorf("marshal ss registration: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSSRegistration parses a REGISTER_SS Message.Data payload.
func DecodeSSRegistration(data []byte) (*SSRegistration, error) {
	var reg SSRegistration
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &reg); err != nil {
		return nil, fmt.Errorf("unmarshal ss registration: %w", err)
	}
	return &reg, nil
}
