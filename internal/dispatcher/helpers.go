package dispatcher

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/marmos91/naming-server/internal/wire"
)

// dialTimeout bounds a one-shot dial to a storage server's client port
// (EXEC's direct fetch, not a persistent control channel).
const dialTimeout = 5 * time.Second

// joinLines newline-joins a result set for the dump-style operations
// (VIEW, VIEWFOLDER, SEARCH, LISTCHECKPOINTS, LIST_USERS, LIST_SS) whose
// wire payload is plain text rather than a structured encoding.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// encodeStats renders size/words/chars as the "size:words:chars" text
// payload INFO replies with on a fallback-path resolution.
func encodeStats(size, words, chars uint64) []byte {
	return []byte(fmt.Sprintf("%d:%d:%d", size, words, chars))
}

// fetchFromSS dials a storage server's client port directly and issues a
// one-shot READ, returning the file's bytes. Used by EXEC, which talks to
// the SS the same way a client streaming a READ would rather than going
// through the control channel the registry owns.
func fetchFromSS(ip string, port uint32, filename string) ([]byte, error) {
	addr := fmt.Sprintf("%s:%d", ip, port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(dialTimeout))

	req := &wire.Message{Type: wire.READ, Filename: filename}
	if err := wire.WriteMessage(conn, req); err != nil {
		return nil, fmt.Errorf("write READ to %s: %w", addr, err)
	}

	reply, err := wire.ReadMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("read reply from %s: %w", addr, err)
	}
	if reply.ErrorCode != wire.RESP_SUCCESS {
		return nil, fmt.Errorf("SS replied %s for %s", reply.ErrorCode, filename)
	}
	return reply.Data, nil
}
