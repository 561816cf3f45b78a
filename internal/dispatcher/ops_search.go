package dispatcher

import (
	"context"
	"fmt"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metrics"
	"github.com/marmos91/naming-server/internal/wire"
)

// opSearch answers a query against the bounded memo, falling back to a
// full ACL-respecting scan on a miss. The query text rides in msg.Filename:
// SEARCH has no real filename of its own, and Filename is the wire
// struct's only free-text field with the right shape.
func opSearch(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	query := msg.Filename

	results, hit := d.store.SearchLookup(query, username)
	if hit {
		metrics.SearchCacheHits.Inc()
	} else {
		results = d.store.VisibleSearchResults(query, username)
		d.store.SearchStore(query, username, results)
		metrics.SearchCacheMisses.Inc()
	}

	logger.Debug("search served", logger.Query(query), logger.CacheHit(hit), logger.ResultLen(len(results)))
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(results)))
}

// opListUsers dumps every registered user as "username:registeredAt" lines.
func opListUsers(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	users := d.store.ListUsers()
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("%s:%s", u.Username, u.RegisteredAt.Format("2006-01-02T15:04:05Z07:00")))
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(lines)))
}

// opListSS dumps every known storage server as "id:ip:nmPort:clientPort:state".
func opListSS(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	servers := d.store.ListStorageServers()
	lines := make([]string, 0, len(servers))
	for _, s := range servers {
		lines = append(lines, fmt.Sprintf("%s:%s:%d:%d:%s", s.ID, s.IP, s.NMPort, s.ClientPort, s.State))
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(lines)))
}
