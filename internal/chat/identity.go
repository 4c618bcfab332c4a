package chat

import (
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// connectionID - generates unique identifier of accepted connection.
// Remote address is not unique enough: ports are reused after disconnect.
func connectionID() string {
	return uuid.NewString()
}

// connectionLogger - derives logger tagged with connection identity.
func connectionLogger(base zerolog.Logger, conn net.Conn) zerolog.Logger {
	ctx := base.With().Str("conn_id", connectionID())
	if conn != nil && conn.RemoteAddr() != nil {
		ctx = ctx.Str("remote", formatAddress(conn.RemoteAddr()))
	}
	return ctx.Logger()
}

// formatAddress - formats specified network address for logging purposes.
func formatAddress(a net.Addr) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", a.Network(), a.String())
}
