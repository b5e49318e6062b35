package transport

import "errors"

// ErrClosed names a closed pipe. No Pipe method returns it: a second Close
// returns nil, and reads and writes go straight to the bridge's Conns.
var ErrClosed = errors.New("transport: pipe closed")
