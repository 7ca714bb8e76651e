//go:build !windows

package discovery

import "syscall"

// setSockopts configures the discovery socket before bind: SO_REUSEADDR so
// back-to-back runs can rebind the fixed port, and SO_BROADCAST for the
// probe send.
func setSockopts(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
